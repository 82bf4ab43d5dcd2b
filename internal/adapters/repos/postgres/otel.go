package postgres

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
)

var (
	tracer = otel.Tracer("recruitment/internal/adapters/repos/postgres")
	logger = otelslog.NewLogger("recruitment/internal/adapters/repos/postgres")
)
