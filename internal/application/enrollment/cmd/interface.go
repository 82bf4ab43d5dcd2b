package cmd

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/campaign"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/training"
	"gitlab.com/teachcorps/recruitment-backend/pkg/ctxs"
)

var (
	tracer = otel.Tracer("recruitment/application/enrollment/cmd")
	logger = otelslog.NewLogger("recruitment/application/enrollment/cmd")
)

type Repo interface {
	GetEnrollment(ctx context.Context, id enrollment.ID) (*enrollment.Enrollment, error)
	SaveEnrollment(ctx context.Context, e *enrollment.Enrollment) error
	UpdateEnrollment(ctx context.Context, id enrollment.ID, fn func(context.Context, *enrollment.Enrollment) error) error
}

type CampaignGetter interface {
	GetCampaign(ctx context.Context, id int64) (*campaign.Campaign, error)
}

type TrainingGetter interface {
	GetTraining(ctx context.Context, id int64) (*training.Training, error)
}

// Refresher re-folds the read-model row after a command commits, so the
// coordinator sees their own write without waiting for the outbox.
type Refresher interface {
	Refresh(ctx context.Context, id enrollment.ID) error
}

// actorOrDefault prefers the explicit command field, falling back to
// the request actor stored in the context by the HTTP middleware.
func actorOrDefault(ctx context.Context, recordedBy string) string {
	if recordedBy != "" {
		return recordedBy
	}
	if actor, ok := ctxs.Actor(ctx); ok {
		return actor
	}
	return ""
}

// refreshReadModel is best effort: the outbox subscription replays the
// same events, so a failed synchronous refresh only delays visibility.
func refreshReadModel(ctx context.Context, r Refresher, l *slog.Logger, id enrollment.ID) {
	if r == nil {
		return
	}
	if err := r.Refresh(ctx, id); err != nil {
		l.WarnContext(ctx, "failed to refresh read model",
			slog.String("enrollment.id", id.String()), slog.Any("error", err))
	}
}
