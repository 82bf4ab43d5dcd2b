package cmd

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/sanitizex"
)

type GrantLecturerRights struct {
	EnrollmentID enrollment.ID
	GrantedBy    string
	Notes        string
}

type GrantLecturerRightsHandler struct {
	tracer    trace.Tracer
	logger    *slog.Logger
	repo      Repo
	refresher Refresher
	clock     func() time.Time
}

type GrantLecturerRightsHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Repo      Repo
	Refresher Refresher
	Clock     func() time.Time
}

func NewGrantLecturerRightsHandler(args GrantLecturerRightsHandlerArgs) *GrantLecturerRightsHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &GrantLecturerRightsHandler{
		tracer:    args.Tracer,
		logger:    args.Logger,
		repo:      args.Repo,
		refresher: args.Refresher,
		clock:     args.Clock,
	}
}

func (h *GrantLecturerRightsHandler) Handle(ctx context.Context, cmd GrantLecturerRights) error {
	const op = "cmd.GrantLecturerRightsHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "GrantLecturerRightsHandler.Handle",
		trace.WithAttributes(attribute.String("enrollment.id", cmd.EnrollmentID.String())),
	)
	defer span.End()

	args := enrollment.GrantLecturerRightsArgs{
		GrantedBy: actorOrDefault(ctx, cmd.GrantedBy),
		Notes:     sanitizex.CleanMultiline(cmd.Notes),
		Now:       h.clock(),
	}

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return h.repo.UpdateEnrollment(ctx, cmd.EnrollmentID, func(ctx context.Context, e *enrollment.Enrollment) error {
			return e.GrantLecturerRights(args)
		})
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to grant lecturer rights")
		return errorx.Wrap(err, op)
	}

	h.logger.InfoContext(ctx, "lecturer rights granted", slog.String("enrollment.id", cmd.EnrollmentID.String()))
	refreshReadModel(ctx, h.refresher, h.logger, cmd.EnrollmentID)
	return nil
}
