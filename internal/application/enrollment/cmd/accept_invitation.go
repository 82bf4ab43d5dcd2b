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

type AcceptInvitation struct {
	EnrollmentID enrollment.ID
	TrainingID   int64
	Channel      enrollment.Channel
	Notes        string
	RecordedBy   string
}

type AcceptInvitationHandler struct {
	tracer         trace.Tracer
	logger         *slog.Logger
	repo           Repo
	traininggetter TrainingGetter
	refresher      Refresher
	clock          func() time.Time
}

type AcceptInvitationHandlerArgs struct {
	Tracer         trace.Tracer
	Logger         *slog.Logger
	Repo           Repo
	TrainingGetter TrainingGetter
	Refresher      Refresher
	Clock          func() time.Time
}

func NewAcceptInvitationHandler(args AcceptInvitationHandlerArgs) *AcceptInvitationHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &AcceptInvitationHandler{
		tracer:         args.Tracer,
		logger:         args.Logger,
		repo:           args.Repo,
		traininggetter: args.TrainingGetter,
		refresher:      args.Refresher,
		clock:          args.Clock,
	}
}

func (h *AcceptInvitationHandler) Handle(ctx context.Context, cmd AcceptInvitation) error {
	const op = "cmd.AcceptInvitationHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "AcceptInvitationHandler.Handle",
		trace.WithAttributes(
			attribute.String("enrollment.id", cmd.EnrollmentID.String()),
			attribute.Int64("training.id", cmd.TrainingID),
		),
	)
	defer span.End()

	// the training must exist before the aggregate checks preference
	if _, err := h.traininggetter.GetTraining(ctx, cmd.TrainingID); err != nil {
		otelx.RecordSpanError(span, err, "failed to resolve training")
		return errorx.Wrap(err, op)
	}

	args := enrollment.RecordAcceptedInvitationArgs{
		TrainingID: cmd.TrainingID,
		Channel:    cmd.Channel,
		Notes:      sanitizex.CleanMultiline(cmd.Notes),
		RecordedBy: actorOrDefault(ctx, cmd.RecordedBy),
		Now:        h.clock(),
	}

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return h.repo.UpdateEnrollment(ctx, cmd.EnrollmentID, func(ctx context.Context, e *enrollment.Enrollment) error {
			return e.RecordAcceptedInvitation(args)
		})
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to record accepted invitation")
		return errorx.Wrap(err, op)
	}

	refreshReadModel(ctx, h.refresher, h.logger, cmd.EnrollmentID)
	return nil
}
