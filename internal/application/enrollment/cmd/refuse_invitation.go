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

type RefuseInvitation struct {
	EnrollmentID enrollment.ID
	Reason       string
	Channel      enrollment.Channel
	Notes        string
	RecordedBy   string
}

type RefuseInvitationHandler struct {
	tracer    trace.Tracer
	logger    *slog.Logger
	repo      Repo
	refresher Refresher
	clock     func() time.Time
}

type RefuseInvitationHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Repo      Repo
	Refresher Refresher
	Clock     func() time.Time
}

func NewRefuseInvitationHandler(args RefuseInvitationHandlerArgs) *RefuseInvitationHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &RefuseInvitationHandler{
		tracer:    args.Tracer,
		logger:    args.Logger,
		repo:      args.Repo,
		refresher: args.Refresher,
		clock:     args.Clock,
	}
}

func (h *RefuseInvitationHandler) Handle(ctx context.Context, cmd RefuseInvitation) error {
	const op = "cmd.RefuseInvitationHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RefuseInvitationHandler.Handle",
		trace.WithAttributes(attribute.String("enrollment.id", cmd.EnrollmentID.String())),
	)
	defer span.End()

	args := enrollment.RecordRefusedInvitationArgs{
		Reason:     sanitizex.CleanMultiline(cmd.Reason),
		Channel:    cmd.Channel,
		Notes:      sanitizex.CleanMultiline(cmd.Notes),
		RecordedBy: actorOrDefault(ctx, cmd.RecordedBy),
		Now:        h.clock(),
	}

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return h.repo.UpdateEnrollment(ctx, cmd.EnrollmentID, func(ctx context.Context, e *enrollment.Enrollment) error {
			return e.RecordRefusedInvitation(args)
		})
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to record refused invitation")
		return errorx.Wrap(err, op)
	}

	refreshReadModel(ctx, h.refresher, h.logger, cmd.EnrollmentID)
	return nil
}
