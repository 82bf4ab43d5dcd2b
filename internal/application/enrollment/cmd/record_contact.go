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

type RecordContact struct {
	EnrollmentID enrollment.ID
	Channel      enrollment.Channel
	Content      string
	RecordedBy   string
}

type RecordContactHandler struct {
	tracer    trace.Tracer
	logger    *slog.Logger
	repo      Repo
	refresher Refresher
	clock     func() time.Time
}

type RecordContactHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Repo      Repo
	Refresher Refresher
	Clock     func() time.Time
}

func NewRecordContactHandler(args RecordContactHandlerArgs) *RecordContactHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &RecordContactHandler{
		tracer:    args.Tracer,
		logger:    args.Logger,
		repo:      args.Repo,
		refresher: args.Refresher,
		clock:     args.Clock,
	}
}

func (h *RecordContactHandler) Handle(ctx context.Context, cmd RecordContact) error {
	const op = "cmd.RecordContactHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RecordContactHandler.Handle",
		trace.WithAttributes(
			attribute.String("enrollment.id", cmd.EnrollmentID.String()),
			attribute.String("contact.channel", cmd.Channel.String()),
		),
	)
	defer span.End()

	args := enrollment.RecordContactArgs{
		Channel:    cmd.Channel,
		Content:    sanitizex.CleanMultiline(cmd.Content),
		RecordedBy: actorOrDefault(ctx, cmd.RecordedBy),
		Now:        h.clock(),
	}

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return h.repo.UpdateEnrollment(ctx, cmd.EnrollmentID, func(ctx context.Context, e *enrollment.Enrollment) error {
			return e.RecordContact(args)
		})
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to record contact")
		return errorx.Wrap(err, op)
	}

	refreshReadModel(ctx, h.refresher, h.logger, cmd.EnrollmentID)
	return nil
}
