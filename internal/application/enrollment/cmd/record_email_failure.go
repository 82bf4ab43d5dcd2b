package cmd

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/logging"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

type RecordEmailFailure struct {
	EnrollmentID enrollment.ID
	Recipient    string
	Subject      string
	Body         string
	FailureCause string
}

// RecordEmailFailureHandler turns a failed delivery into a stream fact.
// It is invoked by the mail pipeline, never by coordinators.
type RecordEmailFailureHandler struct {
	tracer    trace.Tracer
	logger    *slog.Logger
	repo      Repo
	refresher Refresher
	clock     func() time.Time
}

type RecordEmailFailureHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Repo      Repo
	Refresher Refresher
	Clock     func() time.Time
}

func NewRecordEmailFailureHandler(args RecordEmailFailureHandlerArgs) *RecordEmailFailureHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &RecordEmailFailureHandler{
		tracer:    args.Tracer,
		logger:    args.Logger,
		repo:      args.Repo,
		refresher: args.Refresher,
		clock:     args.Clock,
	}
}

func (h *RecordEmailFailureHandler) Handle(ctx context.Context, cmd RecordEmailFailure) error {
	const op = "cmd.RecordEmailFailureHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RecordEmailFailureHandler.Handle",
		trace.WithAttributes(
			attribute.String("enrollment.id", cmd.EnrollmentID.String()),
			attribute.String("mail.recipient", logging.RedactEmail(cmd.Recipient)),
		),
	)
	defer span.End()

	args := enrollment.RecordEmailSendingFailureArgs{
		Recipient:    cmd.Recipient,
		Subject:      cmd.Subject,
		Body:         cmd.Body,
		FailureCause: cmd.FailureCause,
		Now:          h.clock(),
	}

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return h.repo.UpdateEnrollment(ctx, cmd.EnrollmentID, func(ctx context.Context, e *enrollment.Enrollment) error {
			return e.RecordEmailSendingFailure(args)
		})
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to record email delivery failure")
		return errorx.Wrap(err, op)
	}

	refreshReadModel(ctx, h.refresher, h.logger, cmd.EnrollmentID)
	return nil
}
