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

type RecordResignation struct {
	EnrollmentID enrollment.ID
	Kind         enrollment.ResignationKind
	Reason       string
	ResumeDate   *time.Time // temporary resignations only
	RecordedBy   string
}

type RecordResignationHandler struct {
	tracer    trace.Tracer
	logger    *slog.Logger
	repo      Repo
	refresher Refresher
	clock     func() time.Time
}

type RecordResignationHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Repo      Repo
	Refresher Refresher
	Clock     func() time.Time
}

func NewRecordResignationHandler(args RecordResignationHandlerArgs) *RecordResignationHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &RecordResignationHandler{
		tracer:    args.Tracer,
		logger:    args.Logger,
		repo:      args.Repo,
		refresher: args.Refresher,
		clock:     args.Clock,
	}
}

func (h *RecordResignationHandler) Handle(ctx context.Context, cmd RecordResignation) error {
	const op = "cmd.RecordResignationHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RecordResignationHandler.Handle",
		trace.WithAttributes(
			attribute.String("enrollment.id", cmd.EnrollmentID.String()),
			attribute.String("resignation.kind", string(cmd.Kind)),
		),
	)
	defer span.End()

	args := enrollment.RecordResignationArgs{
		Kind:       cmd.Kind,
		Reason:     sanitizex.CleanMultiline(cmd.Reason),
		ResumeDate: cmd.ResumeDate,
		RecordedBy: actorOrDefault(ctx, cmd.RecordedBy),
		Now:        h.clock(),
	}

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return h.repo.UpdateEnrollment(ctx, cmd.EnrollmentID, func(ctx context.Context, e *enrollment.Enrollment) error {
			return e.RecordResignation(args)
		})
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to record resignation")
		return errorx.Wrap(err, op)
	}

	refreshReadModel(ctx, h.refresher, h.logger, cmd.EnrollmentID)
	return nil
}
