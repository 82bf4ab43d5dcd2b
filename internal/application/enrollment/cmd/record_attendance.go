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

type RecordAttendance struct {
	EnrollmentID enrollment.ID
	TrainingID   int64
	Attended     bool
	Notes        string
	RecordedBy   string
}

type RecordAttendanceHandler struct {
	tracer    trace.Tracer
	logger    *slog.Logger
	repo      Repo
	refresher Refresher
	clock     func() time.Time
}

type RecordAttendanceHandlerArgs struct {
	Tracer    trace.Tracer
	Logger    *slog.Logger
	Repo      Repo
	Refresher Refresher
	Clock     func() time.Time
}

func NewRecordAttendanceHandler(args RecordAttendanceHandlerArgs) *RecordAttendanceHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &RecordAttendanceHandler{
		tracer:    args.Tracer,
		logger:    args.Logger,
		repo:      args.Repo,
		refresher: args.Refresher,
		clock:     args.Clock,
	}
}

func (h *RecordAttendanceHandler) Handle(ctx context.Context, cmd RecordAttendance) error {
	const op = "cmd.RecordAttendanceHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "RecordAttendanceHandler.Handle",
		trace.WithAttributes(
			attribute.String("enrollment.id", cmd.EnrollmentID.String()),
			attribute.Int64("training.id", cmd.TrainingID),
			attribute.Bool("attended", cmd.Attended),
		),
	)
	defer span.End()

	args := enrollment.RecordAttendanceArgs{
		TrainingID: cmd.TrainingID,
		Attended:   cmd.Attended,
		Notes:      sanitizex.CleanMultiline(cmd.Notes),
		RecordedBy: actorOrDefault(ctx, cmd.RecordedBy),
		Now:        h.clock(),
	}

	err := retryOnConflict(ctx, func(ctx context.Context) error {
		return h.repo.UpdateEnrollment(ctx, cmd.EnrollmentID, func(ctx context.Context, e *enrollment.Enrollment) error {
			return e.RecordAttendance(args)
		})
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to record attendance")
		return errorx.Wrap(err, op)
	}

	refreshReadModel(ctx, h.refresher, h.logger, cmd.EnrollmentID)
	return nil
}
