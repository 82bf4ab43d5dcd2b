package query

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/adapters/repos/postgres"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/logging"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("recruitment/application/enrollment/query")
	logger = otelslog.NewLogger("recruitment/application/enrollment/query")
)

// Reader is the read-model lookup surface the query handlers need.
type Reader interface {
	Get(ctx context.Context, id enrollment.ID) (*projection.Row, error)
	GetByEmail(ctx context.Context, email string) (*projection.Row, error)
	List(ctx context.Context, filter postgres.ListFilter) ([]projection.Row, int, error)
}

type GetEnrollment struct {
	ID    enrollment.ID
	Email string
}

type EnrollmentResponse struct {
	ID                 string     `json:"id"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	CampaignID         int64      `json:"campaign_id"`
	Region             string     `json:"region"`
	PreferredCities    []string   `json:"preferred_cities"`
	PreferredTrainings []int64    `json:"preferred_trainings"`
	Status             string     `json:"status"`
	SelectedTrainingID *int64     `json:"selected_training_id,omitempty"`
	RefusalReason      string     `json:"refusal_reason,omitempty"`
	ResignationKind    string     `json:"resignation_kind,omitempty"`
	ResumeDate         *time.Time `json:"resignation_resume_date,omitempty"`
	ContactCount       int        `json:"contact_count"`
	LastContactAt      *time.Time `json:"last_contact_at,omitempty"`
	AttendedCount      int        `json:"attended_count"`
	AbsenceCount       int        `json:"absence_count"`
	LecturerRights     bool       `json:"lecturer_rights"`
	EmailFailureCount  int        `json:"email_failure_count"`
	SubmittedAt        time.Time  `json:"submitted_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func responseFromRow(row *projection.Row) *EnrollmentResponse {
	return &EnrollmentResponse{
		ID:                 row.EnrollmentID.String(),
		FirstName:          row.FirstName,
		LastName:           row.LastName,
		Email:              row.Email,
		Phone:              row.Phone,
		CampaignID:         row.CampaignID,
		Region:             row.Region,
		PreferredCities:    row.PreferredCities,
		PreferredTrainings: row.PreferredTrainings,
		Status:             string(row.Status),
		SelectedTrainingID: row.SelectedTrainingID,
		RefusalReason:      row.RefusalReason,
		ResignationKind:    row.ResignationKind,
		ResumeDate:         row.ResignationResumeDate,
		ContactCount:       row.ContactCount,
		LastContactAt:      row.LastContactAt,
		AttendedCount:      row.AttendedCount,
		AbsenceCount:       row.AbsenceCount,
		LecturerRights:     row.LecturerRights,
		EmailFailureCount:  row.EmailFailureCount,
		SubmittedAt:        row.SubmittedAt,
		UpdatedAt:          row.UpdatedAt,
	}
}

type GetEnrollmentHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	reader Reader
}

type GetEnrollmentHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Reader Reader
}

func NewGetEnrollmentHandler(args GetEnrollmentHandlerArgs) *GetEnrollmentHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &GetEnrollmentHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		reader: args.Reader,
	}
}

// Handle looks up one enrollment by id, or by email when the id is
// zero. Email lookup serves the candidate-facing status page.
func (h *GetEnrollmentHandler) Handle(ctx context.Context, query GetEnrollment) (*EnrollmentResponse, error) {
	const op = "query.GetEnrollmentHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "GetEnrollmentHandler.Handle",
		trace.WithAttributes(
			attribute.String("enrollment.id", query.ID.String()),
			attribute.String("enrollment.email", logging.RedactEmail(query.Email)),
		),
	)
	defer span.End()

	var (
		row *projection.Row
		err error
	)
	if query.ID.IsZero() {
		row, err = h.reader.GetByEmail(ctx, query.Email)
	} else {
		row, err = h.reader.Get(ctx, query.ID)
	}
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get enrollment")
		return nil, errorx.Wrap(err, op)
	}

	return responseFromRow(row), nil
}
