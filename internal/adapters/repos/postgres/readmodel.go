package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/ctxs"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

// EnrollmentReadModelRepo stores the denormalized projection rows. The
// upsert only applies when the incoming row was folded from a stream at
// least as long as the stored one, which makes redelivery harmless.
type EnrollmentReadModelRepo struct {
	tracer trace.Tracer
	logger *slog.Logger
	pool   *pgxpool.Pool
}

func NewEnrollmentReadModelRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *EnrollmentReadModelRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &EnrollmentReadModelRepo{tracer: t, logger: l, pool: pool}
}

const readModelColumns = `
    enrollment_id, first_name, last_name, email, phone, campaign_id, region,
    preferred_cities, preferred_trainings, status, selected_training_id,
    refused, refusal_reason, resignation_kind, resignation_resume_date,
    contact_count, last_contact_at, attended_count, absence_count,
    lecturer_rights, email_failure_count, submitted_at, last_sequence, updated_at`

func (r *EnrollmentReadModelRepo) Upsert(ctx context.Context, row *projection.Row) error {
	ctx, span := r.tracer.Start(ctx, "EnrollmentReadModelRepo.Upsert")
	defer span.End()

	query := `
        INSERT INTO enrollment_read_models (` + readModelColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
        ON CONFLICT (enrollment_id) DO UPDATE SET
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            email = EXCLUDED.email,
            phone = EXCLUDED.phone,
            campaign_id = EXCLUDED.campaign_id,
            region = EXCLUDED.region,
            preferred_cities = EXCLUDED.preferred_cities,
            preferred_trainings = EXCLUDED.preferred_trainings,
            status = EXCLUDED.status,
            selected_training_id = EXCLUDED.selected_training_id,
            refused = EXCLUDED.refused,
            refusal_reason = EXCLUDED.refusal_reason,
            resignation_kind = EXCLUDED.resignation_kind,
            resignation_resume_date = EXCLUDED.resignation_resume_date,
            contact_count = EXCLUDED.contact_count,
            last_contact_at = EXCLUDED.last_contact_at,
            attended_count = EXCLUDED.attended_count,
            absence_count = EXCLUDED.absence_count,
            lecturer_rights = EXCLUDED.lecturer_rights,
            email_failure_count = EXCLUDED.email_failure_count,
            submitted_at = EXCLUDED.submitted_at,
            last_sequence = EXCLUDED.last_sequence,
            updated_at = EXCLUDED.updated_at
        WHERE enrollment_read_models.last_sequence <= EXCLUDED.last_sequence;
    `

	_, err := r.exec(ctx, query,
		uuid.UUID(row.EnrollmentID), row.FirstName, row.LastName, row.Email, row.Phone,
		row.CampaignID, row.Region, row.PreferredCities, row.PreferredTrainings,
		string(row.Status), row.SelectedTrainingID,
		row.Refused, row.RefusalReason, nullString(row.ResignationKind), row.ResignationResumeDate,
		row.ContactCount, row.LastContactAt, row.AttendedCount, row.AbsenceCount,
		row.LecturerRights, row.EmailFailureCount, row.SubmittedAt, row.LastSequence, row.UpdatedAt,
	)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to upsert enrollment read model")
		return err
	}

	return nil
}

func (r *EnrollmentReadModelRepo) Truncate(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "EnrollmentReadModelRepo.Truncate")
	defer span.End()

	_, err := r.exec(ctx, `TRUNCATE enrollment_read_models;`)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to truncate enrollment read models")
		return err
	}

	return nil
}

func (r *EnrollmentReadModelRepo) Get(ctx context.Context, id enrollment.ID) (*projection.Row, error) {
	ctx, span := r.tracer.Start(ctx, "EnrollmentReadModelRepo.Get")
	defer span.End()

	query := `SELECT ` + readModelColumns + ` FROM enrollment_read_models WHERE enrollment_id = $1;`

	row, err := r.scanRow(r.querier(ctx).QueryRow(ctx, query, uuid.UUID(id)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enrollment.ErrEnrollmentNotFound
		}
		otelx.RecordSpanError(span, err, "failed to get enrollment read model")
		return nil, err
	}

	return row, nil
}

func (r *EnrollmentReadModelRepo) GetByEmail(ctx context.Context, email string) (*projection.Row, error) {
	ctx, span := r.tracer.Start(ctx, "EnrollmentReadModelRepo.GetByEmail")
	defer span.End()

	query := `SELECT ` + readModelColumns + `
        FROM enrollment_read_models
        WHERE email = $1
        ORDER BY submitted_at DESC
        LIMIT 1;`

	row, err := r.scanRow(r.querier(ctx).QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, enrollment.ErrEnrollmentNotFound
		}
		otelx.RecordSpanError(span, err, "failed to get enrollment read model by email")
		return nil, err
	}

	return row, nil
}

// ListFilter narrows the submissions listing. Zero values mean "any".
type ListFilter struct {
	CampaignID int64
	Region     string
	Status     string
	Search     string // matches name and email, case-insensitive
	Limit      int
	Offset     int
}

// Clamp normalizes pagination: a negative offset becomes 0 and a limit
// outside 1..200 falls back to 50. Callers echo the clamped values so
// the response reports what was actually applied.
func (f ListFilter) Clamp() ListFilter {
	if f.Offset < 0 {
		f.Offset = 0
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return f
}

// List returns matching rows ordered by submission time, newest first,
// along with the total match count for pagination.
func (r *EnrollmentReadModelRepo) List(ctx context.Context, filter ListFilter) ([]projection.Row, int, error) {
	ctx, span := r.tracer.Start(ctx, "EnrollmentReadModelRepo.List")
	defer span.End()

	filter = filter.Clamp()

	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CampaignID != 0 {
		conds = append(conds, "campaign_id = "+arg(filter.CampaignID))
	}
	if filter.Region != "" {
		conds = append(conds, "region = "+arg(filter.Region))
	}
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, "(first_name ILIKE "+p+" OR last_name ILIKE "+p+" OR email ILIKE "+p+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	err := r.querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM enrollment_read_models`+where+`;`, args...).Scan(&total)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to count enrollment read models")
		return nil, 0, err
	}

	query := `SELECT ` + readModelColumns + ` FROM enrollment_read_models` + where +
		` ORDER BY submitted_at DESC, enrollment_id LIMIT ` + arg(filter.Limit) + ` OFFSET ` + arg(filter.Offset) + `;`

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to list enrollment read models")
		return nil, 0, err
	}
	defer rows.Close()

	var result []projection.Row
	for rows.Next() {
		row, err := r.scanRow(rows)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to scan enrollment read model")
			return nil, 0, err
		}
		result = append(result, *row)
	}

	return result, total, rows.Err()
}

func (r *EnrollmentReadModelRepo) scanRow(row pgx.Row) (*projection.Row, error) {
	var (
		dto   projection.Row
		rawID uuid.UUID
		kind  *string
	)

	err := row.Scan(
		&rawID, &dto.FirstName, &dto.LastName, &dto.Email, &dto.Phone,
		&dto.CampaignID, &dto.Region, &dto.PreferredCities, &dto.PreferredTrainings,
		&dto.Status, &dto.SelectedTrainingID,
		&dto.Refused, &dto.RefusalReason, &kind, &dto.ResignationResumeDate,
		&dto.ContactCount, &dto.LastContactAt, &dto.AttendedCount, &dto.AbsenceCount,
		&dto.LecturerRights, &dto.EmailFailureCount, &dto.SubmittedAt, &dto.LastSequence, &dto.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	dto.EnrollmentID = enrollment.ID(rawID)
	if kind != nil {
		dto.ResignationKind = *kind
	}

	return &dto, nil
}

func (r *EnrollmentReadModelRepo) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if tx, ok := ctxs.Tx(ctx); ok {
		tag, err := tx.Exec(ctx, sql, args...)
		return tag.RowsAffected(), err
	}
	tag, err := r.pool.Exec(ctx, sql, args...)
	return tag.RowsAffected(), err
}

func (r *EnrollmentReadModelRepo) querier(ctx context.Context) querier {
	if tx, ok := ctxs.Tx(ctx); ok {
		return tx
	}
	return r.pool
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
