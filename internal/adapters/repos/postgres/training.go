package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/training"
	"gitlab.com/teachcorps/recruitment-backend/pkg/ctxs"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

type TrainingRepo struct {
	tracer trace.Tracer
	logger *slog.Logger
	pool   *pgxpool.Pool
}

func NewTrainingRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *TrainingRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &TrainingRepo{tracer: t, logger: l, pool: pool}
}

func (r *TrainingRepo) GetTraining(ctx context.Context, id int64) (*training.Training, error) {
	ctx, span := r.tracer.Start(ctx, "TrainingRepo.GetTraining")
	defer span.End()

	query := `
        SELECT id, city, starts_at, ends_at, capacity
        FROM trainings
        WHERE id = $1;
    `

	var t training.Training
	err := r.querier(ctx).QueryRow(ctx, query, id).Scan(&t.ID, &t.City, &t.StartsAt, &t.EndsAt, &t.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, training.ErrNotFound
		}
		otelx.RecordSpanError(span, err, "failed to get training")
		return nil, err
	}

	return &t, nil
}

func (r *TrainingRepo) ListTrainings(ctx context.Context, ids []int64) ([]training.Training, error) {
	ctx, span := r.tracer.Start(ctx, "TrainingRepo.ListTrainings")
	defer span.End()

	query := `
        SELECT id, city, starts_at, ends_at, capacity
        FROM trainings
        ORDER BY starts_at;
    `
	args := []any{}
	if len(ids) > 0 {
		query = `
        SELECT id, city, starts_at, ends_at, capacity
        FROM trainings
        WHERE id = ANY($1)
        ORDER BY starts_at;
    `
		args = append(args, ids)
	}

	rows, err := r.querier(ctx).Query(ctx, query, args...)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to list trainings")
		return nil, err
	}
	defer rows.Close()

	var trainings []training.Training
	for rows.Next() {
		var t training.Training
		if err := rows.Scan(&t.ID, &t.City, &t.StartsAt, &t.EndsAt, &t.Capacity); err != nil {
			otelx.RecordSpanError(span, err, "failed to scan training")
			return nil, err
		}
		trainings = append(trainings, t)
	}

	return trainings, rows.Err()
}

func (r *TrainingRepo) querier(ctx context.Context) querier {
	if tx, ok := ctxs.Tx(ctx); ok {
		return tx
	}
	return r.pool
}
