package postgres

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/event"
	"gitlab.com/teachcorps/recruitment-backend/pkg/apperr"
	"gitlab.com/teachcorps/recruitment-backend/pkg/ctxs"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/postgres"
	"gitlab.com/teachcorps/recruitment-backend/pkg/watermillx"
)

// EnrollmentEventStore persists enrollment streams in the
// enrollment_events table. Appends are guarded twice: an in-transaction
// check against the stream's max sequence, and the primary key on
// (enrollment_id, sequence) as the safety net under concurrent writers.
type EnrollmentEventStore struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	pool    *pgxpool.Pool
	wlogger watermill.LoggerAdapter
}

// NewEnrollmentEventStore creates a new instance of EnrollmentEventStore.
// It also sets default tracer and logger if they are nil.
//
//	WARNING; panics if pool is nil
func NewEnrollmentEventStore(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *EnrollmentEventStore {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &EnrollmentEventStore{
		tracer:  t,
		logger:  l,
		pool:    pool,
		wlogger: watermill.NewSlogLogger(l),
	}
}

// GetEnrollment rehydrates the aggregate from its committed stream.
func (s *EnrollmentEventStore) GetEnrollment(ctx context.Context, id enrollment.ID) (*enrollment.Enrollment, error) {
	ctx, span := s.tracer.Start(ctx, "EnrollmentEventStore.GetEnrollment")
	defer span.End()

	events, err := s.loadStream(ctx, s.querier(ctx), id)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to load enrollment stream")
		return nil, err
	}
	if len(events) == 0 {
		return nil, enrollment.ErrEnrollmentNotFound
	}

	return enrollment.Rehydrate(id, events), nil
}

// SaveEnrollment appends the aggregate's uncommitted events and
// publishes them to the outbox in one transaction. The expected stream
// version is the aggregate version minus the events being appended.
func (s *EnrollmentEventStore) SaveEnrollment(ctx context.Context, e *enrollment.Enrollment) error {
	ctx, span := s.tracer.Start(ctx, "EnrollmentEventStore.SaveEnrollment")
	defer span.End()

	uncommitted := e.GetUncommittedEvents()
	if len(uncommitted) == 0 {
		return nil
	}
	expected := e.Version() - int64(len(uncommitted))

	err := postgres.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		return s.appendTx(ctx, tx, e.ID(), expected, uncommitted)
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to append enrollment events")
		return err
	}

	e.MarkEventsAsCommitted()
	return nil
}

// UpdateEnrollment loads the aggregate, applies fn and appends whatever
// fn raised, all within one transaction.
func (s *EnrollmentEventStore) UpdateEnrollment(
	ctx context.Context,
	id enrollment.ID,
	fn func(ctx context.Context, e *enrollment.Enrollment) error,
) error {
	ctx, span := s.tracer.Start(ctx, "EnrollmentEventStore.UpdateEnrollment")
	defer span.End()
	if fn == nil {
		otelx.RecordSpanError(span, ErrNilFunc, "update function cannot be nil")
		return ErrNilFunc
	}

	err := postgres.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		events, err := s.loadStream(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return enrollment.ErrEnrollmentNotFound
		}

		e := enrollment.Rehydrate(id, events)
		expected := e.Version()

		if err := fn(ctx, e); err != nil {
			return err
		}

		uncommitted := e.GetUncommittedEvents()
		if len(uncommitted) == 0 {
			return nil
		}

		if err := s.appendTx(ctx, tx, id, expected, uncommitted); err != nil {
			return err
		}
		e.MarkEventsAsCommitted()
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to update enrollment")
		return err
	}

	return nil
}

// LoadEnrollmentEvents returns the committed stream in sequence order.
func (s *EnrollmentEventStore) LoadEnrollmentEvents(ctx context.Context, id enrollment.ID) ([]enrollment.Event, error) {
	ctx, span := s.tracer.Start(ctx, "EnrollmentEventStore.LoadEnrollmentEvents")
	defer span.End()

	events, err := s.loadStream(ctx, s.querier(ctx), id)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to load enrollment stream")
		return nil, err
	}
	return events, nil
}

// ForEachEvent streams the whole store in (enrollment_id, sequence)
// order. Used by the projector's full rebuild.
func (s *EnrollmentEventStore) ForEachEvent(ctx context.Context, fn func(evt enrollment.Event) error) error {
	ctx, span := s.tracer.Start(ctx, "EnrollmentEventStore.ForEachEvent")
	defer span.End()

	query := `
        SELECT event_type, payload
        FROM enrollment_events
        ORDER BY enrollment_id, sequence;
    `

	rows, err := s.querier(ctx).Query(ctx, query)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to query all enrollment events")
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var eventType string
		var payload []byte
		if err := rows.Scan(&eventType, &payload); err != nil {
			otelx.RecordSpanError(span, err, "failed to scan enrollment event")
			return err
		}

		evt, err := enrollment.DecodeEvent(eventType, payload)
		if err != nil {
			otelx.RecordSpanError(span, err, "failed to decode enrollment event")
			return err
		}

		if err := fn(evt); err != nil {
			return err
		}
	}

	return rows.Err()
}

func (s *EnrollmentEventStore) appendTx(
	ctx context.Context,
	tx pgx.Tx,
	id enrollment.ID,
	expected int64,
	uncommitted []event.Event,
) error {
	var current int64
	err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(sequence), 0) FROM enrollment_events WHERE enrollment_id = $1`,
		uuid.UUID(id),
	).Scan(&current)
	if err != nil {
		return err
	}
	if current != expected {
		return apperr.NewConcurrencyConflict("enrollment was modified concurrently").
			WithDetails(map[string]any{"expected": expected, "actual": current})
	}

	insert := `
        INSERT INTO enrollment_events (enrollment_id, sequence, event_id, event_type, payload, recorded_at)
        VALUES ($1, $2, $3, $4, $5, $6);
    `

	evts := make([]enrollment.Event, 0, len(uncommitted))
	for _, raw := range uncommitted {
		evt, ok := raw.(enrollment.Event)
		if !ok {
			return apperr.NewInternal("uncommitted event is not an enrollment event")
		}
		evts = append(evts, evt)
	}

	for _, evt := range evts {
		payload, err := enrollment.EncodeEvent(evt)
		if err != nil {
			return err
		}

		header := evt.GetEventHeader()
		_, err = tx.Exec(ctx, insert,
			uuid.UUID(id), header.Sequence, header.ID, evt.EventType(), payload, header.Timestamp,
		)
		if err != nil {
			if IsUniqueViolation(err, "") {
				return apperr.NewConcurrencyConflict("enrollment was modified concurrently").WithCause(err)
			}
			return err
		}
	}

	return watermillx.Publish(ctx, tx, s.wlogger, uncommitted...)
}

func (s *EnrollmentEventStore) loadStream(ctx context.Context, q querier, id enrollment.ID) ([]enrollment.Event, error) {
	query := `
        SELECT event_type, payload
        FROM enrollment_events
        WHERE enrollment_id = $1
        ORDER BY sequence;
    `

	rows, err := q.Query(ctx, query, uuid.UUID(id))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []enrollment.Event
	for rows.Next() {
		var eventType string
		var payload json.RawMessage
		if err := rows.Scan(&eventType, &payload); err != nil {
			return nil, err
		}

		evt, err := enrollment.DecodeEvent(eventType, payload)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}

	return events, rows.Err()
}

// querier picks the transaction from the context when one is open, so
// reads inside UpdateEnrollment observe their own writes.
func (s *EnrollmentEventStore) querier(ctx context.Context) querier {
	if tx, ok := ctxs.Tx(ctx); ok {
		return tx
	}
	return s.pool
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
