package projection

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

var (
	tracer = otel.Tracer("recruitment/application/enrollment/projection")
	logger = otelslog.NewLogger("recruitment/application/enrollment/projection")
)

type EventSource interface {
	LoadEnrollmentEvents(ctx context.Context, id enrollment.ID) ([]enrollment.Event, error)
	ForEachEvent(ctx context.Context, fn func(evt enrollment.Event) error) error
}

type Store interface {
	Upsert(ctx context.Context, row *Row) error
	Truncate(ctx context.Context) error
}

// Projector keeps the read model in step with the event store. Apply is
// called both synchronously after a command commits and asynchronously
// from the outbox subscription; refolding the whole stream on every
// call makes both paths idempotent and order-insensitive.
type Projector struct {
	tracer trace.Tracer
	logger *slog.Logger
	events EventSource
	store  Store
}

type ProjectorArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Events EventSource
	Store  Store
}

func NewProjector(args ProjectorArgs) *Projector {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &Projector{
		tracer: args.Tracer,
		logger: args.Logger,
		events: args.Events,
		store:  args.Store,
	}
}

// Apply refreshes the read-model row for the aggregate the event
// belongs to. The triggering event carries only the aggregate id; the
// row is folded from the committed stream, which already contains the
// event by the time it is delivered.
func (p *Projector) Apply(ctx context.Context, evt enrollment.Event) error {
	return p.Refresh(ctx, evt.AggregateID())
}

// Refresh folds the committed stream of a single enrollment into its
// read-model row. Command handlers call it right after a commit so a
// read that follows the command sees the new state without waiting for
// the outbox subscription.
func (p *Projector) Refresh(ctx context.Context, id enrollment.ID) error {
	ctx, span := p.tracer.Start(ctx, "Projector.Refresh")
	defer span.End()

	events, err := p.events.LoadEnrollmentEvents(ctx, id)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to load enrollment stream")
		return err
	}
	if len(events) == 0 {
		// the stream vanished between delivery and refold, nothing to project
		p.logger.WarnContext(ctx, "no events for projected enrollment", slog.String("enrollment.id", id.String()))
		return nil
	}

	row := Fold(events)
	if err := p.store.Upsert(ctx, row); err != nil {
		otelx.RecordSpanError(span, err, "failed to upsert read model row")
		return err
	}

	return nil
}

// Populate rebuilds the entire read model from the event store. The
// store is truncated first; rebuilding is idempotent because Fold is
// deterministic.
func (p *Projector) Populate(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "Projector.Populate")
	defer span.End()

	if err := p.store.Truncate(ctx); err != nil {
		otelx.RecordSpanError(span, err, "failed to truncate read model")
		return err
	}

	var (
		current   enrollment.ID
		stream    []enrollment.Event
		projected int
	)

	flush := func() error {
		if len(stream) == 0 {
			return nil
		}
		if err := p.store.Upsert(ctx, Fold(stream)); err != nil {
			return err
		}
		projected++
		stream = stream[:0]
		return nil
	}

	err := p.events.ForEachEvent(ctx, func(evt enrollment.Event) error {
		if evt.AggregateID() != current {
			if err := flush(); err != nil {
				return err
			}
			current = evt.AggregateID()
		}
		stream = append(stream, evt)
		return nil
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to iterate enrollment events")
		return err
	}
	if err := flush(); err != nil {
		otelx.RecordSpanError(span, err, "failed to upsert read model row")
		return err
	}

	p.logger.InfoContext(ctx, "read model populated", slog.Int("enrollments", projected))
	return nil
}
