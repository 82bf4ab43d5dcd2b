package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
)

// EnrollmentRepo is an in-memory event store for command handler tests.
// It keeps whole streams per aggregate so the projection helpers can
// refold them the way the postgres store does.
type EnrollmentRepo struct {
	*EventRepo
	streams map[enrollment.ID][]enrollment.Event
	mu      sync.Mutex
}

func NewEnrollmentRepo() *EnrollmentRepo {
	return &EnrollmentRepo{
		EventRepo: NewEventRepo(),
		streams:   make(map[enrollment.ID][]enrollment.Event),
	}
}

func (r *EnrollmentRepo) GetEnrollment(ctx context.Context, id enrollment.ID) (*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, exists := r.streams[id]
	if !exists || len(stream) == 0 {
		return nil, enrollment.ErrEnrollmentNotFound
	}
	return enrollment.Rehydrate(id, stream), nil
}

func (r *EnrollmentRepo) SaveEnrollment(ctx context.Context, e *enrollment.Enrollment) error {
	if e == nil {
		return errors.New("enrollment cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.streams[e.ID()]) > 0 {
		return enrollment.ErrAlreadySubmitted
	}

	uncommitted := e.GetUncommittedEvents()
	for _, evt := range uncommitted {
		domEvt, ok := evt.(enrollment.Event)
		if !ok {
			return fmt.Errorf("unexpected event type %T", evt)
		}
		r.streams[e.ID()] = append(r.streams[e.ID()], domEvt)
	}

	r.appendEvents(uncommitted...)
	e.MarkEventsAsCommitted()

	return nil
}

func (r *EnrollmentRepo) UpdateEnrollment(
	ctx context.Context,
	id enrollment.ID,
	fn func(context.Context, *enrollment.Enrollment) error,
) error {
	if fn == nil {
		return errors.New("update function cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stream, exists := r.streams[id]
	if !exists || len(stream) == 0 {
		return enrollment.ErrEnrollmentNotFound
	}

	e := enrollment.Rehydrate(id, stream)

	if err := fn(ctx, e); err != nil {
		return err
	}

	uncommitted := e.GetUncommittedEvents()
	for _, evt := range uncommitted {
		domEvt, ok := evt.(enrollment.Event)
		if !ok {
			return fmt.Errorf("unexpected event type %T", evt)
		}
		r.streams[id] = append(r.streams[id], domEvt)
	}

	r.appendEvents(uncommitted...)
	e.MarkEventsAsCommitted()

	return nil
}

func (r *EnrollmentRepo) LoadEnrollmentEvents(ctx context.Context, id enrollment.ID) ([]enrollment.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream := r.streams[id]
	out := make([]enrollment.Event, len(stream))
	copy(out, stream)
	return out, nil
}

func (r *EnrollmentRepo) ForEachEvent(ctx context.Context, fn func(evt enrollment.Event) error) error {
	r.mu.Lock()
	ids := make([]enrollment.ID, 0, len(r.streams))
	for id := range r.streams {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	streams := make([][]enrollment.Event, 0, len(ids))
	for _, id := range ids {
		stream := make([]enrollment.Event, len(r.streams[id]))
		copy(stream, r.streams[id])
		streams = append(streams, stream)
	}
	r.mu.Unlock()

	for _, stream := range streams {
		for _, evt := range stream {
			if err := fn(evt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *EnrollmentRepo) SeedEnrollment(t *testing.T, e *enrollment.Enrollment) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.streams[e.ID()]) > 0 {
		t.Fatalf("enrollment %s already exists", e.ID())
	}

	for _, evt := range e.GetUncommittedEvents() {
		domEvt, ok := evt.(enrollment.Event)
		if !ok {
			t.Fatalf("unexpected event type %T", evt)
		}
		r.streams[e.ID()] = append(r.streams[e.ID()], domEvt)
	}
	e.MarkEventsAsCommitted()
}
