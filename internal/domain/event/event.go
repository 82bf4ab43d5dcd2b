package event

import (
	"time"

	"github.com/google/uuid"
)

type Event interface {
	GetEventHeader() Header
	GetStreamName() string
}

// Header carries the identity and ordering metadata shared by every
// domain event. Sequence is the position of the event within its
// aggregate's stream; it is assigned when the aggregate raises the
// event and verified by the store on append.
type Header struct {
	ID        uuid.UUID         `json:"id"`
	Sequence  int64             `json:"sequence"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

func (e *Header) GetEventHeader() Header {
	return *e
}

func (e *Header) SetSequence(seq int64) {
	e.Sequence = seq
}

// NewEventHeader stamps the header with the caller-supplied instant so
// folding stays deterministic; callers pass their command clock, never
// time.Now directly.
func NewEventHeader(now time.Time) Header {
	return Header{
		ID:        uuid.New(),
		Timestamp: now.UTC(),
	}
}

type Recorder struct {
	events []Event
}

func (e *Recorder) AddEvent(event Event) {
	if e == nil {
		return
	}
	e.events = append(e.events, event)
}

func (e *Recorder) GetUncommittedEvents() []Event {
	if e == nil {
		return nil
	}
	return e.events
}

func (e *Recorder) MarkEventsAsCommitted() {
	if e == nil {
		return
	}
	e.events = []Event{}
}
