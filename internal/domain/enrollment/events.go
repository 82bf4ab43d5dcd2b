package enrollment

import (
	"encoding/json"
	"fmt"
	"time"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/event"
)

const EventStreamName = "events_enrollment"

// Type tags are versioned so that stored payloads can evolve without
// breaking older consumers; a reader that does not know a newer tag
// ignores the added fields.
const (
	TypeFormSubmitted          = "enrollment.form_submitted.v1"
	TypeContactOccurred        = "enrollment.contact_occurred.v1"
	TypeInvitationAccepted     = "enrollment.invitation_accepted.v1"
	TypeInvitationRefused      = "enrollment.invitation_refused.v1"
	TypeResignedTemporarily    = "enrollment.resigned_temporarily.v1"
	TypeResignedPermanently    = "enrollment.resigned_permanently.v1"
	TypeAttendedTraining       = "enrollment.attended_training.v1"
	TypeWasAbsentFromTraining  = "enrollment.was_absent_from_training.v1"
	TypeObtainedLecturerRights = "enrollment.obtained_lecturer_rights.v1"
	TypeEmailDeliveryFailed    = "enrollment.email_delivery_failed.v1"
)

// Event is the closed union of everything that can happen to one
// enrollment. Every kind carries its aggregate id and a stable type tag.
type Event interface {
	event.Event
	EventType() string
	AggregateID() ID
	SetSequence(seq int64)
}

type FormSubmitted struct {
	event.Header
	event.Otel
	EnrollmentID       ID        `json:"enrollment_id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	CampaignID         int64     `json:"campaign_id"`
	Region             string    `json:"region"`
	PreferredCities    []string  `json:"preferred_cities"`
	PreferredTrainings []int64   `json:"preferred_trainings"`
	GDPRConsent        bool      `json:"gdpr_consent"`
	SubmittedAt        time.Time `json:"submitted_at"`
}

func (e FormSubmitted) GetStreamName() string { return EventStreamName }
func (e FormSubmitted) EventType() string     { return TypeFormSubmitted }
func (e FormSubmitted) AggregateID() ID       { return e.EnrollmentID }

type ContactOccurred struct {
	event.Header
	event.Otel
	EnrollmentID ID        `json:"enrollment_id"`
	Channel      Channel   `json:"channel"`
	Content      string    `json:"content"`
	RecordedBy   string    `json:"recorded_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func (e ContactOccurred) GetStreamName() string { return EventStreamName }
func (e ContactOccurred) EventType() string     { return TypeContactOccurred }
func (e ContactOccurred) AggregateID() ID       { return e.EnrollmentID }

type InvitationAccepted struct {
	event.Header
	event.Otel
	EnrollmentID ID      `json:"enrollment_id"`
	TrainingID   int64   `json:"training_id"`
	Channel      Channel `json:"channel"`
	Notes        string  `json:"notes"`
	RecordedBy   string  `json:"recorded_by"`
}

func (e InvitationAccepted) GetStreamName() string { return EventStreamName }
func (e InvitationAccepted) EventType() string     { return TypeInvitationAccepted }
func (e InvitationAccepted) AggregateID() ID       { return e.EnrollmentID }

type InvitationRefused struct {
	event.Header
	event.Otel
	EnrollmentID ID      `json:"enrollment_id"`
	Reason       string  `json:"reason"`
	Channel      Channel `json:"channel"`
	Notes        string  `json:"notes"`
	RecordedBy   string  `json:"recorded_by"`
}

func (e InvitationRefused) GetStreamName() string { return EventStreamName }
func (e InvitationRefused) EventType() string     { return TypeInvitationRefused }
func (e InvitationRefused) AggregateID() ID       { return e.EnrollmentID }

type ResignedTemporarily struct {
	event.Header
	event.Otel
	EnrollmentID ID         `json:"enrollment_id"`
	Reason       string     `json:"reason"`
	ResumeDate   *time.Time `json:"resume_date,omitempty"`
	RecordedBy   string     `json:"recorded_by"`
}

func (e ResignedTemporarily) GetStreamName() string { return EventStreamName }
func (e ResignedTemporarily) EventType() string     { return TypeResignedTemporarily }
func (e ResignedTemporarily) AggregateID() ID       { return e.EnrollmentID }

type ResignedPermanently struct {
	event.Header
	event.Otel
	EnrollmentID ID     `json:"enrollment_id"`
	Reason       string `json:"reason"`
	RecordedBy   string `json:"recorded_by"`
}

func (e ResignedPermanently) GetStreamName() string { return EventStreamName }
func (e ResignedPermanently) EventType() string     { return TypeResignedPermanently }
func (e ResignedPermanently) AggregateID() ID       { return e.EnrollmentID }

type AttendedTraining struct {
	event.Header
	event.Otel
	EnrollmentID ID     `json:"enrollment_id"`
	TrainingID   int64  `json:"training_id"`
	Notes        string `json:"notes"`
	RecordedBy   string `json:"recorded_by"`
}

func (e AttendedTraining) GetStreamName() string { return EventStreamName }
func (e AttendedTraining) EventType() string     { return TypeAttendedTraining }
func (e AttendedTraining) AggregateID() ID       { return e.EnrollmentID }

type WasAbsentFromTraining struct {
	event.Header
	event.Otel
	EnrollmentID ID     `json:"enrollment_id"`
	TrainingID   int64  `json:"training_id"`
	Notes        string `json:"notes"`
	RecordedBy   string `json:"recorded_by"`
}

func (e WasAbsentFromTraining) GetStreamName() string { return EventStreamName }
func (e WasAbsentFromTraining) EventType() string     { return TypeWasAbsentFromTraining }
func (e WasAbsentFromTraining) AggregateID() ID       { return e.EnrollmentID }

type ObtainedLecturerRights struct {
	event.Header
	event.Otel
	EnrollmentID ID     `json:"enrollment_id"`
	GrantedBy    string `json:"granted_by"`
	Notes        string `json:"notes"`
}

func (e ObtainedLecturerRights) GetStreamName() string { return EventStreamName }
func (e ObtainedLecturerRights) EventType() string     { return TypeObtainedLecturerRights }
func (e ObtainedLecturerRights) AggregateID() ID       { return e.EnrollmentID }

type EmailDeliveryFailed struct {
	event.Header
	event.Otel
	EnrollmentID ID     `json:"enrollment_id"`
	Recipient    string `json:"recipient"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	FailureCause string `json:"failure_cause"`
}

func (e EmailDeliveryFailed) GetStreamName() string { return EventStreamName }
func (e EmailDeliveryFailed) EventType() string     { return TypeEmailDeliveryFailed }
func (e EmailDeliveryFailed) AggregateID() ID       { return e.EnrollmentID }

// DecodeEvent reconstructs a stored event payload from its type tag.
// Unknown tags are an error: the union is closed and schema evolution
// happens by adding a new versioned tag, never by reusing one.
func DecodeEvent(eventType string, payload []byte) (Event, error) {
	var evt Event
	switch eventType {
	case TypeFormSubmitted:
		evt = &FormSubmitted{}
	case TypeContactOccurred:
		evt = &ContactOccurred{}
	case TypeInvitationAccepted:
		evt = &InvitationAccepted{}
	case TypeInvitationRefused:
		evt = &InvitationRefused{}
	case TypeResignedTemporarily:
		evt = &ResignedTemporarily{}
	case TypeResignedPermanently:
		evt = &ResignedPermanently{}
	case TypeAttendedTraining:
		evt = &AttendedTraining{}
	case TypeWasAbsentFromTraining:
		evt = &WasAbsentFromTraining{}
	case TypeObtainedLecturerRights:
		evt = &ObtainedLecturerRights{}
	case TypeEmailDeliveryFailed:
		evt = &EmailDeliveryFailed{}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	if err := json.Unmarshal(payload, evt); err != nil {
		return nil, fmt.Errorf("decode %s: %w", eventType, err)
	}

	return evt, nil
}

// EncodeEvent serializes an event payload for the append-only log.
func EncodeEvent(evt Event) ([]byte, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", evt.EventType(), err)
	}

	return payload, nil
}
