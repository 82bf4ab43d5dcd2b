package enrollment

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/ARUMANDESU/validation"
	"github.com/google/uuid"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/event"
	"gitlab.com/teachcorps/recruitment-backend/pkg/validationx"
)

type ID uuid.UUID

func NewID() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

func (id ID) IsZero() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	uid, err := uuid.Parse(s)
	if err != nil {
		return err
	}

	*id = ID(uid)
	return nil
}

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelPhone    Channel = "phone"
	ChannelSMS      Channel = "sms"
	ChannelInPerson Channel = "in_person"
)

func (c Channel) String() string { return string(c) }

func (c Channel) Validate() bool {
	switch c {
	case ChannelEmail, ChannelPhone, ChannelSMS, ChannelInPerson:
		return true
	default:
		return false
	}
}

type Contact struct {
	Channel    Channel
	Content    string
	RecordedBy string
	OccurredAt time.Time
}

type ResignationKind string

const (
	ResignationTemporary ResignationKind = "temporary"
	ResignationPermanent ResignationKind = "permanent"
)

type Resignation struct {
	Kind       ResignationKind
	Reason     string
	ResumeDate *time.Time // only for temporary
}

// Active reports whether the resignation still blocks progress at the
// given instant. A permanent resignation never clears; a temporary one
// clears once its resume date has passed.
func (r *Resignation) Active(now time.Time) bool {
	if r == nil {
		return false
	}
	if r.Kind == ResignationPermanent {
		return true
	}
	if r.ResumeDate == nil {
		return true
	}
	return now.Before(*r.ResumeDate)
}

// Enrollment is the event-sourced aggregate for one candidate's journey
// from form submission to lecturer rights or resignation. All state is
// derived by folding the committed stream; version equals the number of
// folded events and doubles as the optimistic-concurrency token.
type Enrollment struct {
	event.Recorder
	id      ID
	version int64

	firstName          string
	lastName           string
	email              string
	phone              string
	campaignID         int64
	region             string
	preferredCities    []string
	preferredTrainings []int64
	gdprConsent        bool
	submittedAt        time.Time

	contacts         []Contact
	selectedTraining *int64 // set by InvitationAccepted
	refused          bool
	refusalReason    string
	resignation      *Resignation
	attendance       map[int64]bool // training id -> attended
	lecturerRights   bool
	emailFailures    int
}

// Rehydrate folds a committed stream into the aggregate. A nil or empty
// stream yields the "new" sentinel: version 0, no facts, only SubmitForm
// is legal.
func Rehydrate(id ID, events []Event) *Enrollment {
	e := &Enrollment{id: id, attendance: make(map[int64]bool)}
	for _, evt := range events {
		e.apply(evt)
	}
	return e
}

// apply is the fold: one case per event kind, each touching only the
// fields that kind owns.
func (e *Enrollment) apply(evt Event) {
	switch ev := evt.(type) {
	case *FormSubmitted:
		e.id = ev.EnrollmentID
		e.firstName = ev.FirstName
		e.lastName = ev.LastName
		e.email = ev.Email
		e.phone = ev.Phone
		e.campaignID = ev.CampaignID
		e.region = ev.Region
		e.preferredCities = slices.Clone(ev.PreferredCities)
		e.preferredTrainings = slices.Clone(ev.PreferredTrainings)
		e.gdprConsent = ev.GDPRConsent
		e.submittedAt = ev.SubmittedAt
	case *ContactOccurred:
		e.contacts = append(e.contacts, Contact{
			Channel:    ev.Channel,
			Content:    ev.Content,
			RecordedBy: ev.RecordedBy,
			OccurredAt: ev.OccurredAt,
		})
	case *InvitationAccepted:
		tid := ev.TrainingID
		e.selectedTraining = &tid
	case *InvitationRefused:
		e.refused = true
		e.refusalReason = ev.Reason
	case *ResignedTemporarily:
		e.resignation = &Resignation{
			Kind:       ResignationTemporary,
			Reason:     ev.Reason,
			ResumeDate: ev.ResumeDate,
		}
	case *ResignedPermanently:
		e.resignation = &Resignation{
			Kind:   ResignationPermanent,
			Reason: ev.Reason,
		}
	case *AttendedTraining:
		e.attendance[ev.TrainingID] = true
	case *WasAbsentFromTraining:
		e.attendance[ev.TrainingID] = false
	case *ObtainedLecturerRights:
		e.lecturerRights = true
	case *EmailDeliveryFailed:
		e.emailFailures++
	}

	e.version++
}

// raise records a new fact: assigns the next sequence number, folds it
// into state and queues it for the store.
func (e *Enrollment) raise(evt Event) {
	evt.SetSequence(e.version + 1)
	e.AddEvent(evt)
	e.apply(evt)
}

type SubmitFormArgs struct {
	ID                 ID
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	CampaignID         int64
	Region             string
	PreferredCities    []string
	PreferredTrainings []int64
	GDPRConsent        bool
	Now                time.Time
}

func (a SubmitFormArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.FirstName, validationx.NameRules...),
		validation.Field(&a.LastName, validationx.NameRules...),
		validation.Field(&a.Email, validationx.EmailRules...),
		validation.Field(&a.Phone, validationx.PhoneRules...),
		validation.Field(&a.CampaignID, validation.Required),
		validation.Field(&a.Region, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.PreferredCities, validation.Required, validation.Length(1, 50)),
		validation.Field(&a.PreferredTrainings, validation.Required, validation.Length(1, 50)),
		validation.Field(&a.GDPRConsent, validation.Required.Error("consent is required")),
	)
}

// SubmitForm starts a new enrollment. Legal only on the sentinel state;
// resubmission with the same id is a conflict, not an update.
func SubmitForm(e *Enrollment, args SubmitFormArgs) (*Enrollment, error) {
	if e != nil && e.version > 0 {
		return nil, ErrAlreadySubmitted
	}
	if err := args.Validate(); err != nil {
		return nil, err
	}

	id := args.ID
	if id.IsZero() {
		id = NewID()
	}

	enr := Rehydrate(id, nil)
	enr.raise(&FormSubmitted{
		Header:             event.NewEventHeader(args.Now),
		EnrollmentID:       id,
		FirstName:          args.FirstName,
		LastName:           args.LastName,
		Email:              args.Email,
		Phone:              args.Phone,
		CampaignID:         args.CampaignID,
		Region:             args.Region,
		PreferredCities:    slices.Clone(args.PreferredCities),
		PreferredTrainings: slices.Clone(args.PreferredTrainings),
		GDPRConsent:        args.GDPRConsent,
		SubmittedAt:        args.Now.UTC(),
	})

	return enr, nil
}

type RecordContactArgs struct {
	Channel    Channel
	Content    string
	RecordedBy string
	Now        time.Time
}

func (a RecordContactArgs) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Content, validation.Required, validation.Length(1, 4000)),
		validation.Field(&a.RecordedBy, validation.Required),
	)
}

// RecordContact appends to the contact log and nothing else; it never
// changes lifecycle status.
func (e *Enrollment) RecordContact(args RecordContactArgs) error {
	if err := e.requireSubmitted(); err != nil {
		return err
	}
	if !args.Channel.Validate() {
		return ErrUnknownChannel
	}
	if err := args.Validate(); err != nil {
		return err
	}
	if e.HasResignedPermanently() {
		return ErrEnrollmentClosed
	}

	e.raise(&ContactOccurred{
		Header:       event.NewEventHeader(args.Now),
		EnrollmentID: e.id,
		Channel:      args.Channel,
		Content:      args.Content,
		RecordedBy:   args.RecordedBy,
		OccurredAt:   args.Now.UTC(),
	})

	return nil
}

type RecordAcceptedInvitationArgs struct {
	TrainingID int64
	Channel    Channel
	Notes      string
	RecordedBy string
	Now        time.Time
}

func (e *Enrollment) RecordAcceptedInvitation(args RecordAcceptedInvitationArgs) error {
	if err := e.requireSubmitted(); err != nil {
		return err
	}
	if e.HasResignedPermanently() {
		return ErrEnrollmentClosed
	}
	if e.selectedTraining != nil {
		return ErrTrainingAlreadyAccepted
	}
	if e.refused {
		return ErrInvitationAlreadyRefused
	}
	if !slices.Contains(e.preferredTrainings, args.TrainingID) {
		return ErrTrainingNotPreferred
	}

	e.raise(&InvitationAccepted{
		Header:       event.NewEventHeader(args.Now),
		EnrollmentID: e.id,
		TrainingID:   args.TrainingID,
		Channel:      args.Channel,
		Notes:        args.Notes,
		RecordedBy:   args.RecordedBy,
	})

	return nil
}

type RecordRefusedInvitationArgs struct {
	Reason     string
	Channel    Channel
	Notes      string
	RecordedBy string
	Now        time.Time
}

func (e *Enrollment) RecordRefusedInvitation(args RecordRefusedInvitationArgs) error {
	if err := e.requireSubmitted(); err != nil {
		return err
	}
	if e.HasResignedPermanently() {
		return ErrEnrollmentClosed
	}
	if e.selectedTraining != nil {
		return ErrTrainingAlreadyAccepted
	}

	e.raise(&InvitationRefused{
		Header:       event.NewEventHeader(args.Now),
		EnrollmentID: e.id,
		Reason:       args.Reason,
		Channel:      args.Channel,
		Notes:        args.Notes,
		RecordedBy:   args.RecordedBy,
	})

	return nil
}

type RecordResignationArgs struct {
	Kind       ResignationKind
	Reason     string
	ResumeDate *time.Time // temporary only
	RecordedBy string
	Now        time.Time
}

// RecordResignation is legal unless the candidate already resigned
// permanently. A temporary resignation keeps a previously accepted
// training selection: the resume date signals intent to return.
func (e *Enrollment) RecordResignation(args RecordResignationArgs) error {
	if err := e.requireSubmitted(); err != nil {
		return err
	}
	if e.HasResignedPermanently() {
		return ErrAlreadyResignedPermanently
	}

	switch args.Kind {
	case ResignationTemporary:
		e.raise(&ResignedTemporarily{
			Header:       event.NewEventHeader(args.Now),
			EnrollmentID: e.id,
			Reason:       args.Reason,
			ResumeDate:   args.ResumeDate,
			RecordedBy:   args.RecordedBy,
		})
	case ResignationPermanent:
		e.raise(&ResignedPermanently{
			Header:       event.NewEventHeader(args.Now),
			EnrollmentID: e.id,
			Reason:       args.Reason,
			RecordedBy:   args.RecordedBy,
		})
	default:
		return ErrUnknownResignationKind
	}

	return nil
}

type RecordAttendanceArgs struct {
	TrainingID int64
	Attended   bool
	Notes      string
	RecordedBy string
	Now        time.Time
}

func (e *Enrollment) RecordAttendance(args RecordAttendanceArgs) error {
	if err := e.requireSubmitted(); err != nil {
		return err
	}
	if e.HasResignedPermanently() {
		return ErrEnrollmentClosed
	}
	if e.selectedTraining == nil || *e.selectedTraining != args.TrainingID {
		return ErrTrainingNotAccepted
	}

	if args.Attended {
		e.raise(&AttendedTraining{
			Header:       event.NewEventHeader(args.Now),
			EnrollmentID: e.id,
			TrainingID:   args.TrainingID,
			Notes:        args.Notes,
			RecordedBy:   args.RecordedBy,
		})
	} else {
		e.raise(&WasAbsentFromTraining{
			Header:       event.NewEventHeader(args.Now),
			EnrollmentID: e.id,
			TrainingID:   args.TrainingID,
			Notes:        args.Notes,
			RecordedBy:   args.RecordedBy,
		})
	}

	return nil
}

type GrantLecturerRightsArgs struct {
	GrantedBy string
	Notes     string
	Now       time.Time
}

func (e *Enrollment) GrantLecturerRights(args GrantLecturerRightsArgs) error {
	if err := e.requireSubmitted(); err != nil {
		return err
	}
	if e.lecturerRights {
		return ErrLecturerRightsAlreadyGranted
	}
	if e.resignation.Active(args.Now) {
		return ErrResignationActive
	}
	if !e.HasAttendedAnyTraining() {
		return ErrNoAttendedTraining
	}

	e.raise(&ObtainedLecturerRights{
		Header:       event.NewEventHeader(args.Now),
		EnrollmentID: e.id,
		GrantedBy:    args.GrantedBy,
		Notes:        args.Notes,
	})

	return nil
}

type RecordEmailSendingFailureArgs struct {
	Recipient    string
	Subject      string
	Body         string
	FailureCause string
	Now          time.Time
}

// RecordEmailSendingFailure is non-fatal bookkeeping: it is legal at any
// point after submission, including after a permanent resignation.
func (e *Enrollment) RecordEmailSendingFailure(args RecordEmailSendingFailureArgs) error {
	if err := e.requireSubmitted(); err != nil {
		return err
	}

	e.raise(&EmailDeliveryFailed{
		Header:       event.NewEventHeader(args.Now),
		EnrollmentID: e.id,
		Recipient:    args.Recipient,
		Subject:      args.Subject,
		Body:         args.Body,
		FailureCause: args.FailureCause,
	})

	return nil
}

func (e *Enrollment) requireSubmitted() error {
	if e == nil || e.version == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

func (e *Enrollment) ID() ID {
	if e == nil {
		return ID{}
	}
	return e.id
}

// Version is the number of committed-plus-raised events folded so far;
// Version minus len(GetUncommittedEvents()) is the expected version for
// the next append.
func (e *Enrollment) Version() int64 {
	if e == nil {
		return 0
	}
	return e.version
}

func (e *Enrollment) IsSubmitted() bool {
	return e != nil && e.version > 0
}

func (e *Enrollment) Email() string {
	if e == nil {
		return ""
	}
	return e.email
}

func (e *Enrollment) FullName() string {
	if e == nil {
		return ""
	}
	return e.firstName + " " + e.lastName
}

func (e *Enrollment) CampaignID() int64 {
	if e == nil {
		return 0
	}
	return e.campaignID
}

func (e *Enrollment) Region() string {
	if e == nil {
		return ""
	}
	return e.region
}

func (e *Enrollment) PreferredTrainings() []int64 {
	if e == nil {
		return nil
	}
	return slices.Clone(e.preferredTrainings)
}

func (e *Enrollment) SelectedTraining() (int64, bool) {
	if e == nil || e.selectedTraining == nil {
		return 0, false
	}
	return *e.selectedTraining, true
}

func (e *Enrollment) Contacts() []Contact {
	if e == nil {
		return nil
	}
	return slices.Clone(e.contacts)
}

func (e *Enrollment) HasRefusedTraining() bool {
	return e != nil && e.refused
}

func (e *Enrollment) Resignation() *Resignation {
	if e == nil || e.resignation == nil {
		return nil
	}
	r := *e.resignation
	return &r
}

func (e *Enrollment) HasResignedPermanently() bool {
	return e != nil && e.resignation != nil && e.resignation.Kind == ResignationPermanent
}

func (e *Enrollment) HasResignedTemporarily() bool {
	return e != nil && e.resignation != nil && e.resignation.Kind == ResignationTemporary
}

func (e *Enrollment) HasAttendedAnyTraining() bool {
	if e == nil {
		return false
	}
	for _, attended := range e.attendance {
		if attended {
			return true
		}
	}
	return false
}

func (e *Enrollment) Attendance(trainingID int64) (attended bool, recorded bool) {
	if e == nil {
		return false, false
	}
	attended, recorded = e.attendance[trainingID]
	return attended, recorded
}

func (e *Enrollment) HasLecturerRights() bool {
	return e != nil && e.lecturerRights
}

func (e *Enrollment) EmailFailures() int {
	if e == nil {
		return 0
	}
	return e.emailFailures
}
