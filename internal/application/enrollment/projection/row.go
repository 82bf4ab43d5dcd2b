package projection

import (
	"time"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
)

// Status is the coordinator-facing lifecycle label shown in listings.
// It is derived, never stored in the stream.
type Status string

const (
	StatusSubmitted           Status = "submitted"
	StatusContacted           Status = "contacted"
	StatusInvitationAccepted  Status = "invitation_accepted"
	StatusInvitationRefused   Status = "invitation_refused"
	StatusAttendedTraining    Status = "attended_training"
	StatusMissedTraining      Status = "missed_training"
	StatusResignedTemporarily Status = "resigned_temporarily"
	StatusResignedPermanently Status = "resigned_permanently"
	StatusLecturer            Status = "lecturer"
)

// Row is one denormalized read-model record per enrollment, refreshed
// by folding the stream. LastSequence is the idempotence guard: a row
// folded from a longer stream always wins.
type Row struct {
	EnrollmentID          enrollment.ID
	FirstName             string
	LastName              string
	Email                 string
	Phone                 string
	CampaignID            int64
	Region                string
	PreferredCities       []string
	PreferredTrainings    []int64
	Status                Status
	SelectedTrainingID    *int64
	Refused               bool
	RefusalReason         string
	ResignationKind       string
	ResignationResumeDate *time.Time
	ContactCount          int
	LastContactAt         *time.Time
	AttendedCount         int
	AbsenceCount          int
	LecturerRights        bool
	EmailFailureCount     int
	SubmittedAt           time.Time
	LastSequence          int64
	UpdatedAt             time.Time
}

// Fold derives the read-model row from an ordered stream. Folding the
// same stream always yields the same row.
func Fold(events []enrollment.Event) *Row {
	if len(events) == 0 {
		return nil
	}

	row := &Row{}
	for _, evt := range events {
		applyEvent(row, evt)
	}
	row.Status = deriveStatus(row)

	return row
}

func applyEvent(row *Row, evt enrollment.Event) {
	header := evt.GetEventHeader()
	if header.Sequence > row.LastSequence {
		row.LastSequence = header.Sequence
		row.UpdatedAt = header.Timestamp
	}

	switch ev := evt.(type) {
	case *enrollment.FormSubmitted:
		row.EnrollmentID = ev.EnrollmentID
		row.FirstName = ev.FirstName
		row.LastName = ev.LastName
		row.Email = ev.Email
		row.Phone = ev.Phone
		row.CampaignID = ev.CampaignID
		row.Region = ev.Region
		row.PreferredCities = append([]string(nil), ev.PreferredCities...)
		row.PreferredTrainings = append([]int64(nil), ev.PreferredTrainings...)
		row.SubmittedAt = ev.SubmittedAt
	case *enrollment.ContactOccurred:
		row.ContactCount++
		occurredAt := ev.OccurredAt
		row.LastContactAt = &occurredAt
	case *enrollment.InvitationAccepted:
		trainingID := ev.TrainingID
		row.SelectedTrainingID = &trainingID
	case *enrollment.InvitationRefused:
		row.Refused = true
		row.RefusalReason = ev.Reason
	case *enrollment.ResignedTemporarily:
		row.ResignationKind = string(enrollment.ResignationTemporary)
		row.ResignationResumeDate = ev.ResumeDate
	case *enrollment.ResignedPermanently:
		row.ResignationKind = string(enrollment.ResignationPermanent)
		row.ResignationResumeDate = nil
	case *enrollment.AttendedTraining:
		row.AttendedCount++
	case *enrollment.WasAbsentFromTraining:
		row.AbsenceCount++
	case *enrollment.ObtainedLecturerRights:
		row.LecturerRights = true
	case *enrollment.EmailDeliveryFailed:
		row.EmailFailureCount++
	}
}

// deriveStatus picks the most advanced label the stream supports.
// Permanent resignation and lecturer rights dominate everything else.
func deriveStatus(row *Row) Status {
	switch {
	case row.LecturerRights:
		return StatusLecturer
	case row.ResignationKind == string(enrollment.ResignationPermanent):
		return StatusResignedPermanently
	case row.ResignationKind == string(enrollment.ResignationTemporary):
		return StatusResignedTemporarily
	case row.AttendedCount > 0:
		return StatusAttendedTraining
	case row.AbsenceCount > 0:
		return StatusMissedTraining
	case row.SelectedTrainingID != nil:
		return StatusInvitationAccepted
	case row.Refused:
		return StatusInvitationRefused
	case row.ContactCount > 0:
		return StatusContacted
	default:
		return StatusSubmitted
	}
}
