package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type EnrollmentAssertion struct {
	Enrollment *Enrollment
}

func NewEnrollmentAssertion(e *Enrollment) *EnrollmentAssertion {
	return &EnrollmentAssertion{Enrollment: e}
}

func (ea *EnrollmentAssertion) AssertVersion(t *testing.T, expected int64) *EnrollmentAssertion {
	t.Helper()
	assert.Equal(t, expected, ea.Enrollment.version, "Expected enrollment version to be %d, got %d", expected, ea.Enrollment.version)
	return ea
}

func (ea *EnrollmentAssertion) AssertEmail(t *testing.T, expected string) *EnrollmentAssertion {
	t.Helper()
	assert.Equal(t, expected, ea.Enrollment.email, "Expected enrollment email to be %s, got %s", expected, ea.Enrollment.email)
	return ea
}

func (ea *EnrollmentAssertion) AssertCampaignID(t *testing.T, expected int64) *EnrollmentAssertion {
	t.Helper()
	assert.Equal(t, expected, ea.Enrollment.campaignID, "Expected enrollment campaign id to be %d, got %d", expected, ea.Enrollment.campaignID)
	return ea
}

func (ea *EnrollmentAssertion) AssertContactsCount(t *testing.T, expected int) *EnrollmentAssertion {
	t.Helper()
	assert.Len(t, ea.Enrollment.contacts, expected, "Expected %d contacts, got %d", expected, len(ea.Enrollment.contacts))
	return ea
}

func (ea *EnrollmentAssertion) AssertSelectedTraining(t *testing.T, expected int64) *EnrollmentAssertion {
	t.Helper()
	require.NotNil(t, ea.Enrollment.selectedTraining, "Expected a selected training, got none")
	assert.Equal(t, expected, *ea.Enrollment.selectedTraining,
		"Expected selected training to be %d, got %d", expected, *ea.Enrollment.selectedTraining)
	return ea
}

func (ea *EnrollmentAssertion) AssertNoSelectedTraining(t *testing.T) *EnrollmentAssertion {
	t.Helper()
	assert.Nil(t, ea.Enrollment.selectedTraining, "Expected no selected training, got %v", ea.Enrollment.selectedTraining)
	return ea
}

func (ea *EnrollmentAssertion) AssertRefused(t *testing.T) *EnrollmentAssertion {
	t.Helper()
	assert.True(t, ea.Enrollment.refused, "Expected the invitation to be refused")
	return ea
}

func (ea *EnrollmentAssertion) AssertResignationKind(t *testing.T, expected ResignationKind) *EnrollmentAssertion {
	t.Helper()
	require.NotNil(t, ea.Enrollment.resignation, "Expected a resignation, got none")
	assert.Equal(t, expected, ea.Enrollment.resignation.Kind,
		"Expected resignation kind to be %s, got %s", expected, ea.Enrollment.resignation.Kind)
	return ea
}

func (ea *EnrollmentAssertion) AssertNoResignation(t *testing.T) *EnrollmentAssertion {
	t.Helper()
	assert.Nil(t, ea.Enrollment.resignation, "Expected no resignation, got %v", ea.Enrollment.resignation)
	return ea
}

func (ea *EnrollmentAssertion) AssertAttendance(t *testing.T, trainingID int64, attended bool) *EnrollmentAssertion {
	t.Helper()
	got, recorded := ea.Enrollment.attendance[trainingID]
	require.True(t, recorded, "Expected attendance for training %d to be recorded", trainingID)
	assert.Equal(t, attended, got, "Expected attendance for training %d to be %v, got %v", trainingID, attended, got)
	return ea
}

func (ea *EnrollmentAssertion) AssertLecturerRights(t *testing.T, expected bool) *EnrollmentAssertion {
	t.Helper()
	assert.Equal(t, expected, ea.Enrollment.lecturerRights,
		"Expected lecturer rights to be %v, got %v", expected, ea.Enrollment.lecturerRights)
	return ea
}

func (ea *EnrollmentAssertion) AssertEmailFailures(t *testing.T, expected int) *EnrollmentAssertion {
	t.Helper()
	assert.Equal(t, expected, ea.Enrollment.emailFailures,
		"Expected %d recorded email failures, got %d", expected, ea.Enrollment.emailFailures)
	return ea
}

func (ea *EnrollmentAssertion) AssertEventsCount(t *testing.T, expected int) *EnrollmentAssertion {
	t.Helper()
	events := ea.Enrollment.GetUncommittedEvents()
	assert.Len(t, events, expected, "Expected %d uncommitted events, got %d", expected, len(events))
	return ea
}

func (ea *EnrollmentAssertion) AssertNoEvents(t *testing.T) *EnrollmentAssertion {
	t.Helper()
	events := ea.Enrollment.GetUncommittedEvents()
	assert.Empty(t, events, "Expected no uncommitted events, got %d", len(events))
	return ea
}

func (ea *EnrollmentAssertion) AssertLastEventType(t *testing.T, expected string) *EnrollmentAssertion {
	t.Helper()
	events := ea.Enrollment.GetUncommittedEvents()
	require.NotEmpty(t, events, "Expected at least one uncommitted event")
	last, ok := events[len(events)-1].(Event)
	require.True(t, ok, "Expected last event to be an enrollment event, got %T", events[len(events)-1])
	assert.Equal(t, expected, last.EventType(),
		"Expected last event type to be %s, got %s", expected, last.EventType())
	return ea
}

func (ea *EnrollmentAssertion) AssertSequencesContiguous(t *testing.T) *EnrollmentAssertion {
	t.Helper()
	var prev int64
	for _, raw := range ea.Enrollment.GetUncommittedEvents() {
		evt, ok := raw.(Event)
		require.True(t, ok, "Expected an enrollment event, got %T", raw)
		seq := evt.GetEventHeader().Sequence
		if prev != 0 {
			assert.Equal(t, prev+1, seq, "Expected sequence %d after %d, got %d", prev+1, prev, seq)
		}
		prev = seq
	}
	return ea
}
