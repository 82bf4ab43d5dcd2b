package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/tests/mocks"
)

func TestRecordEmailFailureHandler_HappyPath(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	err := s.EmailFailure.Handle(t.Context(), RecordEmailFailure{
		EnrollmentID: id,
		Recipient:    "anna.kowalska@example.com",
		Subject:      "Your application",
		Body:         "Hello Anna",
		FailureCause: "mailbox unavailable",
	})
	require.NoError(t, err)

	e := mocks.RequireEventExists(t, s.Repo.EventRepo, &enrollment.EmailDeliveryFailed{})
	assert.Equal(t, id, e.EnrollmentID)
	assert.Equal(t, "anna.kowalska@example.com", e.Recipient)
	assert.Equal(t, "mailbox unavailable", e.FailureCause)

	row := s.Row(t, id)
	assert.Equal(t, 1, row.EmailFailureCount)
	assert.Equal(t, projection.StatusSubmitted, row.Status)
}

func TestRecordEmailFailureHandler_UnknownEnrollment(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)

	err := s.EmailFailure.Handle(t.Context(), RecordEmailFailure{
		EnrollmentID: enrollment.NewID(),
		Recipient:    "nobody@example.com",
		FailureCause: "mailbox unavailable",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrEnrollmentNotFound)
}

func TestRecordEmailFailureHandler_DoesNotChangeStatus(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	require.NoError(t, s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	}))

	require.NoError(t, s.EmailFailure.Handle(t.Context(), RecordEmailFailure{
		EnrollmentID: id,
		Recipient:    "anna.kowalska@example.com",
		FailureCause: "connection reset",
	}))

	row := s.Row(t, id)
	assert.Equal(t, projection.StatusInvitationAccepted, row.Status)
	assert.Equal(t, 1, row.EmailFailureCount)
}
