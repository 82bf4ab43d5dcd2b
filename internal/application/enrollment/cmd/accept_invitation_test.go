package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/training"
	"gitlab.com/teachcorps/recruitment-backend/tests/mocks"
)

func TestAcceptInvitationHandler_HappyPath(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	err := s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
		Channel:      enrollment.ChannelPhone,
		RecordedBy:   "coordinator-1",
	})
	require.NoError(t, err)

	e := mocks.RequireEventExists(t, s.Repo.EventRepo, &enrollment.InvitationAccepted{})
	assert.Equal(t, testTrainingID, e.TrainingID)

	row := s.Row(t, id)
	assert.Equal(t, projection.StatusInvitationAccepted, row.Status)
	require.NotNil(t, row.SelectedTrainingID)
	assert.Equal(t, testTrainingID, *row.SelectedTrainingID)
}

func TestAcceptInvitationHandler_UnknownTraining(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	err := s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   999,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, training.ErrNotFound)
}

func TestAcceptInvitationHandler_NotPreferredTraining(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)

	form := validSubmitForm()
	form.PreferredTrainings = []int64{testTrainingID}
	id, err := s.Submit.Handle(t.Context(), form)
	require.NoError(t, err)

	err = s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   otherTrainingID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrTrainingNotPreferred)
}

func TestAcceptInvitationHandler_SecondAcceptance(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	require.NoError(t, s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	}))

	err := s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   otherTrainingID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrTrainingAlreadyAccepted)
}

func TestAcceptInvitationHandler_AfterRefusal(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	require.NoError(t, s.Refuse.Handle(t.Context(), RefuseInvitation{
		EnrollmentID: id,
		Reason:       "not interested",
	}))

	err := s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrInvitationAlreadyRefused)
}

func TestRefuseInvitationHandler_EmailChannel(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	err := s.Refuse.Handle(t.Context(), RefuseInvitation{
		EnrollmentID: id,
		Reason:       "schedule conflict",
		Channel:      enrollment.ChannelEmail,
	})
	require.NoError(t, err)

	e := mocks.RequireEventExists(t, s.Repo.EventRepo, &enrollment.InvitationRefused{})
	assert.Equal(t, "schedule conflict", e.Reason)

	row := s.Row(t, id)
	assert.Equal(t, projection.StatusInvitationRefused, row.Status)
	assert.True(t, row.Refused)
	assert.Equal(t, "schedule conflict", row.RefusalReason)
}

func TestRefuseInvitationHandler_AfterAcceptance(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	require.NoError(t, s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	}))

	err := s.Refuse.Handle(t.Context(), RefuseInvitation{
		EnrollmentID: id,
		Reason:       "changed my mind",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrTrainingAlreadyAccepted)
}
