package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/tests/mocks"
)

func TestRecordAttendanceHandler_Attended(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	require.NoError(t, s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	}))

	err := s.Attend.Handle(t.Context(), RecordAttendance{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
		Attended:     true,
		RecordedBy:   "trainer-1",
	})
	require.NoError(t, err)

	e := mocks.RequireEventExists(t, s.Repo.EventRepo, &enrollment.AttendedTraining{})
	assert.Equal(t, testTrainingID, e.TrainingID)

	row := s.Row(t, id)
	assert.Equal(t, projection.StatusAttendedTraining, row.Status)
	assert.Equal(t, 1, row.AttendedCount)
	assert.Equal(t, 0, row.AbsenceCount)
}

func TestRecordAttendanceHandler_Absent(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	require.NoError(t, s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	}))

	err := s.Attend.Handle(t.Context(), RecordAttendance{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
		Attended:     false,
	})
	require.NoError(t, err)

	mocks.RequireEventExists(t, s.Repo.EventRepo, &enrollment.WasAbsentFromTraining{})

	row := s.Row(t, id)
	assert.Equal(t, projection.StatusMissedTraining, row.Status)
	assert.Equal(t, 1, row.AbsenceCount)
}

func TestRecordAttendanceHandler_WithoutAcceptedInvitation(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	err := s.Attend.Handle(t.Context(), RecordAttendance{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
		Attended:     true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrTrainingNotAccepted)
}

func TestRecordAttendanceHandler_DifferentTraining(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	require.NoError(t, s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	}))

	err := s.Attend.Handle(t.Context(), RecordAttendance{
		EnrollmentID: id,
		TrainingID:   otherTrainingID,
		Attended:     true,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrTrainingNotAccepted)
}
