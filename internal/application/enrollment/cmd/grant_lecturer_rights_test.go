package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/tests/mocks"
)

func (s *Suite) attendedEnrollment(t *testing.T) enrollment.ID {
	t.Helper()

	id := s.SubmitValid(t)
	require.NoError(t, s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	}))
	require.NoError(t, s.Attend.Handle(t.Context(), RecordAttendance{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
		Attended:     true,
	}))
	return id
}

func TestGrantLecturerRightsHandler_HappyPath(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.attendedEnrollment(t)

	err := s.Grant.Handle(t.Context(), GrantLecturerRights{
		EnrollmentID: id,
		GrantedBy:    "program-lead",
	})
	require.NoError(t, err)

	e := mocks.RequireEventExists(t, s.Repo.EventRepo, &enrollment.ObtainedLecturerRights{})
	assert.Equal(t, "program-lead", e.GrantedBy)

	row := s.Row(t, id)
	assert.Equal(t, projection.StatusLecturer, row.Status)
	assert.True(t, row.LecturerRights)
}

func TestGrantLecturerRightsHandler_WithoutAttendance(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	err := s.Grant.Handle(t.Context(), GrantLecturerRights{EnrollmentID: id})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrNoAttendedTraining)
}

func TestGrantLecturerRightsHandler_AbsenceDoesNotCount(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.SubmitValid(t)

	require.NoError(t, s.Accept.Handle(t.Context(), AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
	}))
	require.NoError(t, s.Attend.Handle(t.Context(), RecordAttendance{
		EnrollmentID: id,
		TrainingID:   testTrainingID,
		Attended:     false,
	}))

	err := s.Grant.Handle(t.Context(), GrantLecturerRights{EnrollmentID: id})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrNoAttendedTraining)
}

func TestGrantLecturerRightsHandler_Twice(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.attendedEnrollment(t)

	require.NoError(t, s.Grant.Handle(t.Context(), GrantLecturerRights{EnrollmentID: id}))

	err := s.Grant.Handle(t.Context(), GrantLecturerRights{EnrollmentID: id})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrLecturerRightsAlreadyGranted)
}

func TestGrantLecturerRightsHandler_BlockedByActiveResignation(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.attendedEnrollment(t)

	resume := testNow.AddDate(0, 3, 0)
	require.NoError(t, s.Resign.Handle(t.Context(), RecordResignation{
		EnrollmentID: id,
		Kind:         enrollment.ResignationTemporary,
		Reason:       "parental leave",
		ResumeDate:   &resume,
	}))

	err := s.Grant.Handle(t.Context(), GrantLecturerRights{EnrollmentID: id})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrResignationActive)
}

func TestGrantLecturerRightsHandler_AllowedAfterResumeDate(t *testing.T) {
	t.Parallel()

	s := NewSuite(t)
	id := s.attendedEnrollment(t)

	resume := testNow.AddDate(0, 0, -7)
	require.NoError(t, s.Resign.Handle(t.Context(), RecordResignation{
		EnrollmentID: id,
		Kind:         enrollment.ResignationTemporary,
		Reason:       "short break",
		ResumeDate:   &resume,
	}))

	err := s.Grant.Handle(t.Context(), GrantLecturerRights{EnrollmentID: id})
	require.NoError(t, err)

	row := s.Row(t, id)
	assert.Equal(t, projection.StatusLecturer, row.Status)
}
