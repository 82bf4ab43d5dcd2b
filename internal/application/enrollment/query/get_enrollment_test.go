package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/tests/mocks"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func seedRow(t *testing.T, store *mocks.ReadModelStore, row projection.Row) projection.Row {
	t.Helper()

	if row.EnrollmentID.IsZero() {
		row.EnrollmentID = enrollment.NewID()
	}
	if row.Status == "" {
		row.Status = projection.StatusSubmitted
	}
	if row.LastSequence == 0 {
		row.LastSequence = 1
	}
	if row.SubmittedAt.IsZero() {
		row.SubmittedAt = testNow
	}
	row.UpdatedAt = testNow

	require.NoError(t, store.Upsert(t.Context(), &row))
	return row
}

func TestGetEnrollmentHandler_ByID(t *testing.T) {
	t.Parallel()

	store := mocks.NewReadModelStore()
	row := seedRow(t, store, projection.Row{
		FirstName:  "Anna",
		LastName:   "Kowalska",
		Email:      "anna.kowalska@example.com",
		CampaignID: 1,
		Region:     "mazowieckie",
	})

	h := NewGetEnrollmentHandler(GetEnrollmentHandlerArgs{Reader: store})

	res, err := h.Handle(t.Context(), GetEnrollment{ID: row.EnrollmentID})
	require.NoError(t, err)

	assert.Equal(t, row.EnrollmentID.String(), res.ID)
	assert.Equal(t, "Anna", res.FirstName)
	assert.Equal(t, "anna.kowalska@example.com", res.Email)
	assert.Equal(t, string(projection.StatusSubmitted), res.Status)
	assert.Equal(t, testNow, res.SubmittedAt)
}

func TestGetEnrollmentHandler_ByEmail(t *testing.T) {
	t.Parallel()

	store := mocks.NewReadModelStore()
	row := seedRow(t, store, projection.Row{
		FirstName: "Piotr",
		LastName:  "Nowak",
		Email:     "piotr.nowak@example.com",
	})

	h := NewGetEnrollmentHandler(GetEnrollmentHandlerArgs{Reader: store})

	res, err := h.Handle(t.Context(), GetEnrollment{Email: "piotr.nowak@example.com"})
	require.NoError(t, err)
	assert.Equal(t, row.EnrollmentID.String(), res.ID)
}

func TestGetEnrollmentHandler_NotFound(t *testing.T) {
	t.Parallel()

	store := mocks.NewReadModelStore()
	h := NewGetEnrollmentHandler(GetEnrollmentHandlerArgs{Reader: store})

	_, err := h.Handle(t.Context(), GetEnrollment{ID: enrollment.NewID()})
	require.Error(t, err)
	assert.ErrorIs(t, err, enrollment.ErrEnrollmentNotFound)
}
