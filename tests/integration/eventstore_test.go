package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/apperr"
)

type EventStoreSuite struct {
	TestSuite
}

func TestEventStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(EventStoreSuite))
}

func (s *EventStoreSuite) submittedEnrollment(email string) enrollment.ID {
	e, err := enrollment.SubmitForm(nil, enrollment.SubmitFormArgs{
		FirstName:          "Anna",
		LastName:           "Kowalska",
		Email:              email,
		Phone:              "+48123456789",
		CampaignID:         SpringCampaignID,
		Region:             "mazowieckie",
		PreferredCities:    []string{"Warsaw"},
		PreferredTrainings: []int64{WarsawTrainingID},
		GDPRConsent:        true,
		Now:                time.Now().UTC(),
	})
	s.Require().NoError(err)
	s.Require().NoError(s.App().EventStore.SaveEnrollment(context.Background(), e))
	return e.ID()
}

func (s *EventStoreSuite) countEvents(id enrollment.ID) int {
	var count int
	err := s.Pool().QueryRow(context.Background(),
		`SELECT COUNT(*) FROM enrollment_events WHERE enrollment_id = $1`,
		uuid.UUID(id),
	).Scan(&count)
	s.Require().NoError(err)
	return count
}

func (s *EventStoreSuite) requireConcurrencyConflict(err error) {
	s.Require().Error(err)
	var appErr *apperr.Error
	s.Require().ErrorAs(err, &appErr)
	s.Equal(apperr.CodeConcurrencyConflict, appErr.Code)
}

func contactArgs(content string) enrollment.RecordContactArgs {
	return enrollment.RecordContactArgs{
		Channel:    enrollment.ChannelPhone,
		Content:    content,
		RecordedBy: "coordinator-1",
		Now:        time.Now().UTC(),
	}
}

// Two writers load the same stream at version 1; the second save must
// fail on the expected-version check and persist nothing.
func (s *EventStoreSuite) TestSaveWithStaleVersionConflicts() {
	ctx := context.Background()
	id := s.submittedEnrollment("race.stale@example.com")

	first, err := s.App().EventStore.GetEnrollment(ctx, id)
	s.Require().NoError(err)
	second, err := s.App().EventStore.GetEnrollment(ctx, id)
	s.Require().NoError(err)

	s.Require().NoError(first.RecordContact(contactArgs("reached the candidate")))
	s.Require().NoError(second.RecordContact(contactArgs("left a voicemail")))

	s.Require().NoError(s.App().EventStore.SaveEnrollment(ctx, first))

	err = s.App().EventStore.SaveEnrollment(ctx, second)
	s.requireConcurrencyConflict(err)

	s.Equal(2, s.countEvents(id))
}

// A competing transaction already holds sequence 2 but has not
// committed, so the expected-version check passes and the loser has to
// be caught by the primary key on (enrollment_id, sequence).
func (s *EventStoreSuite) TestSaveLosingInsertRaceConflicts() {
	ctx := context.Background()
	id := s.submittedEnrollment("race.insert@example.com")

	e, err := s.App().EventStore.GetEnrollment(ctx, id)
	s.Require().NoError(err)
	s.Require().NoError(e.RecordContact(contactArgs("reached the candidate")))

	tx, err := s.Pool().Begin(ctx)
	s.Require().NoError(err)
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO enrollment_events (enrollment_id, sequence, event_id, event_type, payload, recorded_at)
		VALUES ($1, 2, $2, 'enrollment.contact_occurred.v1', '{}'::jsonb, NOW())`,
		uuid.UUID(id), uuid.New(),
	)
	s.Require().NoError(err)

	done := make(chan error, 1)
	go func() {
		done <- s.App().EventStore.SaveEnrollment(ctx, e)
	}()

	// the save blocks on the uncommitted primary key entry until the
	// competing transaction resolves
	select {
	case err := <-done:
		s.Require().FailNow("save finished before the competing commit", "err: %v", err)
	case <-time.After(200 * time.Millisecond):
	}

	s.Require().NoError(tx.Commit(ctx))

	select {
	case err := <-done:
		s.requireConcurrencyConflict(err)
	case <-time.After(5 * time.Second):
		s.Require().FailNow("save did not return after the competing commit")
	}

	s.Equal(2, s.countEvents(id))
}
