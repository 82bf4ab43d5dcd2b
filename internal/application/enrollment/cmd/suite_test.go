package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/campaign"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/training"
	"gitlab.com/teachcorps/recruitment-backend/tests/mocks"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

const (
	testCampaignID   = int64(1)
	testTrainingID   = int64(101)
	otherTrainingID  = int64(102)
	closedCampaignID = int64(2)
)

type Suite struct {
	Repo      *mocks.EnrollmentRepo
	Campaigns *mocks.CampaignRepo
	Trainings *mocks.TrainingRepo
	Store     *mocks.ReadModelStore
	Projector *projection.Projector

	Submit       *SubmitFormHandler
	Contact      *RecordContactHandler
	Accept       *AcceptInvitationHandler
	Refuse       *RefuseInvitationHandler
	Resign       *RecordResignationHandler
	Attend       *RecordAttendanceHandler
	Grant        *GrantLecturerRightsHandler
	EmailFailure *RecordEmailFailureHandler
}

func NewSuite(t *testing.T) *Suite {
	t.Helper()

	repo := mocks.NewEnrollmentRepo()
	campaigns := mocks.NewCampaignRepo()
	trainings := mocks.NewTrainingRepo()
	store := mocks.NewReadModelStore()

	projector := projection.NewProjector(projection.ProjectorArgs{
		Events: repo,
		Store:  store,
	})

	campaigns.SeedCampaign(t, campaign.Campaign{
		ID:       testCampaignID,
		Name:     "Spring Recruitment",
		Season:   "spring-2025",
		OpensAt:  testNow.AddDate(0, -1, 0),
		ClosesAt: testNow.AddDate(0, 1, 0),
	})
	campaigns.SeedCampaign(t, campaign.Campaign{
		ID:       closedCampaignID,
		Name:     "Autumn Recruitment",
		Season:   "autumn-2024",
		OpensAt:  testNow.AddDate(0, -6, 0),
		ClosesAt: testNow.AddDate(0, -4, 0),
	})
	trainings.SeedTraining(t, training.Training{
		ID:       testTrainingID,
		City:     "Warsaw",
		StartsAt: testNow.AddDate(0, 0, 14),
		EndsAt:   testNow.AddDate(0, 0, 16),
		Capacity: 30,
	})
	trainings.SeedTraining(t, training.Training{
		ID:       otherTrainingID,
		City:     "Krakow",
		StartsAt: testNow.AddDate(0, 0, 21),
		EndsAt:   testNow.AddDate(0, 0, 23),
		Capacity: 25,
	})

	clock := func() time.Time { return testNow }

	return &Suite{
		Repo:      repo,
		Campaigns: campaigns,
		Trainings: trainings,
		Store:     store,
		Projector: projector,
		Submit: NewSubmitFormHandler(SubmitFormHandlerArgs{
			Repo:           repo,
			CampaignGetter: campaigns,
			TrainingGetter: trainings,
			Refresher:      projector,
			Clock:          clock,
		}),
		Contact: NewRecordContactHandler(RecordContactHandlerArgs{
			Repo:      repo,
			Refresher: projector,
			Clock:     clock,
		}),
		Accept: NewAcceptInvitationHandler(AcceptInvitationHandlerArgs{
			Repo:           repo,
			TrainingGetter: trainings,
			Refresher:      projector,
			Clock:          clock,
		}),
		Refuse: NewRefuseInvitationHandler(RefuseInvitationHandlerArgs{
			Repo:      repo,
			Refresher: projector,
			Clock:     clock,
		}),
		Resign: NewRecordResignationHandler(RecordResignationHandlerArgs{
			Repo:      repo,
			Refresher: projector,
			Clock:     clock,
		}),
		Attend: NewRecordAttendanceHandler(RecordAttendanceHandlerArgs{
			Repo:      repo,
			Refresher: projector,
			Clock:     clock,
		}),
		Grant: NewGrantLecturerRightsHandler(GrantLecturerRightsHandlerArgs{
			Repo:      repo,
			Refresher: projector,
			Clock:     clock,
		}),
		EmailFailure: NewRecordEmailFailureHandler(RecordEmailFailureHandlerArgs{
			Repo:      repo,
			Refresher: projector,
			Clock:     clock,
		}),
	}
}

func validSubmitForm() SubmitForm {
	return SubmitForm{
		FirstName:          "Anna",
		LastName:           "Kowalska",
		Email:              "anna.kowalska@example.com",
		Phone:              "+48 123 456 789",
		CampaignID:         testCampaignID,
		Region:             "mazowieckie",
		PreferredCities:    []string{"Warsaw"},
		PreferredTrainings: []int64{testTrainingID, otherTrainingID},
		GDPRConsent:        true,
	}
}

func (s *Suite) SubmitValid(t *testing.T) enrollment.ID {
	t.Helper()

	id, err := s.Submit.Handle(t.Context(), validSubmitForm())
	require.NoError(t, err)
	return id
}

func (s *Suite) Row(t *testing.T, id enrollment.ID) *projection.Row {
	t.Helper()

	row, err := s.Store.Get(t.Context(), id)
	require.NoError(t, err)
	return row
}
