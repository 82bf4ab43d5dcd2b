package projection_test

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

type fixture struct {
	Repo      *mocks.EnrollmentRepo
	Store     *mocks.ReadModelStore
	Projector *projection.Projector
}

func newFixture() *fixture {
	repo := mocks.NewEnrollmentRepo()
	store := mocks.NewReadModelStore()

	return &fixture{
		Repo:  repo,
		Store: store,
		Projector: projection.NewProjector(projection.ProjectorArgs{
			Events: repo,
			Store:  store,
		}),
	}
}

func submittedEnrollment(t *testing.T, email string) *enrollment.Enrollment {
	t.Helper()

	enr, err := enrollment.SubmitForm(nil, enrollment.SubmitFormArgs{
		FirstName:          "Anna",
		LastName:           "Kowalska",
		Email:              email,
		Phone:              "+48123456789",
		CampaignID:         7,
		Region:             "mazowieckie",
		PreferredCities:    []string{"Warszawa"},
		PreferredTrainings: []int64{101, 102},
		GDPRConsent:        true,
		Now:                testNow,
	})
	require.NoError(t, err)
	return enr
}

func (f *fixture) seed(t *testing.T, enr *enrollment.Enrollment) {
	t.Helper()
	f.Repo.SeedEnrollment(t, enr)
}

func TestFold_Deterministic(t *testing.T) {
	t.Parallel()

	enr := submittedEnrollment(t, "anna.kowalska@example.com")
	require.NoError(t, enr.RecordContact(enrollment.RecordContactArgs{
		Channel:    enrollment.ChannelPhone,
		Content:    "left a voicemail",
		RecordedBy: "coordinator",
		Now:        testNow.Add(time.Hour),
	}))
	require.NoError(t, enr.RecordAcceptedInvitation(enrollment.RecordAcceptedInvitationArgs{
		TrainingID: 101,
		Channel:    enrollment.ChannelPhone,
		RecordedBy: "coordinator",
		Now:        testNow.Add(2 * time.Hour),
	}))

	stream := make([]enrollment.Event, 0, 3)
	for _, raw := range enr.GetUncommittedEvents() {
		evt, ok := raw.(enrollment.Event)
		require.True(t, ok)
		stream = append(stream, evt)
	}

	first := projection.Fold(stream)
	second := projection.Fold(stream)

	require.NotNil(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, enr.ID(), first.EnrollmentID)
	assert.Equal(t, "anna.kowalska@example.com", first.Email)
	assert.Equal(t, int64(3), first.LastSequence)
	assert.Equal(t, 1, first.ContactCount)
	require.NotNil(t, first.SelectedTrainingID)
	assert.Equal(t, int64(101), *first.SelectedTrainingID)
}

func TestFold_EmptyStream(t *testing.T) {
	t.Parallel()

	assert.Nil(t, projection.Fold(nil))
}

func TestFold_StatusPrecedence(t *testing.T) {
	t.Parallel()

	contact := func(t *testing.T, enr *enrollment.Enrollment) {
		require.NoError(t, enr.RecordContact(enrollment.RecordContactArgs{
			Channel:    enrollment.ChannelPhone,
			Content:    "reached the candidate",
			RecordedBy: "coordinator",
			Now:        testNow.Add(time.Hour),
		}))
	}
	accept := func(t *testing.T, enr *enrollment.Enrollment) {
		require.NoError(t, enr.RecordAcceptedInvitation(enrollment.RecordAcceptedInvitationArgs{
			TrainingID: 101,
			Channel:    enrollment.ChannelPhone,
			RecordedBy: "coordinator",
			Now:        testNow.Add(2 * time.Hour),
		}))
	}
	attend := func(attended bool) func(*testing.T, *enrollment.Enrollment) {
		return func(t *testing.T, enr *enrollment.Enrollment) {
			require.NoError(t, enr.RecordAttendance(enrollment.RecordAttendanceArgs{
				TrainingID: 101,
				Attended:   attended,
				RecordedBy: "coordinator",
				Now:        testNow.Add(3 * time.Hour),
			}))
		}
	}
	resign := func(kind enrollment.ResignationKind) func(*testing.T, *enrollment.Enrollment) {
		return func(t *testing.T, enr *enrollment.Enrollment) {
			require.NoError(t, enr.RecordResignation(enrollment.RecordResignationArgs{
				Kind:       kind,
				Reason:     "personal reasons",
				RecordedBy: "coordinator",
				Now:        testNow.Add(4 * time.Hour),
			}))
		}
	}
	grant := func(t *testing.T, enr *enrollment.Enrollment) {
		require.NoError(t, enr.GrantLecturerRights(enrollment.GrantLecturerRightsArgs{
			GrantedBy: "board",
			Now:       testNow.Add(4 * time.Hour),
		}))
	}

	tests := []struct {
		name  string
		steps []func(*testing.T, *enrollment.Enrollment)
		want  projection.Status
	}{
		{"fresh submission", nil, projection.StatusSubmitted},
		{"contacted", []func(*testing.T, *enrollment.Enrollment){contact}, projection.StatusContacted},
		{"refused invitation", []func(*testing.T, *enrollment.Enrollment){
			func(t *testing.T, enr *enrollment.Enrollment) {
				require.NoError(t, enr.RecordRefusedInvitation(enrollment.RecordRefusedInvitationArgs{
					Reason:     "date does not work",
					RecordedBy: "coordinator",
					Now:        testNow.Add(time.Hour),
				}))
			},
		}, projection.StatusInvitationRefused},
		{"accepted invitation", []func(*testing.T, *enrollment.Enrollment){accept}, projection.StatusInvitationAccepted},
		{"missed training", []func(*testing.T, *enrollment.Enrollment){accept, attend(false)}, projection.StatusMissedTraining},
		{"attended training", []func(*testing.T, *enrollment.Enrollment){accept, attend(true)}, projection.StatusAttendedTraining},
		{"temporary resignation beats attendance", []func(*testing.T, *enrollment.Enrollment){
			accept, attend(true), resign(enrollment.ResignationTemporary),
		}, projection.StatusResignedTemporarily},
		{"permanent resignation beats attendance", []func(*testing.T, *enrollment.Enrollment){
			accept, attend(true), resign(enrollment.ResignationPermanent),
		}, projection.StatusResignedPermanently},
		{"lecturer rights beat everything", []func(*testing.T, *enrollment.Enrollment){
			accept, attend(true), grant, resign(enrollment.ResignationTemporary),
		}, projection.StatusLecturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			enr := submittedEnrollment(t, "precedence@example.com")
			for _, step := range tt.steps {
				step(t, enr)
			}

			stream := make([]enrollment.Event, 0, len(tt.steps)+1)
			for _, raw := range enr.GetUncommittedEvents() {
				evt, ok := raw.(enrollment.Event)
				require.True(t, ok)
				stream = append(stream, evt)
			}

			row := projection.Fold(stream)
			require.NotNil(t, row)
			assert.Equal(t, tt.want, row.Status)
		})
	}
}

func TestProjector_Refresh(t *testing.T) {
	t.Parallel()

	f := newFixture()
	enr := submittedEnrollment(t, "anna.kowalska@example.com")
	f.seed(t, enr)

	require.NoError(t, f.Projector.Refresh(t.Context(), enr.ID()))

	row, err := f.Store.Get(t.Context(), enr.ID())
	require.NoError(t, err)
	assert.Equal(t, projection.StatusSubmitted, row.Status)
	assert.Equal(t, int64(1), row.LastSequence)
}

func TestProjector_RefreshIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture()
	enr := submittedEnrollment(t, "anna.kowalska@example.com")
	require.NoError(t, enr.RecordContact(enrollment.RecordContactArgs{
		Channel:    enrollment.ChannelEmail,
		Content:    "sent the invitation",
		RecordedBy: "coordinator",
		Now:        testNow.Add(time.Hour),
	}))
	f.seed(t, enr)

	require.NoError(t, f.Projector.Refresh(t.Context(), enr.ID()))
	first, err := f.Store.Get(t.Context(), enr.ID())
	require.NoError(t, err)

	require.NoError(t, f.Projector.Refresh(t.Context(), enr.ID()))
	second, err := f.Store.Get(t.Context(), enr.ID())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, second.ContactCount)
}

func TestProjector_RefreshUnknownEnrollment(t *testing.T) {
	t.Parallel()

	f := newFixture()
	id := enrollment.NewID()

	require.NoError(t, f.Projector.Refresh(t.Context(), id))

	_, err := f.Store.Get(t.Context(), id)
	assert.ErrorIs(t, err, enrollment.ErrEnrollmentNotFound)
}

func TestProjector_ApplyRefoldsWholeStream(t *testing.T) {
	t.Parallel()

	f := newFixture()
	enr := submittedEnrollment(t, "anna.kowalska@example.com")
	require.NoError(t, enr.RecordContact(enrollment.RecordContactArgs{
		Channel:    enrollment.ChannelPhone,
		Content:    "confirmed the date",
		RecordedBy: "coordinator",
		Now:        testNow.Add(time.Hour),
	}))

	events := enr.GetUncommittedEvents()
	first, ok := events[0].(enrollment.Event)
	require.True(t, ok)
	f.seed(t, enr)

	// delivering the oldest event still folds the full committed stream
	require.NoError(t, f.Projector.Apply(t.Context(), first))

	row, err := f.Store.Get(t.Context(), enr.ID())
	require.NoError(t, err)
	assert.Equal(t, projection.StatusContacted, row.Status)
	assert.Equal(t, int64(2), row.LastSequence)
}

func TestProjector_StaleFoldDoesNotDowngrade(t *testing.T) {
	t.Parallel()

	f := newFixture()
	enr := submittedEnrollment(t, "anna.kowalska@example.com")
	require.NoError(t, enr.RecordContact(enrollment.RecordContactArgs{
		Channel:    enrollment.ChannelPhone,
		Content:    "confirmed the date",
		RecordedBy: "coordinator",
		Now:        testNow.Add(time.Hour),
	}))

	stream := make([]enrollment.Event, 0, 2)
	for _, raw := range enr.GetUncommittedEvents() {
		evt, ok := raw.(enrollment.Event)
		require.True(t, ok)
		stream = append(stream, evt)
	}
	f.seed(t, enr)

	require.NoError(t, f.Projector.Refresh(t.Context(), enr.ID()))

	// a redelivered fold of a stream prefix must not win over the full fold
	require.NoError(t, f.Store.Upsert(t.Context(), projection.Fold(stream[:1])))

	row, err := f.Store.Get(t.Context(), enr.ID())
	require.NoError(t, err)
	assert.Equal(t, projection.StatusContacted, row.Status)
	assert.Equal(t, int64(2), row.LastSequence)
}

func TestProjector_Populate(t *testing.T) {
	t.Parallel()

	f := newFixture()

	first := submittedEnrollment(t, "first@example.com")
	require.NoError(t, first.RecordAcceptedInvitation(enrollment.RecordAcceptedInvitationArgs{
		TrainingID: 101,
		Channel:    enrollment.ChannelPhone,
		RecordedBy: "coordinator",
		Now:        testNow.Add(time.Hour),
	}))
	second := submittedEnrollment(t, "second@example.com")

	f.seed(t, first)
	f.seed(t, second)

	// a leftover row for an enrollment with no stream must not survive a rebuild
	ghost := enrollment.NewID()
	require.NoError(t, f.Store.Upsert(t.Context(), &projection.Row{
		EnrollmentID: ghost,
		Email:        "ghost@example.com",
		Status:       projection.StatusSubmitted,
		LastSequence: 1,
	}))

	require.NoError(t, f.Projector.Populate(t.Context()))

	row, err := f.Store.Get(t.Context(), first.ID())
	require.NoError(t, err)
	assert.Equal(t, projection.StatusInvitationAccepted, row.Status)
	assert.Equal(t, int64(2), row.LastSequence)

	row, err = f.Store.Get(t.Context(), second.ID())
	require.NoError(t, err)
	assert.Equal(t, projection.StatusSubmitted, row.Status)

	_, err = f.Store.Get(t.Context(), ghost)
	assert.ErrorIs(t, err, enrollment.ErrEnrollmentNotFound)
}
