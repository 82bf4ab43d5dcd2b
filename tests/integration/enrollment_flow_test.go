package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	mailevent "gitlab.com/teachcorps/recruitment-backend/internal/application/mail/event"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
)

type EnrollmentFlowSuite struct {
	TestSuite
}

func TestEnrollmentFlowSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(EnrollmentFlowSuite))
}

func (s *EnrollmentFlowSuite) postJSON(path string, body any) *httptest.ResponseRecorder {
	raw, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Coordinator", "coordinator-1")
	rec := httptest.NewRecorder()
	s.App().HTTPHandler.ServeHTTP(rec, req)
	return rec
}

func (s *EnrollmentFlowSuite) getJSON(path string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.App().HTTPHandler.ServeHTTP(rec, req)

	var payload map[string]any
	if rec.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func (s *EnrollmentFlowSuite) submitForm(email string) enrollment.ID {
	rec := s.postJSON("/v1/submissions", map[string]any{
		"first_name":          "Anna",
		"last_name":           "Kowalska",
		"email":               email,
		"phone":               "+48 123 456 789",
		"campaign_id":         SpringCampaignID,
		"region":              "mazowieckie",
		"preferred_cities":    []string{"Warsaw"},
		"preferred_trainings": []int64{WarsawTrainingID, KrakowTrainingID},
		"gdpr_consent":        true,
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		ID string `json:"id"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))

	raw, err := uuid.Parse(body.ID)
	s.Require().NoError(err)
	return enrollment.ID(raw)
}

func (s *EnrollmentFlowSuite) row(id enrollment.ID) *projection.Row {
	row, err := s.App().ReadModels.Get(context.Background(), id)
	s.Require().NoError(err)
	return row
}

func (s *EnrollmentFlowSuite) TestCandidateLifecycle() {
	email := "anna.kowalska@example.com"
	id := s.submitForm(email)

	s.T().Run("read model row after submission", func(t *testing.T) {
		row := s.row(id)
		s.Equal(projection.StatusSubmitted, row.Status)
		s.Equal(email, row.Email)
		s.Equal("+48123456789", row.Phone)
		s.Equal(int64(1), row.LastSequence)
	})

	s.T().Run("confirmation email is sent", func(t *testing.T) {
		s.Require().Eventually(func() bool {
			return len(s.App().MockMailSender.GetSentMails()) > 0
		}, 5*time.Second, 100*time.Millisecond, "confirmation email should be sent")

		s.App().MockMailSender.AssertMailSent(t, email, mailevent.FormSubmittedSubject)
	})

	s.T().Run("record contact", func(t *testing.T) {
		rec := s.postJSON("/v1/submissions/"+id.String()+"/contacts", map[string]any{
			"channel": "phone",
			"content": "reached the candidate, invited to the Warsaw training",
		})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.Equal(projection.StatusContacted, s.row(id).Status)
	})

	s.T().Run("accept invitation", func(t *testing.T) {
		rec := s.postJSON("/v1/submissions/"+id.String()+"/invitation/accept", map[string]any{
			"training_id": WarsawTrainingID,
			"channel":     "phone",
		})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		row := s.row(id)
		s.Equal(projection.StatusInvitationAccepted, row.Status)
		s.Require().NotNil(row.SelectedTrainingID)
		s.Equal(WarsawTrainingID, *row.SelectedTrainingID)
	})

	s.T().Run("record attendance", func(t *testing.T) {
		rec := s.postJSON("/v1/submissions/"+id.String()+"/attendance", map[string]any{
			"training_id": WarsawTrainingID,
			"attended":    true,
		})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		s.Equal(projection.StatusAttendedTraining, s.row(id).Status)
	})

	s.T().Run("grant lecturer rights", func(t *testing.T) {
		rec := s.postJSON("/v1/submissions/"+id.String()+"/lecturer-rights", map[string]any{
			"granted_by": "program board",
		})
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		row := s.row(id)
		s.Equal(projection.StatusLecturer, row.Status)
		s.True(row.LecturerRights)
	})

	s.T().Run("stream holds the whole journey", func(t *testing.T) {
		events, err := s.App().EventStore.LoadEnrollmentEvents(context.Background(), id)
		s.Require().NoError(err)
		s.Len(events, 5)
		s.Equal(enrollment.TypeFormSubmitted, events[0].EventType())
		s.Equal(enrollment.TypeObtainedLecturerRights, events[4].EventType())
	})

	s.T().Run("get submission over http", func(t *testing.T) {
		rec, payload := s.getJSON("/v1/submissions/" + id.String())
		s.Require().Equal(http.StatusOK, rec.Code)
		submission, ok := payload["submission"].(map[string]any)
		s.Require().True(ok)
		s.Equal("lecturer", submission["status"])
	})

	s.T().Run("get submission by email", func(t *testing.T) {
		rec, payload := s.getJSON("/v1/submissions/by-email/" + email)
		s.Require().Equal(http.StatusOK, rec.Code)
		submission, ok := payload["submission"].(map[string]any)
		s.Require().True(ok)
		s.Equal(id.String(), submission["id"])
	})
}

func (s *EnrollmentFlowSuite) TestSubmitToClosedCampaign() {
	rec := s.postJSON("/v1/submissions", map[string]any{
		"first_name":          "Jan",
		"last_name":           "Nowak",
		"email":               "jan.nowak@example.com",
		"phone":               "+48 987 654 321",
		"campaign_id":         ClosedCampaignID,
		"region":              "malopolskie",
		"preferred_cities":    []string{"Krakow"},
		"preferred_trainings": []int64{KrakowTrainingID},
		"gdpr_consent":        true,
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func (s *EnrollmentFlowSuite) TestSubmitValidation() {
	rec := s.postJSON("/v1/submissions", map[string]any{
		"first_name":          "Anna",
		"last_name":           "Kowalska",
		"email":               "not-an-email",
		"phone":               "+48 123 456 789",
		"campaign_id":         SpringCampaignID,
		"region":              "mazowieckie",
		"preferred_cities":    []string{"Warsaw"},
		"preferred_trainings": []int64{WarsawTrainingID},
		"gdpr_consent":        true,
	})
	s.Equal(http.StatusBadRequest, rec.Code, rec.Body.String())
}

func (s *EnrollmentFlowSuite) TestInvalidTransitionOverHTTP() {
	id := s.submitForm("maria.wisniewska@example.com")

	rec := s.postJSON("/v1/submissions/"+id.String()+"/attendance", map[string]any{
		"training_id": WarsawTrainingID,
		"attended":    true,
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func (s *EnrollmentFlowSuite) TestPermanentResignationClosesEnrollment() {
	id := s.submitForm("piotr.zielinski@example.com")

	rec := s.postJSON("/v1/submissions/"+id.String()+"/resignation", map[string]any{
		"kind":   "permanent",
		"reason": "moved abroad",
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Equal(projection.StatusResignedPermanently, s.row(id).Status)

	rec = s.postJSON("/v1/submissions/"+id.String()+"/contacts", map[string]any{
		"channel": "phone",
		"content": "follow-up call",
	})
	s.Equal(http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func (s *EnrollmentFlowSuite) TestMailFailureIsRecordedOnStream() {
	s.App().MockMailSender.FailWith("mailbox unavailable")
	defer s.App().MockMailSender.Reset()

	id := s.submitForm("dead.mailbox@example.com")

	s.Require().Eventually(func() bool {
		events, err := s.App().EventStore.LoadEnrollmentEvents(context.Background(), id)
		if err != nil {
			return false
		}
		for _, evt := range events {
			if evt.EventType() == enrollment.TypeEmailDeliveryFailed {
				return true
			}
		}
		return false
	}, 5*time.Second, 100*time.Millisecond, "delivery failure should be appended to the stream")

	s.Require().Eventually(func() bool {
		row, err := s.App().ReadModels.Get(context.Background(), id)
		return err == nil && row.EmailFailureCount == 1
	}, 5*time.Second, 100*time.Millisecond, "read model should count the delivery failure")
}

func (s *EnrollmentFlowSuite) TestProjectionRebuild() {
	id := s.submitForm("rebuild.me@example.com")

	// wipe the read model behind the projector's back
	_, err := s.Pool().Exec(context.Background(), "TRUNCATE enrollment_read_models")
	s.Require().NoError(err)

	rec := s.postJSON("/dev/projection/rebuild", map[string]any{})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.Equal(projection.StatusSubmitted, s.row(id).Status)
}

func (s *EnrollmentFlowSuite) TestListSubmissions() {
	s.submitForm("list.one@example.com")
	s.submitForm("list.two@example.com")

	rec, payload := s.getJSON("/v1/submissions?campaign_id=1&region=mazowieckie")
	s.Require().Equal(http.StatusOK, rec.Code)

	s.EqualValues(2, payload["total"])
	items, ok := payload["items"].([]any)
	s.Require().True(ok)
	s.Len(items, 2)

	rec, payload = s.getJSON("/v1/submissions?search=list.one")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.EqualValues(1, payload["total"])
}

func (s *EnrollmentFlowSuite) TestListSubmissionsClampsPagination() {
	s.submitForm("clamp.one@example.com")

	rec, payload := s.getJSON("/v1/submissions?offset=-1&limit=500")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	s.EqualValues(1, payload["total"])
	s.EqualValues(50, payload["limit"])
	s.EqualValues(0, payload["offset"])
	items, ok := payload["items"].([]any)
	s.Require().True(ok)
	s.Len(items, 1)
}
