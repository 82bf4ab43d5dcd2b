package enrollmenthttp

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ARUMANDESU/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	enrollmentapp "gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/cmd"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/query"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/apperr"
	"gitlab.com/teachcorps/recruitment-backend/pkg/env"
	"gitlab.com/teachcorps/recruitment-backend/pkg/httpx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/logging"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/sanitizex"
	"gitlab.com/teachcorps/recruitment-backend/pkg/validationx"
)

var (
	tracer = otel.Tracer("recruitment/internal/ports/http/enrollment")
	logger = otelslog.NewLogger("recruitment/internal/ports/http/enrollment")
)

type HTTP struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	cmd        *enrollmentapp.Command
	query      *enrollmentapp.Query
	projection *projection.Projector
	errhandler *httpx.ErrorHandler
}

type Args struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	App        *enrollmentapp.App
	Errhandler *httpx.ErrorHandler
}

func NewHTTP(args Args) *HTTP {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &HTTP{
		tracer:     args.Tracer,
		logger:     args.Logger,
		cmd:        &args.App.CMD,
		query:      &args.App.Query,
		projection: args.App.Projection,
		errhandler: args.Errhandler,
	}
}

func (h *HTTP) Route(r chi.Router) {
	r.Route("/v1/submissions", func(r chi.Router) {
		r.Post("/", h.SubmitForm)
		r.Get("/", h.ListSubmissions)
		r.Get("/{id}", h.GetSubmission)
		r.Get("/by-email/{email}", h.GetSubmissionByEmail)
		r.Post("/{id}/contacts", h.RecordContact)
		r.Post("/{id}/invitation/accept", h.AcceptInvitation)
		r.Post("/{id}/invitation/refuse", h.RefuseInvitation)
		r.Post("/{id}/resignation", h.RecordResignation)
		r.Post("/{id}/attendance", h.RecordAttendance)
		r.Post("/{id}/lecturer-rights", h.GrantLecturerRights)
	})

	if env.Current() == env.Dev || env.Current() == env.Local || env.Current() == env.Test {
		r.Post("/dev/projection/rebuild", h.RebuildProjection)
	}
}

// RebuildProjection truncates the read model and refolds every stream.
// Dev only, the rebuild takes a table lock on the read model.
func (h *HTTP) RebuildProjection(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RebuildProjection")
	defer span.End()

	if err := h.projection.Populate(ctx); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to rebuild read model")
		return
	}

	httpx.Success(w, r, http.StatusOK, nil)
}

func (h *HTTP) enrollmentID(w http.ResponseWriter, r *http.Request, span trace.Span) (enrollment.ID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.errhandler.HandleError(w, r, span, apperr.NewInvalid("enrollment id must be a valid UUID").WithCause(err), "invalid enrollment id")
		return enrollment.ID{}, false
	}
	return enrollment.ID(id), true
}

type SubmitFormRequest struct {
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	Email              string   `json:"email"`
	Phone              string   `json:"phone"`
	CampaignID         int64    `json:"campaign_id"`
	Region             string   `json:"region"`
	PreferredCities    []string `json:"preferred_cities"`
	PreferredTrainings []int64  `json:"preferred_trainings"`
	GDPRConsent        bool     `json:"gdpr_consent"`
}

func (r *SubmitFormRequest) Sanitized() {
	r.FirstName = sanitizex.CleanSingleLine(r.FirstName)
	r.LastName = sanitizex.CleanSingleLine(r.LastName)
	r.Email = sanitizex.CleanSingleLine(r.Email)
	r.Phone = sanitizex.NormalizePhone(r.Phone)
	r.Region = sanitizex.CleanSingleLine(r.Region)
	for i := range r.PreferredCities {
		r.PreferredCities[i] = sanitizex.CleanSingleLine(r.PreferredCities[i])
	}
}

func (r *SubmitFormRequest) SetSpanAttrs(span trace.Span) {
	otelx.SetSpanAttrs(span, map[string]any{
		"email":       logging.RedactEmail(r.Email),
		"campaign_id": r.CampaignID,
		"region":      r.Region,
	})
}

func (r *SubmitFormRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validationx.NameRules...),
		validation.Field(&r.LastName, validationx.NameRules...),
		validation.Field(&r.Email, validationx.EmailRules...),
		validation.Field(&r.Phone, validationx.PhoneRules...),
		validation.Field(&r.CampaignID, validation.Required, validation.Min(1)),
		validation.Field(&r.Region, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.PreferredTrainings, validation.Required, validation.Length(1, 20)),
		validation.Field(&r.GDPRConsent, validation.Required),
	)
}

func (h *HTTP) SubmitForm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SubmitForm")
	defer span.End()

	var req SubmitFormRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	req.SetSpanAttrs(span)
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	id, err := h.cmd.SubmitForm.Handle(ctx, cmd.SubmitForm{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		CampaignID:         req.CampaignID,
		Region:             req.Region,
		PreferredCities:    req.PreferredCities,
		PreferredTrainings: req.PreferredTrainings,
		GDPRConsent:        req.GDPRConsent,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to submit form")
		return
	}

	httpx.Success(w, r, http.StatusCreated, httpx.Envelope{"id": id.String()})
}

type RecordContactRequest struct {
	Channel    string `json:"channel"`
	Content    string `json:"content"`
	RecordedBy string `json:"recorded_by"`
}

func (r *RecordContactRequest) Sanitized() {
	r.Channel = sanitizex.CleanSingleLine(r.Channel)
	r.Content = sanitizex.CleanMultiline(r.Content)
	r.RecordedBy = sanitizex.CleanSingleLine(r.RecordedBy)
}

func (r *RecordContactRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Channel, validation.Required),
		validation.Field(&r.Content, validation.Required, validation.Length(1, 4000)),
	)
}

func (h *HTTP) RecordContact(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RecordContact")
	defer span.End()

	id, ok := h.enrollmentID(w, r, span)
	if !ok {
		return
	}

	var req RecordContactRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	err := h.cmd.RecordContact.Handle(ctx, cmd.RecordContact{
		EnrollmentID: id,
		Channel:      enrollment.Channel(req.Channel),
		Content:      req.Content,
		RecordedBy:   req.RecordedBy,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to record contact")
		return
	}

	httpx.Success(w, r, http.StatusOK, nil)
}

type AcceptInvitationRequest struct {
	TrainingID int64  `json:"training_id"`
	Channel    string `json:"channel"`
	Notes      string `json:"notes"`
	RecordedBy string `json:"recorded_by"`
}

func (r *AcceptInvitationRequest) Sanitized() {
	r.Channel = sanitizex.CleanSingleLine(r.Channel)
	r.Notes = sanitizex.CleanMultiline(r.Notes)
	r.RecordedBy = sanitizex.CleanSingleLine(r.RecordedBy)
}

func (r *AcceptInvitationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TrainingID, validation.Required, validation.Min(1)),
	)
}

func (h *HTTP) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "AcceptInvitation")
	defer span.End()

	id, ok := h.enrollmentID(w, r, span)
	if !ok {
		return
	}

	var req AcceptInvitationRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	err := h.cmd.AcceptInvitation.Handle(ctx, cmd.AcceptInvitation{
		EnrollmentID: id,
		TrainingID:   req.TrainingID,
		Channel:      enrollment.Channel(req.Channel),
		Notes:        req.Notes,
		RecordedBy:   req.RecordedBy,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to accept invitation")
		return
	}

	httpx.Success(w, r, http.StatusOK, nil)
}

type RefuseInvitationRequest struct {
	Reason     string `json:"reason"`
	Channel    string `json:"channel"`
	Notes      string `json:"notes"`
	RecordedBy string `json:"recorded_by"`
}

func (r *RefuseInvitationRequest) Sanitized() {
	r.Reason = sanitizex.CleanMultiline(r.Reason)
	r.Channel = sanitizex.CleanSingleLine(r.Channel)
	r.Notes = sanitizex.CleanMultiline(r.Notes)
	r.RecordedBy = sanitizex.CleanSingleLine(r.RecordedBy)
}

func (h *HTTP) RefuseInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RefuseInvitation")
	defer span.End()

	id, ok := h.enrollmentID(w, r, span)
	if !ok {
		return
	}

	var req RefuseInvitationRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()

	err := h.cmd.RefuseInvitation.Handle(ctx, cmd.RefuseInvitation{
		EnrollmentID: id,
		Reason:       req.Reason,
		Channel:      enrollment.Channel(req.Channel),
		Notes:        req.Notes,
		RecordedBy:   req.RecordedBy,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to refuse invitation")
		return
	}

	httpx.Success(w, r, http.StatusOK, nil)
}

type RecordResignationRequest struct {
	Kind       string     `json:"kind"`
	Reason     string     `json:"reason"`
	ResumeDate *time.Time `json:"resume_date,omitempty"`
	RecordedBy string     `json:"recorded_by"`
}

func (r *RecordResignationRequest) Sanitized() {
	r.Kind = sanitizex.CleanSingleLine(r.Kind)
	r.Reason = sanitizex.CleanMultiline(r.Reason)
	r.RecordedBy = sanitizex.CleanSingleLine(r.RecordedBy)
}

func (r *RecordResignationRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Kind, validation.Required),
	)
}

func (h *HTTP) RecordResignation(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RecordResignation")
	defer span.End()

	id, ok := h.enrollmentID(w, r, span)
	if !ok {
		return
	}

	var req RecordResignationRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	err := h.cmd.RecordResignation.Handle(ctx, cmd.RecordResignation{
		EnrollmentID: id,
		Kind:         enrollment.ResignationKind(req.Kind),
		Reason:       req.Reason,
		ResumeDate:   req.ResumeDate,
		RecordedBy:   req.RecordedBy,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to record resignation")
		return
	}

	httpx.Success(w, r, http.StatusOK, nil)
}

type RecordAttendanceRequest struct {
	TrainingID int64  `json:"training_id"`
	Attended   bool   `json:"attended"`
	Notes      string `json:"notes"`
	RecordedBy string `json:"recorded_by"`
}

func (r *RecordAttendanceRequest) Sanitized() {
	r.Notes = sanitizex.CleanMultiline(r.Notes)
	r.RecordedBy = sanitizex.CleanSingleLine(r.RecordedBy)
}

func (r *RecordAttendanceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TrainingID, validation.Required, validation.Min(1)),
	)
}

func (h *HTTP) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RecordAttendance")
	defer span.End()

	id, ok := h.enrollmentID(w, r, span)
	if !ok {
		return
	}

	var req RecordAttendanceRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()
	if err := req.Validate(); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate request body")
		return
	}

	err := h.cmd.RecordAttendance.Handle(ctx, cmd.RecordAttendance{
		EnrollmentID: id,
		TrainingID:   req.TrainingID,
		Attended:     req.Attended,
		Notes:        req.Notes,
		RecordedBy:   req.RecordedBy,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to record attendance")
		return
	}

	httpx.Success(w, r, http.StatusOK, nil)
}

type GrantLecturerRightsRequest struct {
	GrantedBy string `json:"granted_by"`
	Notes     string `json:"notes"`
}

func (r *GrantLecturerRightsRequest) Sanitized() {
	r.GrantedBy = sanitizex.CleanSingleLine(r.GrantedBy)
	r.Notes = sanitizex.CleanMultiline(r.Notes)
}

func (h *HTTP) GrantLecturerRights(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GrantLecturerRights")
	defer span.End()

	id, ok := h.enrollmentID(w, r, span)
	if !ok {
		return
	}

	var req GrantLecturerRightsRequest
	if err := httpx.ReadJSON(w, r, &req); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to read json")
		return
	}

	req.Sanitized()

	err := h.cmd.GrantLecturerRights.Handle(ctx, cmd.GrantLecturerRights{
		EnrollmentID: id,
		GrantedBy:    req.GrantedBy,
		Notes:        req.Notes,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to grant lecturer rights")
		return
	}

	httpx.Success(w, r, http.StatusOK, nil)
}

func (h *HTTP) GetSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetSubmission")
	defer span.End()

	id, ok := h.enrollmentID(w, r, span)
	if !ok {
		return
	}

	res, err := h.query.GetEnrollment.Handle(ctx, query.GetEnrollment{ID: id})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to get submission")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"submission": res})
}

func (h *HTTP) GetSubmissionByEmail(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GetSubmissionByEmail")
	defer span.End()

	email := sanitizex.CleanSingleLine(chi.URLParam(r, "email"))
	if err := validation.Validate(email, validationx.EmailRules...); err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to validate email")
		return
	}

	res, err := h.query.GetEnrollment.Handle(ctx, query.GetEnrollment{Email: email})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to get submission by email")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"submission": res})
}

func (h *HTTP) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListSubmissions")
	defer span.End()

	q := r.URL.Query()
	campaignID, _ := strconv.ParseInt(q.Get("campaign_id"), 10, 64)
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	res, err := h.query.GetSubmissions.Handle(ctx, query.GetSubmissions{
		CampaignID: campaignID,
		Region:     sanitizex.CleanSingleLine(q.Get("region")),
		Status:     sanitizex.CleanSingleLine(q.Get("status")),
		Search:     sanitizex.CleanSingleLine(q.Get("search")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to list submissions")
		return
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{
		"items":  res.Items,
		"total":  res.Total,
		"limit":  res.Limit,
		"offset": res.Offset,
	})
}
