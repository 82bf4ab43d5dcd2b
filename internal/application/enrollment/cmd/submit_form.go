package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/campaign"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/logging"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/sanitizex"
)

type SubmitForm struct {
	ID                 enrollment.ID // optional, generated when zero
	FirstName          string
	LastName           string
	Email              string
	Phone              string
	CampaignID         int64
	Region             string
	PreferredCities    []string
	PreferredTrainings []int64
	GDPRConsent        bool
}

type SubmitFormHandler struct {
	tracer         trace.Tracer
	logger         *slog.Logger
	repo           Repo
	campaigngetter CampaignGetter
	traininggetter TrainingGetter
	refresher      Refresher
	clock          func() time.Time
}

type SubmitFormHandlerArgs struct {
	Tracer         trace.Tracer
	Logger         *slog.Logger
	Repo           Repo
	CampaignGetter CampaignGetter
	TrainingGetter TrainingGetter
	Refresher      Refresher
	Clock          func() time.Time
}

func NewSubmitFormHandler(args SubmitFormHandlerArgs) *SubmitFormHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &SubmitFormHandler{
		tracer:         args.Tracer,
		logger:         args.Logger,
		repo:           args.Repo,
		campaigngetter: args.CampaignGetter,
		traininggetter: args.TrainingGetter,
		refresher:      args.Refresher,
		clock:          args.Clock,
	}
}

// Handle starts a new enrollment stream from a submitted form and
// returns the new aggregate id.
func (h *SubmitFormHandler) Handle(ctx context.Context, cmd SubmitForm) (enrollment.ID, error) {
	const op = "cmd.SubmitFormHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "SubmitFormHandler.Handle",
		trace.WithAttributes(
			attribute.String("enrollment.email", logging.RedactEmail(cmd.Email)),
			attribute.Int64("campaign.id", cmd.CampaignID),
		),
	)
	defer span.End()

	now := h.clock()

	camp, err := h.campaigngetter.GetCampaign(ctx, cmd.CampaignID)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to get campaign")
		return enrollment.ID{}, errorx.Wrap(err, op)
	}
	if !camp.AcceptsSubmissions(now) {
		span.AddEvent("campaign closed")
		return enrollment.ID{}, errorx.Wrap(campaign.ErrClosed, op)
	}

	for _, trainingID := range cmd.PreferredTrainings {
		if _, err := h.traininggetter.GetTraining(ctx, trainingID); err != nil {
			otelx.RecordSpanError(span, err, "failed to resolve preferred training")
			return enrollment.ID{}, errorx.Wrap(err, op)
		}
	}

	cities := make([]string, 0, len(cmd.PreferredCities))
	for _, city := range cmd.PreferredCities {
		if cleaned := sanitizex.CleanSingleLine(city); cleaned != "" {
			cities = append(cities, cleaned)
		}
	}

	enr, err := enrollment.SubmitForm(nil, enrollment.SubmitFormArgs{
		ID:                 cmd.ID,
		FirstName:          sanitizex.CleanSingleLine(cmd.FirstName),
		LastName:           sanitizex.CleanSingleLine(cmd.LastName),
		Email:              sanitizex.CleanSingleLine(cmd.Email),
		Phone:              sanitizex.NormalizePhone(cmd.Phone),
		CampaignID:         cmd.CampaignID,
		Region:             sanitizex.CleanSingleLine(cmd.Region),
		PreferredCities:    cities,
		PreferredTrainings: cmd.PreferredTrainings,
		GDPRConsent:        cmd.GDPRConsent,
		Now:                now,
	})
	if err != nil {
		otelx.RecordSpanError(span, err, "form validation failed")
		return enrollment.ID{}, errorx.Wrap(err, op)
	}

	if err := h.repo.SaveEnrollment(ctx, enr); err != nil {
		otelx.RecordSpanError(span, err, "failed to save enrollment")
		return enrollment.ID{}, errorx.Wrap(fmt.Errorf("failed to save enrollment: %w", err), op)
	}

	refreshReadModel(ctx, h.refresher, h.logger, enr.ID())
	h.logger.InfoContext(ctx, "enrollment form submitted",
		slog.String("enrollment.id", enr.ID().String()),
		slog.Int64("campaign.id", cmd.CampaignID),
	)

	return enr.ID(), nil
}
