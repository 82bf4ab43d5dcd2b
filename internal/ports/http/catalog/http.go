package cataloghttp

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/campaign"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/training"
	"gitlab.com/teachcorps/recruitment-backend/pkg/httpx"
)

var (
	tracer = otel.Tracer("recruitment/internal/ports/http/catalog")
	logger = otelslog.NewLogger("recruitment/internal/ports/http/catalog")
)

type CampaignLister interface {
	ListCampaigns(ctx context.Context) ([]campaign.Campaign, error)
}

type TrainingLister interface {
	ListTrainings(ctx context.Context, ids []int64) ([]training.Training, error)
}

// HTTP serves the read-only lookups the public application form needs:
// which campaigns are open and which trainings can be preferred.
type HTTP struct {
	tracer     trace.Tracer
	logger     *slog.Logger
	campaigns  CampaignLister
	trainings  TrainingLister
	errhandler *httpx.ErrorHandler
	clock      func() time.Time
}

type Args struct {
	Tracer     trace.Tracer
	Logger     *slog.Logger
	Campaigns  CampaignLister
	Trainings  TrainingLister
	Errhandler *httpx.ErrorHandler
	Clock      func() time.Time
}

func NewHTTP(args Args) *HTTP {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}
	if args.Clock == nil {
		args.Clock = time.Now
	}

	return &HTTP{
		tracer:     args.Tracer,
		logger:     args.Logger,
		campaigns:  args.Campaigns,
		trainings:  args.Trainings,
		errhandler: args.Errhandler,
		clock:      args.Clock,
	}
}

func (h *HTTP) Route(r chi.Router) {
	r.Get("/v1/campaigns", h.ListCampaigns)
	r.Get("/v1/trainings", h.ListTrainings)
}

type CampaignResponse struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Season   string    `json:"season"`
	OpensAt  time.Time `json:"opens_at"`
	ClosesAt time.Time `json:"closes_at"`
	Open     bool      `json:"open"`
}

func (h *HTTP) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListCampaigns")
	defer span.End()

	campaigns, err := h.campaigns.ListCampaigns(ctx)
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to list campaigns")
		return
	}

	now := h.clock()
	items := make([]CampaignResponse, 0, len(campaigns))
	for _, c := range campaigns {
		items = append(items, CampaignResponse{
			ID:       c.ID,
			Name:     c.Name,
			Season:   c.Season,
			OpensAt:  c.OpensAt,
			ClosesAt: c.ClosesAt,
			Open:     c.AcceptsSubmissions(now),
		})
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"campaigns": items})
}

type TrainingResponse struct {
	ID       int64     `json:"id"`
	City     string    `json:"city"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Capacity int       `json:"capacity"`
}

func (h *HTTP) ListTrainings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "ListTrainings")
	defer span.End()

	trainings, err := h.trainings.ListTrainings(ctx, nil)
	if err != nil {
		h.errhandler.HandleError(w, r, span, err, "failed to list trainings")
		return
	}

	items := make([]TrainingResponse, 0, len(trainings))
	for _, t := range trainings {
		items = append(items, TrainingResponse{
			ID:       t.ID,
			City:     t.City,
			StartsAt: t.StartsAt,
			EndsAt:   t.EndsAt,
			Capacity: t.Capacity,
		})
	}

	httpx.Success(w, r, http.StatusOK, httpx.Envelope{"trainings": items})
}
