package query

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/adapters/repos/postgres"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

type GetSubmissions struct {
	CampaignID int64
	Region     string
	Status     string
	Search     string
	Limit      int
	Offset     int
}

type GetSubmissionsResponse struct {
	Items  []*EnrollmentResponse `json:"items"`
	Total  int                   `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

type GetSubmissionsHandler struct {
	tracer trace.Tracer
	logger *slog.Logger
	reader Reader
}

type GetSubmissionsHandlerArgs struct {
	Tracer trace.Tracer
	Logger *slog.Logger
	Reader Reader
}

func NewGetSubmissionsHandler(args GetSubmissionsHandlerArgs) *GetSubmissionsHandler {
	if args.Tracer == nil {
		args.Tracer = tracer
	}
	if args.Logger == nil {
		args.Logger = logger
	}

	return &GetSubmissionsHandler{
		tracer: args.Tracer,
		logger: args.Logger,
		reader: args.Reader,
	}
}

func (h *GetSubmissionsHandler) Handle(ctx context.Context, query GetSubmissions) (*GetSubmissionsResponse, error) {
	const op = "query.GetSubmissionsHandler.Handle"
	ctx, span := h.tracer.Start(ctx, "GetSubmissionsHandler.Handle",
		trace.WithAttributes(
			attribute.Int64("campaign.id", query.CampaignID),
			attribute.String("filter.status", query.Status),
		),
	)
	defer span.End()

	filter := postgres.ListFilter{
		CampaignID: query.CampaignID,
		Region:     query.Region,
		Status:     query.Status,
		Search:     query.Search,
		Limit:      query.Limit,
		Offset:     query.Offset,
	}.Clamp()

	rows, total, err := h.reader.List(ctx, filter)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to list submissions")
		return nil, errorx.Wrap(err, op)
	}

	items := make([]*EnrollmentResponse, 0, len(rows))
	for i := range rows {
		items = append(items, responseFromRow(&rows[i]))
	}

	return &GetSubmissionsResponse{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}
