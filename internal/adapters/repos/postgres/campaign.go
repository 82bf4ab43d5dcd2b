package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/campaign"
	"gitlab.com/teachcorps/recruitment-backend/pkg/ctxs"
	"gitlab.com/teachcorps/recruitment-backend/pkg/otelx"
)

type CampaignRepo struct {
	tracer trace.Tracer
	logger *slog.Logger
	pool   *pgxpool.Pool
}

func NewCampaignRepo(pool *pgxpool.Pool, t trace.Tracer, l *slog.Logger) *CampaignRepo {
	if pool == nil {
		panic("pgxpool.Pool cannot be nil")
	}
	if t == nil {
		t = tracer
	}
	if l == nil {
		l = logger
	}

	return &CampaignRepo{tracer: t, logger: l, pool: pool}
}

func (r *CampaignRepo) GetCampaign(ctx context.Context, id int64) (*campaign.Campaign, error) {
	ctx, span := r.tracer.Start(ctx, "CampaignRepo.GetCampaign")
	defer span.End()

	query := `
        SELECT id, name, season, opens_at, closes_at
        FROM campaigns
        WHERE id = $1;
    `

	var c campaign.Campaign
	err := r.querier(ctx).QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Season, &c.OpensAt, &c.ClosesAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, campaign.ErrNotFound
		}
		otelx.RecordSpanError(span, err, "failed to get campaign")
		return nil, err
	}

	return &c, nil
}

func (r *CampaignRepo) ListCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	ctx, span := r.tracer.Start(ctx, "CampaignRepo.ListCampaigns")
	defer span.End()

	query := `
        SELECT id, name, season, opens_at, closes_at
        FROM campaigns
        ORDER BY opens_at DESC;
    `

	rows, err := r.querier(ctx).Query(ctx, query)
	if err != nil {
		otelx.RecordSpanError(span, err, "failed to list campaigns")
		return nil, err
	}
	defer rows.Close()

	var campaigns []campaign.Campaign
	for rows.Next() {
		var c campaign.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Season, &c.OpensAt, &c.ClosesAt); err != nil {
			otelx.RecordSpanError(span, err, "failed to scan campaign")
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

func (r *CampaignRepo) querier(ctx context.Context) querier {
	if tx, ok := ctxs.Tx(ctx); ok {
		return tx
	}
	return r.pool
}
