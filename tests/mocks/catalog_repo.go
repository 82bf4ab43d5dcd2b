package mocks

import (
	"context"
	"sort"
	"sync"
	"testing"

	"gitlab.com/teachcorps/recruitment-backend/internal/domain/campaign"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/training"
)

type CampaignRepo struct {
	mu sync.Mutex
	db map[int64]campaign.Campaign
}

func NewCampaignRepo() *CampaignRepo {
	return &CampaignRepo{db: make(map[int64]campaign.Campaign)}
}

func (r *CampaignRepo) GetCampaign(ctx context.Context, id int64) (*campaign.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.db[id]
	if !exists {
		return nil, campaign.ErrNotFound
	}
	return &c, nil
}

func (r *CampaignRepo) ListCampaigns(ctx context.Context) ([]campaign.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]campaign.Campaign, 0, len(r.db))
	for _, c := range r.db {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CampaignRepo) SeedCampaign(t *testing.T, c campaign.Campaign) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.db[c.ID]; exists {
		t.Fatalf("campaign %d already exists", c.ID)
	}
	r.db[c.ID] = c
}

type TrainingRepo struct {
	mu sync.Mutex
	db map[int64]training.Training
}

func NewTrainingRepo() *TrainingRepo {
	return &TrainingRepo{db: make(map[int64]training.Training)}
}

func (r *TrainingRepo) GetTraining(ctx context.Context, id int64) (*training.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tr, exists := r.db[id]
	if !exists {
		return nil, training.ErrNotFound
	}
	return &tr, nil
}

func (r *TrainingRepo) ListTrainings(ctx context.Context, ids []int64) ([]training.Training, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []training.Training
	if len(ids) == 0 {
		for _, tr := range r.db {
			out = append(out, tr)
		}
	} else {
		for _, id := range ids {
			if tr, exists := r.db[id]; exists {
				out = append(out, tr)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *TrainingRepo) SeedTraining(t *testing.T, tr training.Training) {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.db[tr.ID]; exists {
		t.Fatalf("training %d already exists", tr.ID)
	}
	r.db[tr.ID] = tr
}
