package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gitlab.com/teachcorps/recruitment-backend/internal/adapters/repos/postgres"
	"gitlab.com/teachcorps/recruitment-backend/internal/application/enrollment/projection"
	"gitlab.com/teachcorps/recruitment-backend/internal/domain/enrollment"
)

// ReadModelStore is an in-memory stand-in for the read-model table. It
// honors the same stale-fold guard the postgres upsert uses.
type ReadModelStore struct {
	mu   sync.Mutex
	rows map[enrollment.ID]projection.Row
}

func NewReadModelStore() *ReadModelStore {
	return &ReadModelStore{rows: make(map[enrollment.ID]projection.Row)}
}

func (s *ReadModelStore) Upsert(ctx context.Context, row *projection.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.rows[row.EnrollmentID]; exists && existing.LastSequence > row.LastSequence {
		return nil
	}
	s.rows[row.EnrollmentID] = *row
	return nil
}

func (s *ReadModelStore) Truncate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = make(map[enrollment.ID]projection.Row)
	return nil
}

func (s *ReadModelStore) Get(ctx context.Context, id enrollment.ID) (*projection.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, exists := s.rows[id]
	if !exists {
		return nil, enrollment.ErrEnrollmentNotFound
	}
	return &row, nil
}

func (s *ReadModelStore) GetByEmail(ctx context.Context, email string) (*projection.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.rows {
		if row.Email == email {
			out := row
			return &out, nil
		}
	}
	return nil, enrollment.ErrEnrollmentNotFound
}

func (s *ReadModelStore) List(ctx context.Context, filter postgres.ListFilter) ([]projection.Row, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter = filter.Clamp()

	var matched []projection.Row
	for _, row := range s.rows {
		if filter.CampaignID != 0 && row.CampaignID != filter.CampaignID {
			continue
		}
		if filter.Region != "" && row.Region != filter.Region {
			continue
		}
		if filter.Status != "" && string(row.Status) != filter.Status {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			haystack := strings.ToLower(row.FirstName + " " + row.LastName + " " + row.Email)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].SubmittedAt.Equal(matched[j].SubmittedAt) {
			return matched[i].SubmittedAt.After(matched[j].SubmittedAt)
		}
		return matched[i].EnrollmentID.String() < matched[j].EnrollmentID.String()
	})

	total := len(matched)

	offset := filter.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]

	if filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	return matched, total, nil
}
