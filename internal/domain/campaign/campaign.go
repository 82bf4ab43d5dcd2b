// Package campaign holds the recruitment campaign reference data that
// enrollments attach to. Campaigns are plain entities managed outside
// the event-sourced stream.
package campaign

import (
	"time"

	"github.com/ARUMANDESU/validation"

	"gitlab.com/teachcorps/recruitment-backend/pkg/apperr"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
)

var (
	ErrNotFound = apperr.NewNotFound("campaign not found").
			WithI18n(errorx.MsgCampaignNotFound)
	ErrClosed = apperr.NewInvalid("campaign is not accepting submissions").
			WithI18n(errorx.MsgCampaignClosed)
)

type Campaign struct {
	ID       int64
	Name     string
	Season   string // e.g. "2025-spring"
	OpensAt  time.Time
	ClosesAt time.Time
}

func New(id int64, name, season string, opensAt, closesAt time.Time) (*Campaign, error) {
	err := validation.Errors{
		"name":   validation.Validate(name, validation.Required, validation.Length(2, 200)),
		"season": validation.Validate(season, validation.Required, validation.Length(4, 40)),
	}.Filter()
	if err != nil {
		return nil, err
	}

	return &Campaign{
		ID:       id,
		Name:     name,
		Season:   season,
		OpensAt:  opensAt,
		ClosesAt: closesAt,
	}, nil
}

// AcceptsSubmissions reports whether a form may still be submitted to
// this campaign at the given instant.
func (c *Campaign) AcceptsSubmissions(now time.Time) bool {
	if c == nil {
		return false
	}
	return !now.Before(c.OpensAt) && now.Before(c.ClosesAt)
}
