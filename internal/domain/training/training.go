// Package training holds the weekend-training reference data that
// invitations and attendance records point at.
package training

import (
	"time"

	"github.com/ARUMANDESU/validation"

	"gitlab.com/teachcorps/recruitment-backend/pkg/apperr"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
)

var ErrNotFound = apperr.NewNotFound("training not found").
	WithI18n(errorx.MsgTrainingNotFound)

type Training struct {
	ID       int64
	City     string
	StartsAt time.Time
	EndsAt   time.Time
	Capacity int
}

func New(id int64, city string, startsAt, endsAt time.Time, capacity int) (*Training, error) {
	err := validation.Errors{
		"city":     validation.Validate(city, validation.Required, validation.Length(2, 100)),
		"capacity": validation.Validate(capacity, validation.Min(1)),
	}.Filter()
	if err != nil {
		return nil, err
	}
	if !endsAt.After(startsAt) {
		return nil, apperr.NewInvalid("training must end after it starts").WithField("ends_at")
	}

	return &Training{
		ID:       id,
		City:     city,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Capacity: capacity,
	}, nil
}

func (t *Training) HasEnded(now time.Time) bool {
	return t != nil && now.After(t.EndsAt)
}
