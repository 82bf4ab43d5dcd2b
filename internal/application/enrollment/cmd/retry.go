package cmd

import (
	"context"
	"errors"

	"gitlab.com/teachcorps/recruitment-backend/pkg/apperr"
)

// maxConflictRetries bounds how often an optimistic append is replayed
// after losing a race. Each retry reloads the stream, so the command is
// re-checked against the winner's events before trying again.
const maxConflictRetries = 3

func retryOnConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = fn(ctx)
		if err == nil || !isConcurrencyConflict(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}

func isConcurrencyConflict(err error) bool {
	var appErr *apperr.Error
	return errors.As(err, &appErr) && appErr.Code == apperr.CodeConcurrencyConflict
}
