package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNoRowsAffected = errors.New("no rows affected")
	ErrNilFunc        = errors.New("update function cannot be nil")
)

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation, optionally narrowed to one constraint name.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
