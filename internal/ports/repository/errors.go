package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is returned when an insert trips a uniqueness constraint.
// The attendance check-in path relies on it to fall back to a re-read.
var ErrDuplicate = errors.New("duplicate record")

// isUniqueViolation detects a Postgres unique_violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
