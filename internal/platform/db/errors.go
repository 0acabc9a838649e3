package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error code for unique constraint violations.
const codeUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a unique constraint violation.
// Repositories map it to their conflict sentinels so that a constraint race
// surfaces as a 409 instead of a bare 500.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == codeUniqueViolation
}
