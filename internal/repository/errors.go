package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the repositories react to
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// foreignKeyViolation returns the violated constraint name, or "" if err is not an FK violation.
func foreignKeyViolation(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgForeignKeyViolation {
		return pqErr.Constraint
	}
	return ""
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation
}
