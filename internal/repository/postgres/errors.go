package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to. Everything else bubbles up
// wrapped and unclassified.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError reports a unique constraint violation. The grant
// repository translates this into a DuplicateGrantError when the partial
// unique index on active (folder, user) pairs fires.
func IsPgDuplicateError(err error) bool {
	return pgErrCode(err) == codeUniqueViolation
}

// IsPgNoRowsError reports that a query matched no rows, which the
// repositories read as not-found within the bound tenant.
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsPgForeignKeyError reports a foreign key violation.
func IsPgForeignKeyError(err error) bool {
	return pgErrCode(err) == codeForeignKeyViolation
}
