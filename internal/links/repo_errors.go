package links

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"

	// Class 22 covers malformed values, e.g. 22021 invalid UTF-8.
	dataExceptionClass = "22"

	urlUniqueConstraint     = "links_user_url_unique"
	categoryOwnerConstraint = "links_category_owner_fk"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil, false
	}
	return pgErr, true
}

func isURLUniqueViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == uniqueViolation &&
		pgErr.ConstraintName == urlUniqueConstraint
}

func isCategoryOwnerViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == foreignKeyViolation &&
		pgErr.ConstraintName == categoryOwnerConstraint
}

func isCheckViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == checkViolation
}

func isDataException(err error) bool {
	pgErr, ok := pgError(err)
	return ok && strings.HasPrefix(pgErr.Code, dataExceptionClass)
}
