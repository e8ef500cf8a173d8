// Package repositories holds the PostgreSQL persistence layer. Subpackages
// implement one repository each; this package translates driver errors into
// the sentinels in internal/common.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/savethatagain/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes handled specially.
const (
	codeUniqueViolation         = "23505"
	codeInvalidTextRepresention = "22P02"
)

// DBError maps err to a common sentinel where one applies and wraps it as a
// "db error" otherwise. Malformed identifiers are reported as not found.
func DBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", common.ErrAlreadyExists, pgErr.ConstraintName)
		case codeInvalidTextRepresention:
			return common.ErrorNotFound
		}
	}

	return fmt.Errorf("db error: %w", err)
}

// ExpectOneRow returns common.ErrorNotFound unless res reports exactly one
// affected row.
func ExpectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
