package postgres

import (
	"database/sql"

	crerr "github.com/cockroachdb/errors"
	"github.com/lib/pq"
)

const pqUndefinedTable = "42P01"

func isNotFound(err error) bool {
	return crerr.Is(err, sql.ErrNoRows)
}

// isUndefinedTable reports a missing relation, usually pending migrations.
func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if crerr.As(err, &pqErr) {
		return string(pqErr.Code) == pqUndefinedTable
	}
	return false
}

func describeSQLError(err error, table string) error {
	if isUndefinedTable(err) {
		return crerr.WithHintf(err, "table %s is missing; run `ticker migrate up`", table)
	}
	return err
}
