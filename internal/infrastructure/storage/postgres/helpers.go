package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a foreign key violation
// (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// orderClause translates a ListFilter.OrderBy value into an ORDER BY
// expression. A leading '-' means descending. Only known column names
// pass through; anything else falls back to creation time.
func orderClause(orderBy string) string {
	desc := strings.HasPrefix(orderBy, "-")
	col := strings.TrimPrefix(orderBy, "-")
	switch col {
	case "code", "number", "name", "created_at", "updated_at", "date":
	default:
		col = "created_at"
		desc = true
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
