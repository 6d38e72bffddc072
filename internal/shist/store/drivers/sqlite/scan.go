package sqlite

import (
	"context"
	"database/sql"
)

// row abstracts *sql.Row and *sql.Rows so the per-table scan helpers serve
// both single-row and multi-row queries.
type row struct {
	scan func(dest ...any) error
}

func (r *row) Scan(dest ...any) error { return r.scan(dest...) }

func queryRow(ctx context.Context, q querier, query string, args ...any) *row {
	sr := q.QueryRowContext(ctx, query, args...)
	return &row{scan: sr.Scan}
}

func fromRows(rows *sql.Rows) *row {
	return &row{scan: rows.Scan}
}
