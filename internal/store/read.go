package store

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/roach88/querytx/internal/backend/collection"
)

// Select runs a built query and materializes every row as a record keyed by
// column name. TEXT values scanned as []byte are returned as strings.
func (s *Store) Select(ctx context.Context, q sq.SelectBuilder) ([]collection.Record, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return s.Query(ctx, query, args...)
}

// All loads every row of table in storage order.
func (s *Store) All(ctx context.Context, table string) ([]collection.Record, error) {
	return s.Select(ctx, sq.Select("*").From(QuoteIdent(table)))
}

// Query runs raw SQL and materializes the rows.
func (s *Store) Query(ctx context.Context, query string, args ...any) ([]collection.Record, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return scanRecords(rows)
}

// scanRecords drains and closes rows.
func scanRecords(rows *sqlx.Rows) ([]collection.Record, error) {
	defer rows.Close()

	records := []collection.Record{}
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		records = append(records, collection.Record(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return records, nil
}

// QuoteIdent quotes a table name for SQLite. A dotted name is quoted per
// part, so "main.users" becomes "main"."users".
func QuoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}
