package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/ingesta-cli/internal/core/domain"
	"github.com/custodia-labs/ingesta-cli/internal/core/ports/driven"
)

// SQLQuerier runs statements over database/sql and materialises every
// row as column-labelled metadata in result-set order.
type SQLQuerier struct {
	db *sql.DB
}

var _ driven.RowQuerier = (*SQLQuerier)(nil)

// OpenQuerier opens a connection pool for the DSN. Opening is lazy;
// the first query or ping establishes the connection.
func OpenQuerier(dsn string) (*SQLQuerier, error) {
	driver, location, err := driverFor(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, location)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", driver, err)
	}
	return &SQLQuerier{db: db}, nil
}

// driverFor maps a DSN to a registered driver and its location string.
func driverFor(dsn string) (string, string, error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok {
		// file: URIs and bare paths go straight to the sqlite driver.
		return "sqlite", dsn, nil
	}
	switch scheme {
	case "sqlite", "sqlite3":
		return "sqlite", rest, nil
	default:
		return "", "", fmt.Errorf("%w: dsn scheme %q (only sqlite is supported)", domain.ErrUnsupportedType, scheme)
	}
}

// Ping verifies the database is reachable.
func (q *SQLQuerier) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}

// Query runs the statement and returns all rows.
func (q *SQLQuerier) Query(ctx context.Context, query string) ([]domain.Metadata, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("running query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}

	var out []domain.Metadata
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		meta := make(domain.Metadata, 0, len(columns))
		for i, col := range columns {
			meta = append(meta, domain.MetadataField{Key: col, Value: coerce(values[i])})
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (q *SQLQuerier) Close() error {
	return q.db.Close()
}

// coerce renders a scanned value as a string. NULL becomes empty.
func coerce(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
