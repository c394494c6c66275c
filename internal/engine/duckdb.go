// Package engine provides DuckDB connectivity and query execution for the
// analytics core.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// OpenReadOnly opens a read-only DuckDB handle for the given database file.
// The handle is shared for the process lifetime: the source data never
// changes underneath it, and the embedded engine's own locking makes it safe
// for concurrent read-only use. An empty path opens an in-memory database
// (tests only — an in-memory database cannot be read-only).
func OpenReadOnly(path string) (*sql.DB, error) {
	dsn := ""
	if path != "" {
		dsn = path + "?access_mode=READ_ONLY"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	return db, nil
}
