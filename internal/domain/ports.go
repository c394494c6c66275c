package domain

import (
	"context"
	"time"
)

// Executor runs parameterized SQL against the analytical store and returns
// tabular results. The core synthesizes SQL text plus bound parameters; the
// executor owns the connection.
type Executor interface {
	Query(ctx context.Context, sqlText string, params ...any) (*ResultTable, error)
}

// SchemaProber inspects the live database for a table's present columns.
// An absent optional table yields an empty column set, not an error.
type SchemaProber interface {
	Probe(ctx context.Context, table string) (TableSchema, error)
}

// QueryRecord is one entry in the query-history metastore.
type QueryRecord struct {
	ID         int64
	Kind       string
	SQL        string
	Params     string
	Status     string
	Error      string
	DurationMS int64
	CreatedAt  time.Time
}

// Query-history status values.
const (
	QueryStatusOK    = "OK"
	QueryStatusError = "ERROR"
)

// HistoryRepository persists executed-query records for diagnosis.
// Implementations are best-effort: recording must never fail a query.
type HistoryRepository interface {
	Insert(ctx context.Context, rec *QueryRecord) error
	List(ctx context.Context, limit int) ([]QueryRecord, error)
}
