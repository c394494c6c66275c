package engine

import (
	"context"
	"database/sql"

	"sgjobs-insights/internal/domain"
)

// Compile-time check.
var _ domain.Executor = (*Executor)(nil)

// Executor runs parameterized SQL against a *sql.DB and returns structured
// results. Failures are wrapped as domain.ExecutionError carrying the
// attempted SQL and parameters for diagnosis.
type Executor struct {
	db *sql.DB
}

// NewExecutor creates an Executor over the given database handle.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Query executes sqlText with the given bound parameters.
func (e *Executor) Query(ctx context.Context, sqlText string, params ...any) (*domain.ResultTable, error) {
	rows, err := e.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, domain.ErrExecution(err, sqlText, params)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		return nil, domain.ErrExecution(err, sqlText, params)
	}
	return result, nil
}

// scanRows drains a *sql.Rows into a ResultTable, converting byte slices to
// strings for JSON serialization.
func scanRows(rows *sql.Rows) (*domain.ResultTable, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var resultRows [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make([]any, len(vals))
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				row[i] = string(b)
			} else {
				row[i] = v
			}
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.ResultTable{
		Columns:  cols,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}
