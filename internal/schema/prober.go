package schema

import (
	"context"
	"fmt"

	"sgjobs-insights/internal/cache"
	"sgjobs-insights/internal/domain"
)

// Compile-time check.
var _ domain.SchemaProber = (*Prober)(nil)

// Prober discovers a table's present columns from DuckDB's
// information_schema. Probe results are cached with a TTL: stale schema is
// tolerated for a bounded window because schema changes are rare, and the
// cache can be force-cleared by the operator.
type Prober struct {
	exec  domain.Executor
	cache *cache.TTL[domain.TableSchema]
}

// NewProber creates a Prober over the given executor. schemaCache may use a
// zero TTL to disable caching (tests).
func NewProber(exec domain.Executor, schemaCache *cache.TTL[domain.TableSchema]) *Prober {
	return &Prober{exec: exec, cache: schemaCache}
}

const probeSQL = `SELECT column_name FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position`

// Probe returns the set of columns currently present in table. A table that
// does not exist yields an empty set rather than an error; callers decide
// whether the table was required.
func (p *Prober) Probe(ctx context.Context, table string) (domain.TableSchema, error) {
	return p.cache.GetOrFill(ctx, table, func(ctx context.Context) (domain.TableSchema, error) {
		res, err := p.exec.Query(ctx, probeSQL, table)
		if err != nil {
			return domain.TableSchema{}, fmt.Errorf("probe %s: %w", table, err)
		}

		cols := make([]string, 0, len(res.Rows))
		for _, row := range res.Rows {
			if len(row) == 0 {
				continue
			}
			if name, ok := row[0].(string); ok {
				cols = append(cols, name)
			}
		}
		return domain.NewTableSchema(table, cols), nil
	})
}

// Invalidate drops all cached probe results. Operator cache-clear action.
func (p *Prober) Invalidate() {
	p.cache.InvalidateAll()
}
