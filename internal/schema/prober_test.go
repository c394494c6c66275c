package schema

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgjobs-insights/internal/cache"
	"sgjobs-insights/internal/domain"
	"sgjobs-insights/internal/engine"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestProbePresentTable(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE jobs_base (job_id VARCHAR, title VARCHAR, salary_minimum DOUBLE)`)
	require.NoError(t, err)

	p := NewProber(engine.NewExecutor(db), cache.New[domain.TableSchema](0))
	s, err := p.Probe(context.Background(), "jobs_base")
	require.NoError(t, err)

	assert.True(t, s.Has("job_id"))
	assert.True(t, s.Has("title"))
	assert.True(t, s.Has("salary_minimum"))
	assert.False(t, s.Has("salary_min"))
}

func TestProbeAbsentTableYieldsEmptySet(t *testing.T) {
	db := openTestDB(t)

	p := NewProber(engine.NewExecutor(db), cache.New[domain.TableSchema](0))
	s, err := p.Probe(context.Background(), "jobs_enriched")
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

// countingExecutor wraps an executor and counts queries, to observe caching.
type countingExecutor struct {
	inner domain.Executor
	calls int
}

func (c *countingExecutor) Query(ctx context.Context, sqlText string, params ...any) (*domain.ResultTable, error) {
	c.calls++
	return c.inner.Query(ctx, sqlText, params...)
}

func TestProbeCachingAndInvalidate(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`CREATE TABLE jobs_base (job_id VARCHAR)`)
	require.NoError(t, err)

	exec := &countingExecutor{inner: engine.NewExecutor(db)}
	p := NewProber(exec, cache.New[domain.TableSchema](time.Minute))

	_, err = p.Probe(context.Background(), "jobs_base")
	require.NoError(t, err)
	_, err = p.Probe(context.Background(), "jobs_base")
	require.NoError(t, err)
	assert.Equal(t, 1, exec.calls, "second probe must be served from cache")

	p.Invalidate()
	_, err = p.Probe(context.Background(), "jobs_base")
	require.NoError(t, err)
	assert.Equal(t, 2, exec.calls, "invalidate must force a re-probe")
}
