// Package service orchestrates schema resolution, SQL synthesis, and query
// execution into the analytics operations consumed by the API and CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"sgjobs-insights/internal/cache"
	"sgjobs-insights/internal/domain"
	"sgjobs-insights/internal/schema"
	"sgjobs-insights/internal/sqlgen"
)

// Query kinds recorded in the history metastore.
const (
	kindDetailSample  = "detail_sample"
	kindPercentileCap = "percentile_cap"
	kindHeatmap       = "heatmap"
	kindSummary       = "salary_summary"
	kindTopCompanies  = "top_companies"
	kindFilterOptions = "filter_options"
)

// Caches groups the TTL caches the service depends on. Schema probes and
// filter options share the long TTL; aggregation results use the short one.
type Caches struct {
	Schema  *cache.TTL[domain.TableSchema]
	Options *cache.TTL[domain.FilterOptions]
	Heatmap *cache.TTL[domain.HeatmapResult]
	Summary *cache.TTL[domain.SalarySummary]
}

// NewCaches builds the cache set from the two TTL windows.
func NewCaches(schemaTTL, resultTTL time.Duration) Caches {
	return Caches{
		Schema:  cache.New[domain.TableSchema](schemaTTL),
		Options: cache.New[domain.FilterOptions](schemaTTL),
		Heatmap: cache.New[domain.HeatmapResult](resultTTL),
		Summary: cache.New[domain.SalarySummary](resultTTL),
	}
}

// Insights exposes the schema-adaptive analytics operations over the
// job-postings database. One instance is shared across requests; the only
// mutable state is the mutex-guarded caches.
type Insights struct {
	exec    domain.Executor
	prober  *schema.Prober
	tables  schema.Tables
	cands   schema.CandidateSet
	caches  Caches
	history domain.HistoryRepository
	log     *slog.Logger
}

// NewInsights wires the service. history may be nil to disable query
// recording (tests).
func NewInsights(exec domain.Executor, caches Caches, tables schema.Tables, cands schema.CandidateSet, history domain.HistoryRepository, log *slog.Logger) *Insights {
	if log == nil {
		log = slog.Default()
	}
	return &Insights{
		exec:    exec,
		prober:  schema.NewProber(exec, caches.Schema),
		tables:  tables,
		cands:   cands,
		caches:  caches,
		history: history,
		log:     log,
	}
}

func (s *Insights) tableNames() sqlgen.TableNames {
	return sqlgen.TableNames{
		Base:       s.tables.Base,
		Categories: s.tables.Categories,
		Enriched:   s.tables.Enriched,
		Raw:        s.tables.Raw,
	}
}

// ProbeTable exposes the schema prober for diagnostics.
func (s *Insights) ProbeTable(ctx context.Context, table string) (domain.TableSchema, error) {
	return s.prober.Probe(ctx, table)
}

// Plan resolves the current query plan from the (cached) schema probes.
// A ConfigurationError here is fatal for the session: it is returned on
// every call until the schema cache is cleared and the schema fixed.
func (s *Insights) Plan(ctx context.Context) (domain.QueryPlan, error) {
	return schema.BuildPlan(ctx, s.prober, s.tables, s.cands)
}

// query executes a synthesized query and records it in the history
// metastore. Recording is best-effort and never fails the query.
func (s *Insights) query(ctx context.Context, kind string, q sqlgen.Query) (*domain.ResultTable, error) {
	start := time.Now()
	res, err := s.exec.Query(ctx, q.SQL, q.Params...)
	duration := time.Since(start).Milliseconds()

	if s.history != nil {
		rec := &domain.QueryRecord{
			Kind:       kind,
			SQL:        q.SQL,
			Params:     fmt.Sprintf("%v", q.Params),
			Status:     domain.QueryStatusOK,
			DurationMS: duration,
		}
		if err != nil {
			rec.Status = domain.QueryStatusError
			rec.Error = err.Error()
		}
		if herr := s.history.Insert(ctx, rec); herr != nil {
			s.log.Warn("query history insert failed", "kind", kind, "error", herr)
		}
	}

	if err != nil {
		s.log.Error("query failed", "kind", kind, "duration_ms", duration, "error", err)
		return nil, err
	}
	s.log.Debug("query ok", "kind", kind, "duration_ms", duration, "rows", res.RowCount)
	return res, nil
}

// FilterOptions returns the selectable values per filter dimension, pulled
// from the joined view. Cached with the schema TTL.
func (s *Insights) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	return s.caches.Options.GetOrFill(ctx, "options", func(ctx context.Context) (domain.FilterOptions, error) {
		plan, err := s.Plan(ctx)
		if err != nil {
			return domain.FilterOptions{}, err
		}

		opts := domain.FilterOptions{}
		for _, dim := range []struct {
			column string
			dst    *[]string
		}{
			{sqlgen.ColPositionLevel, &opts.PositionLevels},
			{sqlgen.ColEmploymentType, &opts.EmploymentTypes},
			{sqlgen.ColPrimaryCategory, &opts.Categories},
		} {
			if dim.column == sqlgen.ColPrimaryCategory && !plan.HasCategory() {
				continue
			}
			res, err := s.query(ctx, kindFilterOptions, sqlgen.DistinctValuesQuery(plan, s.tableNames(), dim.column))
			if err != nil {
				return domain.FilterOptions{}, err
			}
			for _, row := range res.Rows {
				if v := toString(row[0]); v != "" {
					*dim.dst = append(*dim.dst, v)
				}
			}
		}

		if plan.HasStatus() {
			opts.StatusGroups = []string{domain.StatusOpen, domain.StatusClosed}
		}
		return opts, nil
	})
}

// DetailSample returns up to params.MaxRows individual rows satisfying the
// filters, chosen by server-side random sampling. The sample is the only
// non-deterministic path; aggregations never sample.
func (s *Insights) DetailSample(ctx context.Context, f domain.FilterSet, params domain.SampleParams) ([]domain.JobRow, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	plan, err := s.Plan(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.query(ctx, kindDetailSample, sqlgen.DetailSampleQuery(plan, s.tableNames(), f, params.MaxRows))
	if err != nil {
		return nil, err
	}

	rows := make([]domain.JobRow, 0, res.RowCount)
	for _, r := range res.Rows {
		rows = append(rows, domain.JobRow{
			JobPostID:       toString(r[0]),
			Title:           toStringPtr(r[1]),
			CompanyName:     toStringPtr(r[2]),
			SalaryMid:       toFloatPtr(r[3]),
			PositionLevel:   toStringPtr(r[4]),
			EmploymentType:  toStringPtr(r[5]),
			PrimaryCategory: toStringPtr(r[6]),
			StatusGroup:     toStringPtr(r[7]),
		})
	}
	return rows, nil
}

// SalaryHeatmap runs the two-phase aggregation: percentile cap first, then
// the binned histogram clamped at that cap. An empty result is a normal
// outcome meaning "no data for this combination of filters".
func (s *Insights) SalaryHeatmap(ctx context.Context, f domain.FilterSet, params domain.HeatmapParams) (domain.HeatmapResult, error) {
	if err := f.Validate(); err != nil {
		return domain.HeatmapResult{}, err
	}
	if err := params.Validate(); err != nil {
		return domain.HeatmapResult{}, err
	}

	key := fmt.Sprintf("heatmap|%s|p=%v|bins=%d", filterKey(f), params.CapPercentile, params.BinCount)
	return s.caches.Heatmap.GetOrFill(ctx, key, func(ctx context.Context) (domain.HeatmapResult, error) {
		plan, err := s.Plan(ctx)
		if err != nil {
			return domain.HeatmapResult{}, err
		}

		capValue, ok, err := s.percentileCap(ctx, plan, f, params.CapPercentile)
		if err != nil {
			return domain.HeatmapResult{}, err
		}
		// No definable cap: empty population or degenerate distribution.
		if !ok || capValue <= 0 {
			return domain.HeatmapResult{}, nil
		}

		binSize := capValue / float64(params.BinCount)
		if binSize < 1.0 {
			binSize = 1.0
		}

		res, err := s.query(ctx, kindHeatmap, sqlgen.HeatmapQuery(plan, s.tableNames(), f, capValue, binSize))
		if err != nil {
			return domain.HeatmapResult{}, err
		}

		out := domain.HeatmapResult{Cap: capValue, BinSize: binSize}
		for _, r := range res.Rows {
			out.Cells = append(out.Cells, domain.HeatmapCell{
				PositionLevel: toString(r[0]),
				BinStart:      toFloat(r[1]),
				Count:         toInt64(r[2]),
				Cap:           capValue,
				BinSize:       binSize,
			})
		}
		return out, nil
	})
}

// percentileCap computes phase one. ok is false when the filtered population
// is empty or the quantile is undefined.
func (s *Insights) percentileCap(ctx context.Context, plan domain.QueryPlan, f domain.FilterSet, percentile float64) (float64, bool, error) {
	res, err := s.query(ctx, kindPercentileCap, sqlgen.CapQuery(plan, s.tableNames(), f, percentile))
	if err != nil {
		return 0, false, err
	}
	if res.RowCount == 0 || res.Rows[0][0] == nil {
		return 0, false, nil
	}
	return toFloat(res.Rows[0][0]), true, nil
}

// SalarySummary computes distribution KPIs over the filtered population.
func (s *Insights) SalarySummary(ctx context.Context, f domain.FilterSet) (domain.SalarySummary, error) {
	if err := f.Validate(); err != nil {
		return domain.SalarySummary{}, err
	}

	key := "summary|" + filterKey(f)
	return s.caches.Summary.GetOrFill(ctx, key, func(ctx context.Context) (domain.SalarySummary, error) {
		plan, err := s.Plan(ctx)
		if err != nil {
			return domain.SalarySummary{}, err
		}

		res, err := s.query(ctx, kindSummary, sqlgen.SalarySummaryQuery(plan, s.tableNames(), f))
		if err != nil {
			return domain.SalarySummary{}, err
		}
		if res.RowCount == 0 {
			return domain.SalarySummary{}, nil
		}

		r := res.Rows[0]
		return domain.SalarySummary{
			TotalJobs:    toInt64(r[0]),
			MeanSalary:   toFloatPtr(r[1]),
			MedianSalary: toFloatPtr(r[2]),
			P25Salary:    toFloatPtr(r[3]),
			P75Salary:    toFloatPtr(r[4]),
			MinSalary:    toFloatPtr(r[5]),
			MaxSalary:    toFloatPtr(r[6]),
		}, nil
	})
}

// TopCompanies ranks companies by filtered posting volume with a
// per-position-level breakdown.
func (s *Insights) TopCompanies(ctx context.Context, f domain.FilterSet, topN int) ([]domain.CompanyStat, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if topN <= 0 {
		return nil, domain.ErrValidation("top-N must be positive, got %d", topN)
	}

	plan, err := s.Plan(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.query(ctx, kindTopCompanies, sqlgen.TopCompaniesQuery(plan, s.tableNames(), f, topN))
	if err != nil {
		return nil, err
	}

	stats := make([]domain.CompanyStat, 0, res.RowCount)
	for _, r := range res.Rows {
		stats = append(stats, domain.CompanyStat{
			CompanyName:   toString(r[0]),
			PositionLevel: toString(r[1]),
			PostCount:     toInt64(r[2]),
			TotalPosts:    toInt64(r[3]),
		})
	}
	return stats, nil
}

// History returns the most recent recorded queries, newest first.
func (s *Insights) History(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	if s.history == nil {
		return nil, domain.ErrNotFound("query history is not enabled")
	}
	return s.history.List(ctx, limit)
}

// ClearCaches drops all cached schema probes, filter options, and
// aggregation results. Operator action: the next request re-probes the
// live schema.
func (s *Insights) ClearCaches() {
	s.prober.Invalidate()
	s.caches.Options.InvalidateAll()
	s.caches.Heatmap.InvalidateAll()
	s.caches.Summary.InvalidateAll()
	s.log.Info("caches cleared")
}

// SweepCaches drops expired entries from the result caches. Called from the
// scheduled maintenance job.
func (s *Insights) SweepCaches() {
	n := s.caches.Heatmap.Sweep() + s.caches.Summary.Sweep() + s.caches.Options.Sweep()
	if n > 0 {
		s.log.Debug("swept expired cache entries", "count", n)
	}
}

// filterKey renders a FilterSet as a stable cache key. Each dimension is
// sorted so logically equal filter sets share an entry.
func filterKey(f domain.FilterSet) string {
	dim := func(vs []string) string {
		sorted := append([]string(nil), vs...)
		sort.Strings(sorted)
		return strings.Join(sorted, "\x1f")
	}
	return strings.Join([]string{
		dim(f.PositionLevels), dim(f.Categories), dim(f.EmploymentTypes), dim(f.StatusGroups),
	}, "\x1e")
}
