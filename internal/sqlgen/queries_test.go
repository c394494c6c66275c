package sqlgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"sgjobs-insights/internal/domain"
)

func testTables() TableNames {
	return TableNames{
		Base:       "jobs_base",
		Categories: "jobs_categories",
		Enriched:   "jobs_enriched",
		Raw:        "jobs_raw",
	}
}

func TestJoinedCTEBaseOnly(t *testing.T) {
	sqlText := JoinedCTE(basePlan(), testTables())

	assert.True(t, strings.HasPrefix(sqlText, "WITH joined AS ("))
	assert.Contains(t, sqlText, "FROM jobs_base b")
	assert.NotContains(t, sqlText, "LEFT JOIN")
	assert.Contains(t, sqlText, "b.job_id AS job_post_id")
	assert.Contains(t, sqlText, "NULL::DOUBLE AS salary_mid")
}

func TestJoinedCTEAllTables(t *testing.T) {
	p := basePlan()
	p.CategoriesKey = "job_id"
	p.CategoriesPrimary = "primary_category"
	p.EnrichedKey = "job_post_id"
	p.RawKey = "jobPostId"
	p.RawStatus = "status_jobStatus"

	sqlText := JoinedCTE(p, testTables())

	assert.Contains(t, sqlText, "LEFT JOIN jobs_enriched e ON b.job_id = e.job_post_id")
	assert.Contains(t, sqlText, "LEFT JOIN jobs_categories c ON b.job_id = c.job_id")
	assert.Contains(t, sqlText, "LEFT JOIN jobs_raw r ON b.job_id = r.jobPostId")
}

func TestJoinedCTERawSkippedWhenBaseHasStatus(t *testing.T) {
	p := basePlan()
	p.BaseStatus = "status_jobStatus"
	p.RawKey = "jobPostId"
	p.RawStatus = "jobStatus"

	sqlText := JoinedCTE(p, testTables())
	assert.NotContains(t, sqlText, "jobs_raw")
}

func TestCapQueryParamOrder(t *testing.T) {
	f := domain.FilterSet{PositionLevels: []string{"Manager"}, StatusGroups: []string{"Open"}}
	q := CapQuery(fullPlan(), testTables(), f, 0.95)

	// The percentile binds to the SELECT-list placeholder, which precedes
	// every WHERE placeholder in the statement.
	assert.Equal(t, []any{0.95, "Manager", "Open"}, q.Params)
	assert.Contains(t, q.SQL, "quantile_cont(salary_mid, ?)")
	assert.Equal(t, len(q.Params), strings.Count(q.SQL, "?"))
}

func TestHeatmapQueryParamOrder(t *testing.T) {
	f := domain.FilterSet{EmploymentTypes: []string{"Full Time"}}
	q := HeatmapQuery(fullPlan(), testTables(), f, 12000.0, 240.0)

	assert.Equal(t, []any{"Full Time", 12000.0, 240.0, 240.0}, q.Params)
	assert.Contains(t, q.SQL, "least(salary_mid, ?) AS salary_mid_capped")
	assert.Contains(t, q.SQL, "floor(salary_mid_capped / ?) * ? AS bin_start")
	assert.Equal(t, len(q.Params), strings.Count(q.SQL, "?"))
}

func TestDetailSampleQueryInterpolatesOnlyMaxRows(t *testing.T) {
	f := domain.FilterSet{Categories: []string{"Engineering"}}
	q := DetailSampleQuery(fullPlan(), testTables(), f, 300000)

	assert.Contains(t, q.SQL, "USING SAMPLE 300000 ROWS")
	assert.Contains(t, q.SQL, "salary_mid IS NOT NULL")
	assert.Contains(t, q.SQL, "position_level IS NOT NULL")
	assert.Contains(t, q.SQL, "employment_type IS NOT NULL")
	assert.Equal(t, []any{"Engineering"}, q.Params)
	assert.Equal(t, len(q.Params), strings.Count(q.SQL, "?"))
}

func TestSalarySummaryQuery(t *testing.T) {
	q := SalarySummaryQuery(fullPlan(), testTables(), domain.FilterSet{})

	assert.Contains(t, q.SQL, "quantile_cont(salary_mid, 0.5) AS median_salary")
	assert.Contains(t, q.SQL, "quantile_cont(salary_mid, 0.25) AS p25_salary")
	assert.Contains(t, q.SQL, "quantile_cont(salary_mid, 0.75) AS p75_salary")
	assert.Empty(t, q.Params)
}

func TestTopCompaniesQueryParamOrder(t *testing.T) {
	f := domain.FilterSet{StatusGroups: []string{"Open"}}
	q := TopCompaniesQuery(fullPlan(), testTables(), f, 10)

	assert.Equal(t, []any{"Open", 10}, q.Params)
	assert.Contains(t, q.SQL, "LIMIT ?")
	assert.Equal(t, len(q.Params), strings.Count(q.SQL, "?"))
}

func TestDistinctValuesQuery(t *testing.T) {
	q := DistinctValuesQuery(fullPlan(), testTables(), ColPositionLevel)

	assert.Contains(t, q.SQL, "SELECT DISTINCT position_level AS v")
	assert.Contains(t, q.SQL, "WHERE position_level IS NOT NULL")
	assert.Empty(t, q.Params)
}
