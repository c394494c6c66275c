package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sgjobs-insights/internal/domain"
)

func basePlan() domain.QueryPlan {
	return domain.QueryPlan{
		BaseKey:        "job_id",
		BaseTitle:      "title",
		BaseCompany:    "company",
		BaseEmployment: "employmentTypes",
		BaseLevel:      "positionLevels",
	}
}

func TestSalaryMidExprMinAndMax(t *testing.T) {
	p := basePlan()
	p.BaseSalaryMin = "salary_minimum"
	p.BaseSalaryMax = "salary_maximum"

	got := SalaryMidExpr(p)
	want := "coalesce(((try_cast(b.salary_minimum AS DOUBLE) + try_cast(b.salary_maximum AS DOUBLE)) / 2.0), " +
		"try_cast(b.salary_minimum AS DOUBLE), try_cast(b.salary_maximum AS DOUBLE))"
	assert.Equal(t, want, got)
}

func TestSalaryMidExprMinOnly(t *testing.T) {
	p := basePlan()
	p.BaseSalaryMin = "salary_minimum"

	assert.Equal(t, "coalesce(try_cast(b.salary_minimum AS DOUBLE))", SalaryMidExpr(p))
}

func TestSalaryMidExprMaxOnly(t *testing.T) {
	p := basePlan()
	p.BaseSalaryMax = "salary_maximum"

	assert.Equal(t, "coalesce(try_cast(b.salary_maximum AS DOUBLE))", SalaryMidExpr(p))
}

func TestSalaryMidExprAvgBeforeMidpoint(t *testing.T) {
	p := basePlan()
	p.EnrichedKey = "job_id"
	p.EnrichedAvgSalary = "avg_salary"
	p.BaseSalaryMin = "salary_minimum"
	p.BaseSalaryMax = "salary_maximum"

	got := SalaryMidExpr(p)
	assert.Contains(t, got, "try_cast(e.avg_salary AS DOUBLE), ((try_cast(b.salary_minimum AS DOUBLE)")
}

func TestSalaryMidExprEnrichedPreferredOverBase(t *testing.T) {
	p := basePlan()
	p.EnrichedKey = "job_id"
	p.EnrichedSalaryMin = "min_salary"
	p.BaseSalaryMin = "salary_minimum"
	p.BaseSalaryMax = "salary_maximum"

	got := SalaryMidExpr(p)
	assert.Contains(t, got, "e.min_salary")
	assert.NotContains(t, got, "b.salary_minimum")
	assert.Contains(t, got, "b.salary_maximum")
}

func TestSalaryMidExprNoSource(t *testing.T) {
	assert.Equal(t, "NULL::DOUBLE", SalaryMidExpr(basePlan()))
}

func TestStatusGroupExprSynonyms(t *testing.T) {
	got := StatusGroupExpr("b.status_jobStatus")
	assert.Contains(t, got, "lower(b.status_jobStatus) IN ('re-open', 'reopen', 're-opened', 'reopened', 'open') THEN 'Open'")
	assert.Contains(t, got, "lower(b.status_jobStatus) = 'closed' THEN 'Closed'")
	assert.Contains(t, got, "b.status_jobStatus IS NULL THEN NULL")
	assert.Contains(t, got, "ELSE b.status_jobStatus")
}

func TestStatusGroupExprAbsentSource(t *testing.T) {
	assert.Equal(t, "NULL", StatusGroupExpr(""))
}

func TestStatusSourcePriority(t *testing.T) {
	p := basePlan()
	p.EnrichedKey = "job_id"
	p.RawKey = "job_id"
	p.BaseStatus = "status_jobStatus"
	p.EnrichedStatus = "job_status"
	p.RawStatus = "jobStatus"

	assert.Equal(t, "b.status_jobStatus", statusSourceExpr(p))

	p.BaseStatus = ""
	assert.Equal(t, "e.job_status", statusSourceExpr(p))

	p.EnrichedStatus = ""
	assert.Equal(t, "r.jobStatus", statusSourceExpr(p))

	p.RawStatus = ""
	assert.Equal(t, "", statusSourceExpr(p))
}

func TestPrimaryCategoryPriority(t *testing.T) {
	p := basePlan()
	p.CategoriesKey = "job_id"
	p.EnrichedKey = "job_id"
	p.CategoriesPrimary = "primary_category"
	p.EnrichedPrimary = "category"

	assert.Equal(t, "c.primary_category", primaryCategoryExpr(p))

	p.CategoriesPrimary = ""
	assert.Equal(t, "e.category", primaryCategoryExpr(p))

	p.EnrichedPrimary = ""
	assert.Equal(t, "NULL", primaryCategoryExpr(p))
}
