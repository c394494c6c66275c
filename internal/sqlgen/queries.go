package sqlgen

import (
	"fmt"

	"sgjobs-insights/internal/domain"
)

// Query pairs synthesized SQL text with its bound parameters, in placeholder
// order.
type Query struct {
	SQL    string
	Params []any
}

// DetailSampleQuery selects individual rows satisfying the filters, capped
// by server-side random sampling. Rows without a salary midpoint, position
// level, or employment type are excluded — they carry no signal for the
// distribution views. maxRows must be pre-validated; it is interpolated
// because DuckDB does not accept a bound parameter in USING SAMPLE.
func DetailSampleQuery(p domain.QueryPlan, t TableNames, f domain.FilterSet, maxRows int) Query {
	where, params := WhereClause(p, f)
	sqlText := fmt.Sprintf(`%s
, filtered AS (
  SELECT *
  FROM joined
  WHERE %s
    AND %s IS NOT NULL
    AND %s IS NOT NULL
    AND %s IS NOT NULL
)
SELECT %s, %s, %s, %s, %s, %s, %s, %s
FROM filtered
USING SAMPLE %d ROWS`,
		JoinedCTE(p, t), where,
		ColSalaryMid, ColPositionLevel, ColEmploymentType,
		ColJobPostID, ColTitle, ColCompanyName, ColSalaryMid,
		ColPositionLevel, ColEmploymentType, ColPrimaryCategory, ColStatusGroup,
		maxRows,
	)
	return Query{SQL: sqlText, Params: params}
}

// CapQuery computes the requested percentile of the salary midpoint over the
// filtered, non-null population. Phase one of the heatmap protocol: the bin
// width depends on this data-dependent cap.
func CapQuery(p domain.QueryPlan, t TableNames, f domain.FilterSet, percentile float64) Query {
	where, whereParams := WhereClause(p, f)
	sqlText := fmt.Sprintf(`%s
SELECT quantile_cont(%s, ?) AS cap
FROM joined
WHERE %s
  AND %s IS NOT NULL
  AND %s IS NOT NULL`,
		JoinedCTE(p, t), ColSalaryMid, where, ColSalaryMid, ColPositionLevel,
	)
	// The percentile placeholder appears in the SELECT list, before the
	// WHERE parameters.
	params := append([]any{percentile}, whereParams...)
	return Query{SQL: sqlText, Params: params}
}

// HeatmapQuery bins the clamped salary midpoint per position level. Phase
// two: every midpoint is clamped at cap (not excluded), so one bin
// aggregates all values at or above it.
func HeatmapQuery(p domain.QueryPlan, t TableNames, f domain.FilterSet, capValue, binSize float64) Query {
	where, whereParams := WhereClause(p, f)
	sqlText := fmt.Sprintf(`%s
, filtered AS (
  SELECT *
  FROM joined
  WHERE %s
    AND %s IS NOT NULL
    AND %s IS NOT NULL
)
, capped AS (
  SELECT
    %s,
    least(%s, ?) AS salary_mid_capped
  FROM filtered
)
SELECT
  %s,
  floor(salary_mid_capped / ?) * ? AS bin_start,
  count(*) AS cnt
FROM capped
GROUP BY 1, 2
ORDER BY 1, 2`,
		JoinedCTE(p, t), where,
		ColSalaryMid, ColPositionLevel,
		ColPositionLevel, ColSalaryMid,
		ColPositionLevel,
	)
	params := append(append([]any{}, whereParams...), capValue, binSize, binSize)
	return Query{SQL: sqlText, Params: params}
}

// DistinctValuesQuery lists the distinct non-null values of one joined
// column, for filter option lists. Pulled from the joined expression so the
// column definitely exists regardless of which physical table sourced it.
func DistinctValuesQuery(p domain.QueryPlan, t TableNames, column string) Query {
	sqlText := fmt.Sprintf(`%s
SELECT DISTINCT %s AS v
FROM joined
WHERE %s IS NOT NULL
ORDER BY 1`,
		JoinedCTE(p, t), column, column,
	)
	return Query{SQL: sqlText}
}

// SalarySummaryQuery computes distribution KPIs of the salary midpoint over
// the filtered, non-null population.
func SalarySummaryQuery(p domain.QueryPlan, t TableNames, f domain.FilterSet) Query {
	where, params := WhereClause(p, f)
	sqlText := fmt.Sprintf(`%s
SELECT
  count(*) AS total_jobs,
  avg(%[2]s) AS mean_salary,
  quantile_cont(%[2]s, 0.5) AS median_salary,
  quantile_cont(%[2]s, 0.25) AS p25_salary,
  quantile_cont(%[2]s, 0.75) AS p75_salary,
  min(%[2]s) AS min_salary,
  max(%[2]s) AS max_salary
FROM joined
WHERE %[3]s
  AND %[2]s IS NOT NULL`,
		JoinedCTE(p, t), ColSalaryMid, where,
	)
	return Query{SQL: sqlText, Params: params}
}

// TopCompaniesQuery ranks companies by filtered posting volume and breaks
// each one down by position level. topN must be positive.
func TopCompaniesQuery(p domain.QueryPlan, t TableNames, f domain.FilterSet, topN int) Query {
	where, whereParams := WhereClause(p, f)
	sqlText := fmt.Sprintf(`%s
, filtered AS (
  SELECT *
  FROM joined
  WHERE %s
    AND %s IS NOT NULL
    AND %s IS NOT NULL
)
, totals AS (
  SELECT %s, count(*) AS total_posts
  FROM filtered
  GROUP BY 1
  ORDER BY total_posts DESC
  LIMIT ?
)
SELECT f.%s, f.%s, count(*) AS post_count, t.total_posts
FROM filtered f
JOIN totals t USING (%s)
GROUP BY 1, 2, t.total_posts
ORDER BY t.total_posts DESC, 1, 2`,
		JoinedCTE(p, t), where,
		ColCompanyName, ColPositionLevel,
		ColCompanyName,
		ColCompanyName, ColPositionLevel,
		ColCompanyName,
	)
	params := append(append([]any{}, whereParams...), topN)
	return Query{SQL: sqlText, Params: params}
}
