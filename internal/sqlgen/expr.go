// Package sqlgen synthesizes parameterized SQL from a resolved query plan.
// Identifiers interpolated into the SQL text only ever come from the fixed
// candidate-name tables; filter values are always bound parameters.
package sqlgen

import (
	"fmt"
	"strings"

	"sgjobs-insights/internal/domain"
)

// Table aliases used throughout the joined expression.
const (
	aliasBase       = "b"
	aliasCategories = "c"
	aliasEnriched   = "e"
	aliasRaw        = "r"
)

// tryDouble wraps an expression in a try_cast to DOUBLE: values that cannot
// be parsed as numbers become NULL instead of raising.
func tryDouble(expr string) string {
	return fmt.Sprintf("try_cast(%s AS DOUBLE)", expr)
}

func qualified(alias, column string) string {
	return alias + "." + column
}

// SalaryMidExpr builds the derived midpoint-salary expression: an explicit
// average column when resolvable, else a coalesce of (min+max)/2, min alone,
// max alone, else a typed NULL.
func SalaryMidExpr(p domain.QueryPlan) string {
	var pieces []string
	if p.EnrichedJoined() && p.EnrichedAvgSalary != "" {
		pieces = append(pieces, tryDouble(qualified(aliasEnriched, p.EnrichedAvgSalary)))
	}

	var minExpr, maxExpr string
	switch {
	case p.EnrichedJoined() && p.EnrichedSalaryMin != "":
		minExpr = tryDouble(qualified(aliasEnriched, p.EnrichedSalaryMin))
	case p.BaseSalaryMin != "":
		minExpr = tryDouble(qualified(aliasBase, p.BaseSalaryMin))
	}
	switch {
	case p.EnrichedJoined() && p.EnrichedSalaryMax != "":
		maxExpr = tryDouble(qualified(aliasEnriched, p.EnrichedSalaryMax))
	case p.BaseSalaryMax != "":
		maxExpr = tryDouble(qualified(aliasBase, p.BaseSalaryMax))
	}

	switch {
	case minExpr != "" && maxExpr != "":
		pieces = append(pieces, fmt.Sprintf("((%s + %s) / 2.0)", minExpr, maxExpr), minExpr, maxExpr)
	case minExpr != "":
		pieces = append(pieces, minExpr)
	case maxExpr != "":
		pieces = append(pieces, maxExpr)
	}

	if len(pieces) == 0 {
		return "NULL::DOUBLE"
	}
	return "coalesce(" + strings.Join(pieces, ", ") + ")"
}

// StatusGroupExpr folds the raw status synonyms into the canonical
// Open/Closed grouping. Any other non-null value passes through unchanged;
// NULL stays NULL. Applied before any status-based filtering or grouping.
func StatusGroupExpr(statusExpr string) string {
	if statusExpr == "" {
		return "NULL"
	}
	return fmt.Sprintf(`CASE
  WHEN %[1]s IS NULL THEN NULL
  WHEN lower(%[1]s) IN ('re-open', 'reopen', 're-opened', 'reopened', 'open') THEN '%[2]s'
  WHEN lower(%[1]s) = 'closed' THEN '%[3]s'
  ELSE %[1]s
END`, statusExpr, domain.StatusOpen, domain.StatusClosed)
}

// statusSourceExpr picks the status source by documented priority:
// base, else enriched (only when joined), else raw fallback, else absent.
func statusSourceExpr(p domain.QueryPlan) string {
	switch {
	case p.BaseStatus != "":
		return qualified(aliasBase, p.BaseStatus)
	case p.EnrichedJoined() && p.EnrichedStatus != "":
		return qualified(aliasEnriched, p.EnrichedStatus)
	case p.NeedsRawJoin():
		return qualified(aliasRaw, p.RawStatus)
	default:
		return ""
	}
}

// positionLevelExpr prefers the enriched column over the base column.
func positionLevelExpr(p domain.QueryPlan) string {
	if p.EnrichedJoined() && p.EnrichedLevel != "" {
		return qualified(aliasEnriched, p.EnrichedLevel)
	}
	return qualified(aliasBase, p.BaseLevel)
}

// employmentTypeExpr prefers the enriched column over the base column.
func employmentTypeExpr(p domain.QueryPlan) string {
	if p.EnrichedJoined() && p.EnrichedEmployment != "" {
		return qualified(aliasEnriched, p.EnrichedEmployment)
	}
	return qualified(aliasBase, p.BaseEmployment)
}

// primaryCategoryExpr prefers the dedicated categories table over enriched.
func primaryCategoryExpr(p domain.QueryPlan) string {
	switch {
	case p.CategoriesJoined() && p.CategoriesPrimary != "":
		return qualified(aliasCategories, p.CategoriesPrimary)
	case p.EnrichedJoined() && p.EnrichedPrimary != "":
		return qualified(aliasEnriched, p.EnrichedPrimary)
	default:
		return "NULL"
	}
}

func nullable(alias, column string) string {
	if column == "" {
		return "NULL"
	}
	return qualified(alias, column)
}
