package sqlgen

import (
	"strings"

	"sgjobs-insights/internal/domain"
)

// inClause builds a parameterized set-membership predicate with one bound
// parameter per value. Never string-interpolates values, so quote characters
// in filter values are safe.
func inClause(column string, values []string) (string, []any) {
	placeholders := make([]string, len(values))
	params := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		params[i] = v
	}
	return column + " IN (" + strings.Join(placeholders, ", ") + ")", params
}

// WhereClause builds the conjunction of filter predicates and their bound
// parameters. Empty value sets impose no restriction. Dimensions the plan
// could not resolve are skipped: an unavailable dimension cannot restrict
// the population.
func WhereClause(p domain.QueryPlan, f domain.FilterSet) (string, []any) {
	var clauses []string
	var params []any

	appendIn := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		clause, ps := inClause(column, values)
		clauses = append(clauses, clause)
		params = append(params, ps...)
	}

	appendIn(ColPositionLevel, f.PositionLevels)
	if p.HasCategory() {
		appendIn(ColPrimaryCategory, f.Categories)
	}
	appendIn(ColEmploymentType, f.EmploymentTypes)
	if p.HasStatus() {
		appendIn(ColStatusGroup, f.StatusGroups)
	}

	if len(clauses) == 0 {
		return "1=1", nil
	}
	return strings.Join(clauses, " AND "), params
}
