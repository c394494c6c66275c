package sqlgen

import (
	"fmt"
	"strings"

	"sgjobs-insights/internal/domain"
)

// Logical column aliases exposed by the joined expression.
const (
	ColJobPostID       = "job_post_id"
	ColTitle           = "title"
	ColCompanyName     = "company_name"
	ColSalaryMid       = "salary_mid"
	ColPositionLevel   = "position_level"
	ColEmploymentType  = "employment_type"
	ColPrimaryCategory = "primary_category"
	ColStatusGroup     = "status_group"
)

// TableNames carries the physical table names into SQL synthesis.
type TableNames struct {
	Base       string
	Categories string
	Enriched   string
	Raw        string
}

// JoinedCTE emits the shared base expression: a WITH clause selecting the
// join key and every resolved or derived expression from the base table,
// left-joined to the enriched and categories tables (and conditionally the
// raw fallback) on the resolved join keys. The returned text is a reusable
// prefix: downstream queries append further CTEs and aggregation stages.
func JoinedCTE(p domain.QueryPlan, t TableNames) string {
	var joins []string
	if p.EnrichedJoined() {
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = %s.%s",
			t.Enriched, aliasEnriched, aliasBase, p.BaseKey, aliasEnriched, p.EnrichedKey))
	}
	if p.CategoriesJoined() {
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = %s.%s",
			t.Categories, aliasCategories, aliasBase, p.BaseKey, aliasCategories, p.CategoriesKey))
	}
	if p.NeedsRawJoin() {
		joins = append(joins, fmt.Sprintf("LEFT JOIN %s %s ON %s.%s = %s.%s",
			t.Raw, aliasRaw, aliasBase, p.BaseKey, aliasRaw, p.RawKey))
	}

	joinSQL := ""
	if len(joins) > 0 {
		joinSQL = "\n  " + strings.Join(joins, "\n  ")
	}

	return fmt.Sprintf(`WITH joined AS (
  SELECT
    %s.%s AS %s,
    %s AS %s,
    %s AS %s,
    %s AS %s,
    %s AS %s,
    %s AS %s,
    %s AS %s,
    %s AS %s
  FROM %s %s%s
)`,
		aliasBase, p.BaseKey, ColJobPostID,
		nullable(aliasBase, p.BaseTitle), ColTitle,
		nullable(aliasBase, p.BaseCompany), ColCompanyName,
		SalaryMidExpr(p), ColSalaryMid,
		positionLevelExpr(p), ColPositionLevel,
		employmentTypeExpr(p), ColEmploymentType,
		primaryCategoryExpr(p), ColPrimaryCategory,
		StatusGroupExpr(statusSourceExpr(p)), ColStatusGroup,
		t.Base, aliasBase, joinSQL,
	)
}
