package domain

// QueryPlan is an immutable binding of logical fields to physical columns,
// produced once per schema snapshot. An empty string means the field could
// not be resolved in that table; downstream consumers must treat an absent
// field as "dimension unavailable", not as an error.
//
// Invariants (enforced by the plan builder):
//   - BaseKey is never empty.
//   - At least one of BaseEmployment/EnrichedEmployment is set.
//   - At least one of BaseLevel/EnrichedLevel is set.
type QueryPlan struct {
	// Join keys per table. Tables without a key are not joined.
	BaseKey       string
	CategoriesKey string
	EnrichedKey   string
	RawKey        string

	// Base table columns.
	BaseTitle      string
	BaseCompany    string
	BaseEmployment string
	BaseLevel      string
	BaseSalaryMin  string
	BaseSalaryMax  string
	BaseStatus     string

	// Categories table columns.
	CategoriesPrimary string

	// Enriched table columns.
	EnrichedAvgSalary  string
	EnrichedEmployment string
	EnrichedLevel      string
	EnrichedPrimary    string
	EnrichedSalaryMin  string
	EnrichedSalaryMax  string
	EnrichedStatus     string

	// Raw table status column, used only as a last-resort status source.
	RawStatus string
}

// EnrichedJoined reports whether the enriched table participates in the join.
func (p QueryPlan) EnrichedJoined() bool { return p.EnrichedKey != "" }

// CategoriesJoined reports whether the categories table participates in the join.
func (p QueryPlan) CategoriesJoined() bool { return p.CategoriesKey != "" }

// NeedsRawJoin reports whether the raw table must be joined solely to source
// the status column. True only when no other status source exists.
func (p QueryPlan) NeedsRawJoin() bool {
	if p.BaseStatus != "" {
		return false
	}
	if p.EnrichedJoined() && p.EnrichedStatus != "" {
		return false
	}
	return p.RawKey != "" && p.RawStatus != ""
}

// HasStatus reports whether any status source resolved. When false, the
// status_group dimension is unavailable for filtering and grouping.
func (p QueryPlan) HasStatus() bool {
	return p.BaseStatus != "" || (p.EnrichedJoined() && p.EnrichedStatus != "") || p.NeedsRawJoin()
}

// HasCategory reports whether any primary-category source resolved.
func (p QueryPlan) HasCategory() bool {
	return (p.CategoriesJoined() && p.CategoriesPrimary != "") ||
		(p.EnrichedJoined() && p.EnrichedPrimary != "")
}
