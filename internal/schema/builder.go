package schema

import (
	"context"
	"fmt"
	"strings"

	"sgjobs-insights/internal/domain"
)

// Tables names the physical tables per role. The raw table is only joined
// as a last-resort status source.
type Tables struct {
	Base       string
	Categories string
	Enriched   string
	Raw        string
}

// DefaultTables returns the standard table names of the job-postings database.
func DefaultTables() Tables {
	return Tables{
		Base:       domain.TableBase,
		Categories: domain.TableCategories,
		Enriched:   domain.TableEnriched,
		Raw:        domain.TableRaw,
	}
}

// BuildPlan probes every candidate table and resolves the query plan.
// The base table is required; the categories, enriched, and raw tables
// degrade to empty schemas when absent.
func BuildPlan(ctx context.Context, prober domain.SchemaProber, tables Tables, cands CandidateSet) (domain.QueryPlan, error) {
	base, err := prober.Probe(ctx, tables.Base)
	if err != nil {
		return domain.QueryPlan{}, err
	}
	if base.Empty() {
		return domain.QueryPlan{}, domain.ErrConfiguration("required table %s is absent", tables.Base)
	}

	cats, err := prober.Probe(ctx, tables.Categories)
	if err != nil {
		return domain.QueryPlan{}, err
	}
	enr, err := prober.Probe(ctx, tables.Enriched)
	if err != nil {
		return domain.QueryPlan{}, err
	}
	raw, err := prober.Probe(ctx, tables.Raw)
	if err != nil {
		return domain.QueryPlan{}, err
	}

	return ResolvePlan(base, cats, enr, raw, cands)
}

// ResolvePlan binds logical fields to physical columns from already-probed
// schemas. Pure function: same inputs always yield the same plan.
//
// Required resolutions, checked after binding:
//   - join key in the base table;
//   - employment type in base or enriched;
//   - position level in base or enriched.
//
// Everything else degrades to an absent expression.
func ResolvePlan(base, cats, enr, raw domain.TableSchema, cands CandidateSet) (domain.QueryPlan, error) {
	plan := domain.QueryPlan{
		BaseKey:       ResolveField(base, cands.Base, FieldJoinKey),
		CategoriesKey: ResolveField(cats, cands.Categories, FieldJoinKey),
		EnrichedKey:   ResolveField(enr, cands.Enriched, FieldJoinKey),
		RawKey:        ResolveField(raw, cands.Raw, FieldJoinKey),

		BaseTitle:      ResolveField(base, cands.Base, FieldTitle),
		BaseCompany:    ResolveField(base, cands.Base, FieldCompany),
		BaseEmployment: ResolveField(base, cands.Base, FieldEmploymentType),
		BaseLevel:      ResolveField(base, cands.Base, FieldPositionLevel),
		BaseSalaryMin:  ResolveField(base, cands.Base, FieldSalaryMin),
		BaseSalaryMax:  ResolveField(base, cands.Base, FieldSalaryMax),
		BaseStatus:     ResolveField(base, cands.Base, FieldStatus),

		CategoriesPrimary: ResolveField(cats, cands.Categories, FieldCategory),

		EnrichedAvgSalary:  ResolveField(enr, cands.Enriched, FieldAvgSalary),
		EnrichedEmployment: ResolveField(enr, cands.Enriched, FieldEmploymentType),
		EnrichedLevel:      ResolveField(enr, cands.Enriched, FieldPositionLevel),
		EnrichedPrimary:    ResolveField(enr, cands.Enriched, FieldCategory),
		EnrichedSalaryMin:  ResolveField(enr, cands.Enriched, FieldSalaryMin),
		EnrichedSalaryMax:  ResolveField(enr, cands.Enriched, FieldSalaryMax),
		EnrichedStatus:     ResolveField(enr, cands.Enriched, FieldStatus),

		RawStatus: ResolveField(raw, cands.Raw, FieldStatus),
	}

	var missing []string
	if plan.BaseKey == "" {
		missing = append(missing, fmt.Sprintf("%s in %s (tried %v)", FieldJoinKey, base.Name, cands.Base[FieldJoinKey]))
	}
	if plan.BaseEmployment == "" && !(plan.EnrichedJoined() && plan.EnrichedEmployment != "") {
		missing = append(missing, fmt.Sprintf("%s in %s or %s", FieldEmploymentType, base.Name, enr.Name))
	}
	if plan.BaseLevel == "" && !(plan.EnrichedJoined() && plan.EnrichedLevel != "") {
		missing = append(missing, fmt.Sprintf("%s in %s or %s", FieldPositionLevel, base.Name, enr.Name))
	}
	if len(missing) > 0 {
		return domain.QueryPlan{}, domain.ErrConfiguration("cannot resolve required fields: %s", strings.Join(missing, "; "))
	}

	return plan, nil
}
