// Package schema discovers table schemas at runtime and resolves logical
// fields against priority-ordered candidate column names, producing a
// validated query plan. Resolution is a pure function of the probed column
// sets, so it is testable without a live database.
package schema

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"sgjobs-insights/internal/domain"
)

// Field names the planner resolves per table role.
const (
	FieldJoinKey        = "join_key"
	FieldTitle          = "title"
	FieldCompany        = "company"
	FieldEmploymentType = "employment_type"
	FieldPositionLevel  = "position_level"
	FieldSalaryMin      = "salary_min"
	FieldSalaryMax      = "salary_max"
	FieldAvgSalary      = "avg_salary"
	FieldStatus         = "status"
	FieldCategory       = "category"
)

// Candidates maps a logical field to its priority-ordered physical column
// names for one table role. Earlier names win when synonyms coexist.
type Candidates map[string][]string

// CandidateSet holds the candidate tables for every table role.
type CandidateSet struct {
	Base       Candidates `yaml:"base"`
	Categories Candidates `yaml:"categories"`
	Enriched   Candidates `yaml:"enriched"`
	Raw        Candidates `yaml:"raw"`
}

var joinKeyCandidates = []string{
	"metadata_jobPostId", "job_post_id", "jobPostId", "job_id", "metadata_job_post_id",
}

var statusCandidates = []string{
	"status_jobStatus", "status_job_status", "jobStatus", "job_status",
}

// DefaultCandidates returns the built-in candidate-name tables. These track
// the column synonyms observed across historical exports of the dataset.
func DefaultCandidates() CandidateSet {
	return CandidateSet{
		Base: Candidates{
			FieldJoinKey:        joinKeyCandidates,
			FieldTitle:          {"title"},
			FieldCompany:        {"postedCompany_name", "company_name", "posted_company_name"},
			FieldEmploymentType: {"employmentTypes", "employment_type"},
			FieldPositionLevel:  {"positionLevels", "position_level"},
			FieldSalaryMin:      {"salary_minimum", "salary_min"},
			FieldSalaryMax:      {"salary_maximum", "salary_max"},
			FieldStatus:         statusCandidates,
		},
		Categories: Candidates{
			FieldJoinKey:  joinKeyCandidates,
			FieldCategory: {"primary_category", "primaryCategory", "category", "category_name"},
		},
		Enriched: Candidates{
			FieldJoinKey:        joinKeyCandidates,
			FieldAvgSalary:      {"avg_salary", "average_salary", "salary_mid", "salary_midpoint"},
			FieldEmploymentType: {"employment_type", "employmentTypes"},
			FieldPositionLevel:  {"position_level", "positionLevels"},
			FieldCategory:       {"primary_category"},
			FieldSalaryMin:      {"salary_min", "salary_minimum"},
			FieldSalaryMax:      {"salary_max", "salary_maximum"},
			FieldStatus:         statusCandidates,
		},
		Raw: Candidates{
			FieldJoinKey: joinKeyCandidates,
			FieldStatus:  statusCandidates,
		},
	}
}

// identRe matches a bare SQL identifier. Candidate names are interpolated
// into SQL text as identifiers (identifiers cannot be parameterized), so
// anything else is rejected at load time.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadCandidates reads an operator-supplied YAML overrides file and merges
// it over the defaults. A role/field present in the file replaces the
// default list for that field wholesale. Candidate names must be bare SQL
// identifiers.
func LoadCandidates(path string) (CandidateSet, error) {
	set := DefaultCandidates()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return CandidateSet{}, fmt.Errorf("read candidate overrides: %w", err)
	}

	var overrides CandidateSet
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return CandidateSet{}, fmt.Errorf("parse candidate overrides: %w", err)
	}

	for role, pair := range map[string]struct {
		dst Candidates
		src Candidates
	}{
		"base":       {set.Base, overrides.Base},
		"categories": {set.Categories, overrides.Categories},
		"enriched":   {set.Enriched, overrides.Enriched},
		"raw":        {set.Raw, overrides.Raw},
	} {
		for field, names := range pair.src {
			for _, n := range names {
				if !identRe.MatchString(n) {
					return CandidateSet{}, domain.ErrValidation(
						"candidate override %s.%s: %q is not a valid SQL identifier", role, field, n)
				}
			}
			pair.dst[field] = names
		}
	}

	return set, nil
}
