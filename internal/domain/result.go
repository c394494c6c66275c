package domain

// ResultTable holds the structured output of a SQL query.
type ResultTable struct {
	Columns  []string
	Rows     [][]any
	RowCount int
}

// HeatmapCell is one (position level, salary bin) aggregate. Cap and BinSize
// are attached to every row so the caller can reconstruct bin boundaries
// without recomputing the percentile.
type HeatmapCell struct {
	PositionLevel string  `json:"position_level"`
	BinStart      float64 `json:"bin_start"`
	Count         int64   `json:"count"`
	Cap           float64 `json:"cap"`
	BinSize       float64 `json:"bin_size"`
}

// HeatmapResult is the output of the two-phase aggregation. An empty Cells
// slice with Cap == 0 signals "no data for this filter combination" and is a
// normal outcome, not an error.
type HeatmapResult struct {
	Cells   []HeatmapCell `json:"cells"`
	Cap     float64       `json:"cap"`
	BinSize float64       `json:"bin_size"`
}

// Empty reports whether the aggregation produced no data.
func (r HeatmapResult) Empty() bool { return len(r.Cells) == 0 }

// JobRow is one sampled detail row from the joined view.
type JobRow struct {
	JobPostID       string   `json:"job_post_id"`
	Title           *string  `json:"title"`
	CompanyName     *string  `json:"company_name"`
	SalaryMid       *float64 `json:"salary_mid"`
	PositionLevel   *string  `json:"position_level"`
	EmploymentType  *string  `json:"employment_type"`
	PrimaryCategory *string  `json:"primary_category"`
	StatusGroup     *string  `json:"status_group"`
}

// SalarySummary holds distribution KPIs for the filtered population.
type SalarySummary struct {
	TotalJobs    int64    `json:"total_jobs"`
	MeanSalary   *float64 `json:"mean_salary"`
	MedianSalary *float64 `json:"median_salary"`
	P25Salary    *float64 `json:"p25_salary"`
	P75Salary    *float64 `json:"p75_salary"`
	MinSalary    *float64 `json:"min_salary"`
	MaxSalary    *float64 `json:"max_salary"`
}

// CompanyStat is one company's posting volume, optionally broken down by
// position level.
type CompanyStat struct {
	CompanyName   string `json:"company_name"`
	PositionLevel string `json:"position_level"`
	PostCount     int64  `json:"post_count"`
	TotalPosts    int64  `json:"total_posts"`
}

// FilterOptions lists the selectable values per filter dimension, pulled
// from the joined view so every option is actually reachable.
type FilterOptions struct {
	PositionLevels  []string `json:"position_levels"`
	EmploymentTypes []string `json:"employment_types"`
	Categories      []string `json:"categories"`
	StatusGroups    []string `json:"status_groups"`
}
