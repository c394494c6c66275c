package domain

// TableRole identifies the function a physical table serves in the join plan.
type TableRole string

const (
	RoleBase       TableRole = "base"
	RoleCategories TableRole = "categories"
	RoleEnriched   TableRole = "enriched"
	RoleRaw        TableRole = "raw"
)

// Default physical table names in the job-postings database.
const (
	TableBase       = "jobs_base"
	TableCategories = "jobs_categories"
	TableEnriched   = "jobs_enriched"
	TableRaw        = "jobs_raw"
)

// TableSchema is a snapshot of one table's present columns, discovered at
// runtime. A missing optional table is represented by an empty column set.
type TableSchema struct {
	Name    string
	Columns map[string]struct{}
}

// NewTableSchema builds a TableSchema from a column name list.
func NewTableSchema(name string, columns []string) TableSchema {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	return TableSchema{Name: name, Columns: set}
}

// Has reports whether the column is present.
func (s TableSchema) Has(column string) bool {
	_, ok := s.Columns[column]
	return ok
}

// Empty reports whether the table resolved to no columns (absent table).
func (s TableSchema) Empty() bool { return len(s.Columns) == 0 }
