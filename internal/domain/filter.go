package domain

// Canonical status-group values after normalization.
const (
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// FilterSet holds the user-chosen filter values for one request. An empty
// slice means "no restriction" on that dimension, never "match nothing".
type FilterSet struct {
	PositionLevels  []string
	Categories      []string
	EmploymentTypes []string
	// StatusGroups is restricted to the canonical values "Open"/"Closed".
	StatusGroups []string
}

// Empty reports whether no dimension is restricted.
func (f FilterSet) Empty() bool {
	return len(f.PositionLevels) == 0 && len(f.Categories) == 0 &&
		len(f.EmploymentTypes) == 0 && len(f.StatusGroups) == 0
}

// Validate checks the status groups against the canonical value set.
func (f FilterSet) Validate() error {
	for _, s := range f.StatusGroups {
		if s != StatusOpen && s != StatusClosed {
			return ErrValidation("invalid status group %q: must be %q or %q", s, StatusOpen, StatusClosed)
		}
	}
	return nil
}

// HeatmapParams are the numeric controls for the two-phase salary heatmap.
type HeatmapParams struct {
	// CapPercentile is the quantile fraction used as the salary clamp, in [0, 1).
	CapPercentile float64
	// BinCount is the target number of salary bins, > 0.
	BinCount int
}

// Validate checks the numeric controls against their documented ranges.
func (p HeatmapParams) Validate() error {
	if p.CapPercentile < 0 || p.CapPercentile >= 1 {
		return ErrValidation("cap percentile %v out of range [0, 1)", p.CapPercentile)
	}
	if p.BinCount <= 0 {
		return ErrValidation("bin count must be positive, got %d", p.BinCount)
	}
	return nil
}

// SampleParams control the server-side random sample of the detail view.
type SampleParams struct {
	// MaxRows caps the number of sampled rows, > 0.
	MaxRows int
}

// Validate checks the sampling cap.
func (p SampleParams) Validate() error {
	if p.MaxRows <= 0 {
		return ErrValidation("sample row cap must be positive, got %d", p.MaxRows)
	}
	return nil
}
