package schema

import "sgjobs-insights/internal/domain"

// Resolve returns the first candidate present in the table's column set,
// preserving candidate priority order. An empty string means no candidate
// matched, which by itself is only a missing optional field.
func Resolve(s domain.TableSchema, candidates []string) string {
	for _, c := range candidates {
		if s.Has(c) {
			return c
		}
	}
	return ""
}

// ResolveField resolves the named logical field for one table role.
func ResolveField(s domain.TableSchema, c Candidates, field string) string {
	return Resolve(s, c[field])
}
