package binding

import (
	"sort"
	"strings"
)

// ValidationError is returned by HandleSubmit when at least one field fails
// its rules. Fields holds the first failing message per field.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "binding: validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "binding: validation failed: " + strings.Join(parts, "; ")
}
