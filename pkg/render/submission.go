package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-daterange/pkg/daterange"
)

// HiddenField is a hidden input emitted inside the form next to the date
// inputs.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token under the
// input name the backend expects ("_csrf", "csrf_token", ...).
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions. The bound
// date field names are reserved and dropped.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	put := func(name, value string) {
		name = strings.TrimSpace(name)
		if name == "" || isReservedName(name) {
			return
		}
		out[name] = value
	}
	for key, value := range base {
		put(key, value)
	}
	for _, field := range fields {
		put(field.Name, field.Value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	merged := MergeHiddenFields(fields)
	if len(merged) == 0 {
		return nil
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: name, Value: merged[name]})
	}
	return result
}

func isReservedName(name string) bool {
	switch name {
	case daterange.StartDateField, daterange.EndDateField:
		return true
	default:
		return false
	}
}
