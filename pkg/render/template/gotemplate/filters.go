package gotemplate

import (
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

var filtersOnce sync.Once

// registerFilters installs the filters the form templates use. pongo2
// filters are process-wide.
func registerFilters() {
	filtersOnce.Do(func() {
		register("helper_id", filterHelperID)
		register("attr_id", filterAttrID)
	})
}

func register(name string, fn pongo2.FilterFunction) {
	if !pongo2.FilterExists(name) {
		_ = pongo2.RegisterFilter(name, fn)
	}
}

// filterHelperID derives the id of an input's helper text from the input id.
func filterHelperID(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	id := strings.TrimSpace(in.String())
	if id == "" {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(id + "-helper"), nil
}

// filterAttrID reduces a value to letters, digits, '_' and single dashes.
func filterAttrID(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(in.String()) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteRune('-')
			dash = true
		}
	}
	return pongo2.AsValue(strings.TrimSuffix(b.String(), "-")), nil
}
