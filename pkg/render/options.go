package render

import (
	"net/http"
	"strings"
)

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching component state.
type RenderOptions struct {
	// Action is the URL the enclosing form posts to. Empty keeps the browser
	// default (the current URL).
	Action string
	// Method is the form method. Browsers only submit GET and POST; anything
	// else falls back to POST.
	Method string
	// Hidden carries extra inputs (CSRF tokens, versions) rendered alongside
	// the two date inputs. Build it with MergeHiddenFields.
	Hidden map[string]string
	// FormID overrides the id attribute of the form element.
	FormID string
}

const defaultFormID = "daterange-form"

// FormMethod returns the browser-submittable method for the options.
func (o RenderOptions) FormMethod() string {
	switch strings.ToUpper(strings.TrimSpace(o.Method)) {
	case http.MethodGet:
		return "get"
	default:
		return "post"
	}
}

// ResolvedFormID returns FormID or the default id.
func (o RenderOptions) ResolvedFormID() string {
	if id := strings.TrimSpace(o.FormID); id != "" {
		return id
	}
	return defaultFormID
}
