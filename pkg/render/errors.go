package render

import (
	"html"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-daterange/pkg/daterange"
)

// ErrorMapping splits a server error payload into field-level and form-level
// messages. Field keys are the bound field names (startDate, endDate).
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// FieldMessage joins the messages recorded for a field into the single helper
// string a date input displays.
func (m ErrorMapping) FieldMessage(name string) string {
	return strings.Join(m.Fields[name], " ")
}

// Apply copies the mapping onto props: field messages become ErrorsStart and
// ErrorsEnd (when present), form messages are appended to ErrorMessages.
func (m ErrorMapping) Apply(props daterange.Props) daterange.Props {
	if msg := m.FieldMessage(daterange.StartDateField); msg != "" {
		props.ErrorsStart = msg
	}
	if msg := m.FieldMessage(daterange.EndDateField); msg != "" {
		props.ErrorsEnd = msg
	}
	if len(m.Form) > 0 {
		props.ErrorMessages = append(append([]string(nil), props.ErrorMessages...), m.Form...)
	}
	return props
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrorPayload normalises server error payloads (dotted paths, JSON
// pointers, go-errors style wrappers) onto the date range fields. Unknown
// paths are treated as form-level errors so messages are not lost. Markup in
// messages is stripped before they reach a renderer.
func MapErrorPayload(payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	known := map[string]struct{}{
		daterange.StartDateField: {},
		daterange.EndDateField:   {},
	}

	for _, rawPath := range sortedPayloadKeys(payload) {
		normalizedMessages := normalizeMessages(payload[rawPath])
		if len(normalizedMessages) == 0 {
			continue
		}

		mapped, formLevel := mapErrorPath(rawPath, known)
		if formLevel {
			mapping.Form = append(mapping.Form, normalizedMessages...)
			continue
		}
		mapping.Fields[mapped] = append(mapping.Fields[mapped], normalizedMessages...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

func messageSanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return messagePolicy
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	policy := messageSanitizer()
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		// plain text; renderers escape on output
		trimmed := strings.TrimSpace(html.UnescapeString(policy.Sanitize(message)))
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := dropWrapperSegments(stripNumericSegments(parsePathSegments(trimmed)))
	if len(segments) != 1 {
		return "", true
	}
	if _, ok := known[segments[0]]; ok {
		return segments[0], false
	}
	if name, ok := snakeAlias(segments[0]); ok {
		return name, false
	}
	return "", true
}

// snakeAlias accepts start_date / end_date as aliases of the bound names.
func snakeAlias(segment string) (string, bool) {
	switch strings.ToLower(segment) {
	case "start_date", "start-date", "startdate":
		return daterange.StartDateField, true
	case "end_date", "end-date", "enddate":
		return daterange.EndDateField, true
	default:
		return "", false
	}
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
		"properties": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func sortedPayloadKeys(payload map[string][]string) []string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
