package tui

import "github.com/goliatone/go-daterange/pkg/daterange"

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
	// OutputFormatYAML emits a YAML document.
	OutputFormatYAML OutputFormat = "yaml"
)

// ParseOutputFormat maps a flag value onto a known format.
func ParseOutputFormat(raw string) (OutputFormat, bool) {
	switch format := OutputFormat(raw); format {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText, OutputFormatYAML:
		return format, true
	default:
		return "", false
	}
}

// Theme captures optional formatting hints the driver can apply when printing
// messages.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// DefaultTheme is applied when no theme is configured.
var DefaultTheme = Theme{
	InfoPrefix:  "i",
	ErrorPrefix: "x",
}

// SubmitTransformer mutates collected values before serialization.
type SubmitTransformer func(daterange.FormValues) (daterange.FormValues, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithSubmitTransformer allows callers to mutate collected values prior to
// serialization.
func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithConfirm asks for confirmation before activating submit.
func WithConfirm(enabled bool) Option {
	return func(r *Renderer) {
		r.confirm = enabled
	}
}

// WithoutColor disables ANSI colouring of message prefixes.
func WithoutColor() Option {
	return func(r *Renderer) {
		r.noColor = true
	}
}
