package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-daterange/pkg/render"
	rendertemplate "github.com/goliatone/go-daterange/pkg/render/template"
	gotemplate "github.com/goliatone/go-daterange/pkg/render/template/gotemplate"
)

const formTemplate = "templates/form.tmpl"

// htmlDatePattern is the date pattern in HTML pattern-attribute form, which is
// implicitly anchored.
const htmlDatePattern = `\d{4}-\d{2}-\d{2}`

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	inlineStyles     bool
	stylesheet       string
	script           string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/form.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithDefaultStyles inlines the embedded stylesheet ahead of the form.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// WithStylesheet links an external stylesheet ahead of the form.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = strings.TrimSpace(href)
	}
}

// WithRuntimeScript references the browser runtime (see RuntimeScriptName)
// after the form. Without it the end input only updates on re-render.
func WithRuntimeScript(src string) Option {
	return func(cfg *config) {
		cfg.script = strings.TrimSpace(src)
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	styles     string
	stylesheet string
	script     string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	out := &Renderer{
		templates:  renderer,
		stylesheet: cfg.stylesheet,
		script:     cfg.script,
	}
	if cfg.inlineStyles {
		out.styles = defaultStylesheet()
	}
	return out, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the form markup for the component's current view.
func (r *Renderer) Render(_ context.Context, component render.Component, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if component == nil {
		return nil, fmt.Errorf("vanilla renderer: component is nil")
	}

	view := component.View()
	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"view":    view,
		"inputs":  view.Inputs(),
		"hidden":  render.SortedHiddenFields(options.Hidden),
		"pattern": htmlDatePattern,
		"form": map[string]any{
			"id":     options.ResolvedFormID(),
			"method": options.FormMethod(),
			"action": strings.TrimSpace(options.Action),
		},
		"inline_styles": r.styles,
		"stylesheet":    r.stylesheet,
		"script":        r.script,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
