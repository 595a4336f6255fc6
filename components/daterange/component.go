package daterange

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/goliatone/go-daterange/pkg/openapi"
	"github.com/goliatone/go-daterange/pkg/render"
	"github.com/goliatone/go-daterange/pkg/renderers/jsonview"
	"github.com/goliatone/go-daterange/pkg/renderers/vanilla"
)

// Component wraps the date range handler, its configuration, and routing
// helpers.
type Component struct {
	opts Options
}

// New constructs a component with default options plus any overrides. The
// renderers and the OpenAPI document are built eagerly so configuration
// errors surface here rather than on the first request.
func New(fns ...OptionFn) (*Component, error) {
	opts := NewOptions(fns...)
	if _, err := newHandler(opts, opts.RoutePath); err != nil {
		return nil, err
	}
	return &Component{opts: opts}, nil
}

// Options returns a copy of the component configuration.
func (c *Component) Options() Options {
	if c == nil {
		return DefaultOptions()
	}
	return NewOptions(func(o *Options) { *o = c.opts })
}

// Handler returns a net/http handler serving the form, its JSON view and
// the OpenAPI document relative to the route path.
func (c *Component) Handler() (http.Handler, error) {
	if c == nil {
		return NewHandler()
	}
	return HandlerWithOptions(c.opts)
}

// RegisterRoutes registers the component routes under basePath on mux.
func (c *Component) RegisterRoutes(mux Mux, basePath string) (string, error) {
	if c == nil {
		return RegisterRoutes(mux, basePath)
	}
	return RegisterRoutesWithOptions(mux, basePath, c.opts)
}

func buildRegistry(opts Options) (*render.Registry, error) {
	registry := render.NewRegistry()
	if len(opts.Renderers) > 0 {
		for _, renderer := range opts.Renderers {
			if err := registry.Register(renderer); err != nil {
				return nil, fmt.Errorf("daterange: register renderer: %w", err)
			}
		}
		return registry, nil
	}

	vanillaOpts := []vanilla.Option{vanilla.WithTemplatesDir(opts.TemplatesDir)}
	if opts.AssetsPath != "" {
		vanillaOpts = append(vanillaOpts,
			vanilla.WithStylesheet(path.Join(opts.AssetsPath, vanilla.StylesheetName)),
			vanilla.WithRuntimeScript(path.Join(opts.AssetsPath, vanilla.RuntimeScriptName)),
		)
	} else {
		vanillaOpts = append(vanillaOpts, vanilla.WithDefaultStyles())
	}

	html, err := vanilla.New(vanillaOpts...)
	if err != nil {
		return nil, fmt.Errorf("daterange: %w", err)
	}
	registry.MustRegister(html)
	registry.MustRegister(jsonview.New())
	return registry, nil
}

func buildDocument(mount string) (*openapi.Document, error) {
	doc, err := openapi.New(context.Background(), openapi.WithBasePath(mount))
	if err != nil {
		return nil, fmt.Errorf("daterange: %w", err)
	}
	return doc, nil
}
