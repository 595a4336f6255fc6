package render

import (
	"context"

	"github.com/goliatone/go-daterange/pkg/daterange"
)

// Component is the surface renderers drive. *daterange.Field satisfies it:
// markup renderers only read View, interactive renderers also push changes and
// activate submit.
type Component interface {
	View() daterange.View
	ChangeStart(value string)
	ChangeEnd(value string)
	Submit() error
}

var _ Component = (*daterange.Field)(nil)

// Renderer converts a component into a byte representation (HTML, JSON,
// collected terminal values).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, component Component, options RenderOptions) ([]byte, error)
}
