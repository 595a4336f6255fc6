package template

// TemplateRenderer is the engine contract markup renderers depend on. name is
// resolved against the engine's template bundle.
type TemplateRenderer interface {
	RenderTemplate(name string, data any) (string, error)
}
