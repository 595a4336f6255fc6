// Package jsonview renders the component view as JSON for script-driven
// clients that draw their own inputs.
package jsonview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-daterange/pkg/daterange"
	"github.com/goliatone/go-daterange/pkg/render"
)

// Payload is the document written by Render.
type Payload struct {
	Form   Form                 `json:"form"`
	View   daterange.View       `json:"view"`
	Hidden []render.HiddenField `json:"hidden,omitempty"`
}

// Form describes the enclosing form the client should submit to.
type Form struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Action string `json:"action,omitempty"`
}

type Option func(*Renderer)

// WithIndent pretty-prints the payload using the given indent.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(_ context.Context, component render.Component, options render.RenderOptions) ([]byte, error) {
	if component == nil {
		return nil, fmt.Errorf("jsonview renderer: component is nil")
	}

	payload := Payload{
		Form: Form{
			ID:     options.ResolvedFormID(),
			Method: options.FormMethod(),
			Action: strings.TrimSpace(options.Action),
		},
		View:   component.View(),
		Hidden: render.SortedHiddenFields(options.Hidden),
	}

	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(payload, "", r.indent)
	} else {
		out, err = json.Marshal(payload)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview renderer: marshal: %w", err)
	}
	return out, nil
}
