package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-daterange/pkg/binding"
	"github.com/goliatone/go-daterange/pkg/daterange"
	"github.com/goliatone/go-daterange/pkg/render"
)

// Renderer implements render.Renderer for terminal-driven sessions. It prompts
// for the start date, commits it through the component, prompts for the end
// date once the component enables it and finally activates submit.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	confirm           bool
	noColor           bool
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	driver, err := newSurveyDriver()
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		driver:       driver,
		outputFormat: OutputFormatJSON,
		theme:        DefaultTheme,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver, err = newSurveyDriver()
		if err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	case OutputFormatYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}

// Render runs the interactive session and returns the collected values in the
// configured output format. A component without a submit flow
// (daterange.ErrNoSubmitHandler) still yields its values.
func (r *Renderer) Render(ctx context.Context, component render.Component, _ render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	if component == nil {
		return nil, errors.New("tui: component is nil")
	}

	view := component.View()
	for _, message := range view.Messages {
		if err := r.errorf(ctx, "%s", message); err != nil {
			return nil, err
		}
	}

	start, err := r.promptDate(ctx, view.Start, daterange.StartRules(), startHelp(view))
	if err != nil {
		return nil, err
	}
	component.ChangeStart(start)

	view = component.View()
	if view.End.Disabled {
		return nil, ErrEndLocked
	}
	end, err := r.promptDate(ctx, view.End, daterange.EndRules(), endHelp(view))
	if err != nil {
		return nil, err
	}
	component.ChangeEnd(end)

	values := daterange.FormValues{StartDate: start, EndDate: end}
	if err := r.submit(ctx, component); err != nil {
		return nil, err
	}

	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, fmt.Errorf("tui: submit transformer: %w", err)
		}
	}

	return r.serialize(values)
}

func (r *Renderer) promptDate(ctx context.Context, input daterange.Input, rules binding.Rules, help string) (string, error) {
	if input.HelperText != "" {
		if err := r.errorf(ctx, "%s", input.HelperText); err != nil {
			return "", err
		}
	}

	validate := func(value string) error {
		if msg := binding.Check(rules, strings.TrimSpace(value)); msg != "" {
			return errors.New(msg)
		}
		return nil
	}

	// Drivers that ignore Validator still get the rule re-checked here.
	for {
		response, err := r.driver.Input(ctx, InputConfig{
			Message:   r.theme.PromptPrefix + input.Label,
			Default:   input.Value,
			Help:      help,
			Validator: validate,
		})
		if err != nil {
			return "", err
		}

		value := strings.TrimSpace(response)
		if msg := binding.Check(rules, value); msg != "" {
			if err := r.errorf(ctx, "%s", msg); err != nil {
				return "", err
			}
			continue
		}
		return value, nil
	}
}

func (r *Renderer) submit(ctx context.Context, component render.Component) error {
	view := component.View()
	if r.confirm {
		ok, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: view.Submit.Label,
			Default: true,
		})
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}

	if view.Submit.Disabled {
		if err := r.infof(ctx, "%s", view.Submit.Label); err != nil {
			return err
		}
	}

	err := component.Submit()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, daterange.ErrNoSubmitHandler):
		return nil
	case errors.Is(err, daterange.ErrSubmitDisabled):
		return fmt.Errorf("tui: submit: %w", err)
	}

	var verr *binding.ValidationError
	if errors.As(err, &verr) {
		for _, name := range []string{daterange.StartDateField, daterange.EndDateField} {
			if msg := verr.Fields[name]; msg != "" {
				if perr := r.errorf(ctx, "%s", msg); perr != nil {
					return perr
				}
			}
		}
	}
	return fmt.Errorf("tui: submit: %w", err)
}

func (r *Renderer) infof(ctx context.Context, format string, args ...any) error {
	return r.driver.Info(ctx, r.prefixed(r.theme.InfoPrefix, color.FgCyan, fmt.Sprintf(format, args...)))
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) error {
	return r.driver.Info(ctx, r.prefixed(r.theme.ErrorPrefix, color.FgRed, fmt.Sprintf(format, args...)))
}

func (r *Renderer) prefixed(prefix string, attr color.Attribute, msg string) string {
	if prefix == "" {
		return msg
	}
	c := color.New(attr, color.Bold)
	if r.noColor {
		c.DisableColor()
	}
	return c.Sprint(prefix) + " " + msg
}

func startHelp(view daterange.View) string {
	return fmt.Sprintf("YYYY-MM-DD, on or before %s", view.Start.Max)
}

func endHelp(view daterange.View) string {
	if view.End.Min != "" {
		return fmt.Sprintf("YYYY-MM-DD, between %s and %s", view.End.Min, view.End.Max)
	}
	return fmt.Sprintf("YYYY-MM-DD, on or before %s", view.End.Max)
}

func (r *Renderer) serialize(values daterange.FormValues) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	case OutputFormatYAML:
		out, err := yaml.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: marshal yaml: %w", err)
		}
		return out, nil
	default:
		out, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("tui: marshal json: %w", err)
		}
		return out, nil
	}
}

func flattenForm(values daterange.FormValues) string {
	flattened := url.Values{}
	for name, value := range values.Binding() {
		flattened.Set(name, value)
	}
	return flattened.Encode()
}

func prettyPrint(values daterange.FormValues) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", daterange.StartLabel, values.StartDate)
	fmt.Fprintf(&b, "%s %s\n", daterange.EndLabel, values.EndDate)
	return b.String()
}
