package daterange

import (
	"errors"
	"time"

	"github.com/goliatone/go-daterange/pkg/binding"
)

const (
	StartLabel = "Start Date:"
	EndLabel   = "End Date:"

	SubmitLabel  = "Search by date"
	LoadingLabel = "Loading..."

	inputTypeDate = "date"
	buttonSubmit  = "submit"
)

var (
	// ErrSubmitDisabled is returned by Submit while a fetch is in flight.
	ErrSubmitDisabled = errors.New("daterange: submit disabled while fetching")
	// ErrNoSubmitHandler is returned by Submit when no enclosing form flow was
	// supplied through Props.OnSubmit.
	ErrNoSubmitHandler = errors.New("daterange: submit handler is nil")
)

// Props carries everything the host supplies on each render.
type Props struct {
	IsFetching bool
	Control    binding.Control

	// ErrorsStart and ErrorsEnd hold the engine's message per field; empty
	// means no error.
	ErrorsStart string
	ErrorsEnd   string

	// ErrorMessages are external (cross-field or server) messages rendered
	// verbatim and in order.
	ErrorMessages []string

	// OnSubmit is the enclosing form's submit flow.
	OnSubmit func() error
}

// ErrorSource exposes per-field messages; *binding.Store satisfies it.
type ErrorSource interface {
	Error(name string) string
}

// WithFieldErrors returns a copy of p with ErrorsStart and ErrorsEnd read from
// src.
func (p Props) WithFieldErrors(src ErrorSource) Props {
	if src == nil {
		return p
	}
	p.ErrorsStart = src.Error(StartDateField)
	p.ErrorsEnd = src.Error(EndDateField)
	return p
}

// Option configures a Field.
type Option func(*Field)

// WithClock overrides the time source used to derive today.
func WithClock(now func() time.Time) Option {
	return func(f *Field) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLocation sets the location used to truncate now to a date.
func WithLocation(loc *time.Location) Option {
	return func(f *Field) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// Field is a mounted date range field.
type Field struct {
	props Props
	start binding.Handle
	end   binding.Handle

	// mirror holds the last start value committed through this Field; "" is
	// absent.
	mirror string

	now func() time.Time
	loc *time.Location
}

// New mounts a Field, registering both date fields and their rules on the
// control. The start mirror starts absent.
func New(props Props, options ...Option) (*Field, error) {
	if props.Control == nil {
		return nil, errors.New("daterange: control is required")
	}

	f := &Field{
		props: props,
		now:   time.Now,
		loc:   time.UTC,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}

	f.start = props.Control.Register(StartDateField, StartRules())
	f.end = props.Control.Register(EndDateField, EndRules())
	return f, nil
}

// SetProps replaces the props for the next render. Local state is kept.
func (f *Field) SetProps(props Props) {
	if props.Control == nil {
		props.Control = f.props.Control
	}
	f.props = props
}

// Props returns the current props.
func (f *Field) Props() Props {
	return f.props
}

// ChangeStart forwards a start-date change to the binding and mirrors it.
func (f *Field) ChangeStart(value string) {
	f.start.OnChange(value)
	f.mirror = value
}

// ChangeEnd forwards an end-date change to the binding.
func (f *Field) ChangeEnd(value string) {
	f.end.OnChange(value)
}

// StartMirror returns the mirrored start date and whether it is set.
func (f *Field) StartMirror() (string, bool) {
	return f.mirror, f.mirror != ""
}

// HasStartDate reports whether the end input is enabled.
func (f *Field) HasStartDate() bool {
	return f.mirror != ""
}

// Submit activates the submit control. It refuses while fetching.
func (f *Field) Submit() error {
	if f.props.IsFetching {
		return ErrSubmitDisabled
	}
	if f.props.OnSubmit == nil {
		return ErrNoSubmitHandler
	}
	return f.props.OnSubmit()
}

// View renders the field against the current clock.
func (f *Field) View() View {
	return f.ViewAt(f.now())
}

// ViewAt renders the field for the given instant. today is derived once so
// both inputs share the same upper bound.
func (f *Field) ViewAt(now time.Time) View {
	today := Today(now, f.loc)
	mirror, hasStart := f.StartMirror()

	view := View{
		Today: today,
		Start: Input{
			ID:         StartDateField,
			Name:       StartDateField,
			Label:      StartLabel,
			Type:       inputTypeDate,
			Value:      f.start.Value(),
			Max:        today,
			Required:   true,
			Invalid:    f.props.ErrorsStart != "",
			HelperText: f.props.ErrorsStart,
		},
		End: Input{
			ID:         EndDateField,
			Name:       EndDateField,
			Label:      EndLabel,
			Type:       inputTypeDate,
			Value:      f.end.Value(),
			Min:        mirror,
			Max:        today,
			Required:   true,
			Disabled:   !hasStart,
			Invalid:    f.props.ErrorsEnd != "",
			HelperText: f.props.ErrorsEnd,
		},
		Submit: Button{
			Label:        SubmitLabel,
			IdleLabel:    SubmitLabel,
			LoadingLabel: LoadingLabel,
			Type:         buttonSubmit,
			Disabled:     f.props.IsFetching,
		},
	}
	if f.props.IsFetching {
		view.Submit.Label = LoadingLabel
	}
	if len(f.props.ErrorMessages) > 0 {
		view.Messages = append([]string(nil), f.props.ErrorMessages...)
	}
	return view
}
