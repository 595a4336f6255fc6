package binding

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Values maps field names to their current textual values.
type Values map[string]string

// Clone returns an independent copy of the values.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// FieldErrors maps field names to the first failing rule message.
type FieldErrors map[string]string

// Change describes a single value update delivered to subscribers.
type Change struct {
	Name     string
	Value    string
	Previous string
}

// Handle is the per-field binding a component receives from Register.
type Handle interface {
	Name() string
	Value() string
	OnChange(value string)
}

// Control is the registration side of the form-state engine.
type Control interface {
	Register(name string, rules Rules) Handle
}

// Mode selects when rules are evaluated.
type Mode string

const (
	// ModeOnSubmit evaluates rules only when the form is submitted.
	ModeOnSubmit Mode = "onSubmit"
	// ModeOnChange evaluates the changed field on every update.
	ModeOnChange Mode = "onChange"
)

// Option configures a Store.
type Option func(*Store)

// WithDefaults seeds initial values.
func WithDefaults(values Values) Option {
	return func(s *Store) {
		for key, value := range values {
			s.values[key] = value
		}
	}
}

// WithMode sets when rules are first evaluated. Defaults to ModeOnSubmit.
func WithMode(mode Mode) Option {
	return func(s *Store) {
		if mode != "" {
			s.mode = mode
		}
	}
}

// WithReValidateMode sets when rules are re-evaluated after the first submit.
// Defaults to ModeOnChange.
func WithReValidateMode(mode Mode) Option {
	return func(s *Store) {
		if mode != "" {
			s.reValidate = mode
		}
	}
}

// Store is an in-memory Control that owns values, rules and error state.
type Store struct {
	mu sync.RWMutex

	values      Values
	rules       map[string]Rules
	order       []string
	errors      FieldErrors
	submitCount int

	subscribers map[int]func(Change)
	nextSubID   int

	eval       *evaluator
	mode       Mode
	reValidate Mode
}

var _ Control = (*Store)(nil)

// NewStore constructs an empty store applying the provided options.
func NewStore(options ...Option) *Store {
	s := &Store{
		values:      make(Values),
		rules:       make(map[string]Rules),
		errors:      make(FieldErrors),
		subscribers: make(map[int]func(Change)),
		eval:        newEvaluator(),
		mode:        ModeOnSubmit,
		reValidate:  ModeOnChange,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Register satisfies Control. It panics when the rule set cannot be compiled
// into the validator; use RegisterField to handle the error.
func (s *Store) Register(name string, rules Rules) Handle {
	handle, err := s.RegisterField(name, rules)
	if err != nil {
		panic(err)
	}
	return handle
}

// RegisterField registers (or re-registers) a named field and its rules.
func (s *Store) RegisterField(name string, rules Rules) (Handle, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("binding: field name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.eval.register(name, rules); err != nil {
		return nil, err
	}
	if _, exists := s.rules[name]; !exists {
		s.order = append(s.order, name)
	}
	s.rules[name] = rules
	if _, ok := s.values[name]; !ok {
		s.values[name] = ""
	}
	return &fieldHandle{store: s, name: name}, nil
}

// Fields returns registered field names in registration order.
func (s *Store) Fields() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Value returns the current value of a field.
func (s *Store) Value(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Values returns a snapshot of all values.
func (s *Store) Values() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

// SetValue updates a field and notifies subscribers. The field is re-evaluated
// when the active mode asks for change-time validation.
func (s *Store) SetValue(name, value string) {
	s.mu.Lock()
	previous := s.values[name]
	s.values[name] = value
	if s.validateOnChangeLocked() {
		if rules, ok := s.rules[name]; ok {
			s.setErrorLocked(name, s.eval.check(name, value, rules))
		}
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	change := Change{Name: name, Value: value, Previous: previous}
	for _, fn := range subs {
		fn(change)
	}
}

// Subscribe registers fn for change notifications and returns a function that
// removes the subscription.
func (s *Store) Subscribe(fn func(Change)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Validate evaluates every registered field, replaces the error state and
// returns a copy of it.
func (s *Store) Validate() FieldErrors {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errors = make(FieldErrors)
	for _, name := range s.order {
		s.setErrorLocked(name, s.eval.check(name, s.values[name], s.rules[name]))
	}
	return s.errorsLocked()
}

// Errors returns a copy of the current error state.
func (s *Store) Errors() FieldErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errorsLocked()
}

// Error returns the current message for a field, or "" when it has none.
func (s *Store) Error(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors[name]
}

// SetError records an externally produced message for a field, for example a
// server-side rejection mapped back onto the form.
func (s *Store) SetError(name, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(name, strings.TrimSpace(message))
}

// ClearErrors removes errors for the given fields, or all errors when none are
// named.
func (s *Store) ClearErrors(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(names) == 0 {
		s.errors = make(FieldErrors)
		return
	}
	for _, name := range names {
		delete(s.errors, name)
	}
}

// SubmitCount reports how many times HandleSubmit callbacks ran.
func (s *Store) SubmitCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.submitCount
}

// HandleSubmit wraps onValid in the engine's submit flow: every field is
// validated and onValid only runs when no field reports an error. A failed
// validation returns a *ValidationError.
func (s *Store) HandleSubmit(onValid func(Values) error) func() error {
	return func() error {
		s.mu.Lock()
		s.submitCount++
		s.mu.Unlock()

		if errs := s.Validate(); len(errs) > 0 {
			return &ValidationError{Fields: errs}
		}
		if onValid == nil {
			return nil
		}
		return onValid(s.Values())
	}
}

// Reset replaces all values, clears errors and the submit counter, and notifies
// subscribers for every registered field.
func (s *Store) Reset(values Values) {
	s.mu.Lock()
	previous := s.values
	s.values = make(Values, len(s.order))
	for _, name := range s.order {
		s.values[name] = ""
	}
	for key, value := range values {
		s.values[key] = value
	}
	s.errors = make(FieldErrors)
	s.submitCount = 0

	changes := make([]Change, 0, len(s.order))
	for _, name := range s.order {
		changes = append(changes, Change{Name: name, Value: s.values[name], Previous: previous[name]})
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	for _, change := range changes {
		for _, fn := range subs {
			fn(change)
		}
	}
}

func (s *Store) validateOnChangeLocked() bool {
	if s.mode == ModeOnChange {
		return true
	}
	return s.submitCount > 0 && s.reValidate == ModeOnChange
}

func (s *Store) setErrorLocked(name, message string) {
	if message == "" {
		delete(s.errors, name)
		return
	}
	s.errors[name] = message
}

func (s *Store) errorsLocked() FieldErrors {
	out := make(FieldErrors, len(s.errors))
	for key, value := range s.errors {
		out[key] = value
	}
	return out
}

func (s *Store) subscribersLocked() []func(Change) {
	if len(s.subscribers) == 0 {
		return nil
	}
	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subscribers[id])
	}
	return out
}

type fieldHandle struct {
	store *Store
	name  string
}

func (h *fieldHandle) Name() string {
	return h.name
}

func (h *fieldHandle) Value() string {
	return h.store.Value(h.name)
}

func (h *fieldHandle) OnChange(value string) {
	h.store.SetValue(h.name, value)
}
