// Package binding models the form-state engine that date inputs are bound to.
//
// A Control registers named fields together with a declarative rule set and
// hands back a Handle exposing the current value and a change callback. The
// in-memory Store implements Control, evaluates the rules (required first, then
// pattern on non-empty values) and notifies subscribers of every change. Error
// messages produced by the engine are what components receive as per-field
// error text; components never evaluate rules themselves.
package binding
