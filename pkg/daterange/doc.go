// Package daterange implements the start/end date range field.
//
// A Field is bound to a binding.Control for the startDate and endDate fields
// and keeps one piece of local state: a mirror of the last start date the user
// committed through it. The mirror gates the end input (disabled until a start
// date exists) and supplies its lower bound without waiting on the binding to
// round-trip, which matters when the form state lives on the other side of an
// HTTP request.
//
// Min/max bounds on the rendered inputs are native hints only. Validation is
// owned by the binding engine (required, then the YYYY-MM-DD pattern) and its
// messages come back in through Props. The pattern checks shape, not calendar
// validity: "2024-13-40" is accepted.
package daterange
