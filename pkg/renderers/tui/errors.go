package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C) or declined
	// the submit confirmation.
	ErrAborted = errors.New("tui: aborted")
	// ErrEndLocked is returned when the end date cannot be prompted because
	// the component still reports it disabled after the start change.
	ErrEndLocked = errors.New("tui: end date is disabled")
)
