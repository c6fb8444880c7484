package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrPrintMode is returned for forms prepared as print views; there is
	// nothing to fill in.
	ErrPrintMode = errors.New("tui: print views cannot be filled")
)
