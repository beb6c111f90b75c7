package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrControllerMissing is returned by New without a controller.
	ErrControllerMissing = errors.New("tui: controller is required")
)
