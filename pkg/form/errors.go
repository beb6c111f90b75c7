package form

import "errors"

var (
	// ErrUnknownField is returned for paths that match no registered field or
	// no existing value.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrFieldDisabled is returned when an input event targets a disabled field.
	ErrFieldDisabled = errors.New("form: field is disabled")
	// ErrNotArray is returned when a field array name does not resolve to a list.
	ErrNotArray = errors.New("form: path is not an array")
	// ErrLastRow is returned when removing a row would leave the list empty.
	ErrLastRow = errors.New("form: cannot remove the last row")
	// ErrRowOutOfRange is returned for row indexes outside the list.
	ErrRowOutOfRange = errors.New("form: row index out of range")
	// ErrRowNotFound is returned when no row carries the requested key.
	ErrRowNotFound = errors.New("form: row not found")
)

// MessageValidationFailed is shown when a rule errors without a message.
const MessageValidationFailed = "Validation could not complete"
