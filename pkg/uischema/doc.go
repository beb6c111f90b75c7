// Package uischema loads layout documents that enrich a form model with
// labels, placeholders, input kinds, field order and action buttons. Fields
// may also carry a disabledWhen rule (see package condition), which is
// compiled once at load so a malformed rule fails early.
package uischema
