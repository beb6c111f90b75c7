// Package form holds the state of a fixed-schema form: current values keyed
// by dotted path, per-field error/touched/dirty bookkeeping, validation
// scheduling (change, blur, trigger and submit) and repeated rows with stable
// identity keys.
//
// Values live in a tree of map[string]any and []any nodes. Registered field
// paths address leaves of that tree ("social.twitter", "phoneNumbers.0");
// array rows are registered with a "*" segment ("phNumbers.*.number") and
// expand to one concrete path per row.
//
// A Form is safe for concurrent use. Rules run outside the internal lock and
// their results are dropped when the field changed while they were running,
// so a slow lookup cannot overwrite the verdict for a newer value.
package form
