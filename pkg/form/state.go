package form

import (
	"sort"
	"strings"
)

// FieldStatus is the per-field validation state.
type FieldStatus string

const (
	// StatusUntouched: never blurred nor validated.
	StatusUntouched FieldStatus = "untouched"
	// StatusValid: the last recorded verdict passed.
	StatusValid FieldStatus = "valid"
	// StatusInvalid: the last recorded verdict failed.
	StatusInvalid FieldStatus = "invalid"
)

// FormStatus is derived from the field statuses.
type FormStatus string

const (
	FormValid   FormStatus = "valid"
	FormInvalid FormStatus = "invalid"
)

// FormState is a point-in-time snapshot of the form bookkeeping.
type FormState struct {
	IsDirty            bool
	IsValid            bool
	IsSubmitting       bool
	IsSubmitted        bool
	IsSubmitSuccessful bool
	SubmitCount        int
	Errors             map[string]string
	DirtyFields        []string
	TouchedFields      []string
}

// State returns the current bookkeeping snapshot. IsValid reflects the
// verdicts recorded so far; fields that were never validated count as valid.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := FormState{
		IsDirty:            !equalValues(f.values, f.defaults),
		IsSubmitting:       f.submitting,
		IsSubmitted:        f.submitted,
		IsSubmitSuccessful: f.submitSuccessful,
		SubmitCount:        f.submitCount,
		Errors:             make(map[string]string),
	}
	for path, meta := range f.meta {
		if meta.message != "" {
			state.Errors[path] = meta.message
		}
		if meta.dirty {
			state.DirtyFields = append(state.DirtyFields, path)
		}
		if meta.touched {
			state.TouchedFields = append(state.TouchedFields, path)
		}
	}
	sort.Strings(state.DirtyFields)
	sort.Strings(state.TouchedFields)
	state.IsValid = len(state.Errors) == 0
	return state
}

// Error returns the recorded message of a field.
func (f *Form) Error(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if meta, ok := f.meta[path]; ok {
		return meta.message
	}
	return ""
}

// ErrorsUnder returns the recorded messages of every field at or below
// prefix, keyed by path.
func (f *Form) ErrorsUnder(prefix string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string)
	for path, meta := range f.meta {
		if meta.message == "" {
			continue
		}
		if prefix == "" || path == prefix || strings.HasPrefix(path, prefix+".") {
			out[path] = meta.message
		}
	}
	return out
}

// FieldStatus reports the validation state of one field.
func (f *Form) FieldStatus(path string) FieldStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta, ok := f.meta[path]
	switch {
	case !ok || (!meta.touched && !meta.validated):
		return StatusUntouched
	case meta.message != "":
		return StatusInvalid
	default:
		return StatusValid
	}
}

// Status derives the form-level status from the recorded field verdicts.
func (f *Form) Status() FormStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, meta := range f.meta {
		if meta.message != "" {
			return FormInvalid
		}
	}
	return FormValid
}
