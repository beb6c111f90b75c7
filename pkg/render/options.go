package render

import (
	"sort"
	"strings"
)

// RenderOptions carry the per-request form state renderers need. Keys are
// the dotted field paths of the model.
type RenderOptions struct {
	// Values holds display strings for every concrete field path.
	Values map[string]string
	// Errors holds the messages attached to each field path.
	Errors map[string][]string
	// Disabled lists fields whose inputs must be rendered disabled.
	Disabled map[string]bool
	// Rows holds the repeated rows of each field array, keyed by array path.
	Rows map[string][]RowView
	// State summarises form-level bookkeeping.
	State StateView
	// CanSubmit gates the submit action.
	CanSubmit bool
	// Notice is a one-off message shown above the form.
	Notice string
}

// RowView is one repeated row. Path is the concrete path of the row's input.
type RowView struct {
	ID        string   `json:"id"`
	Index     int      `json:"index"`
	Path      string   `json:"path"`
	Value     string   `json:"value"`
	Removable bool     `json:"removable"`
	Errors    []string `json:"errors,omitempty"`
}

// StateView mirrors the form bookkeeping for display.
type StateView struct {
	Status             string   `json:"status"`
	IsDirty            bool     `json:"isDirty"`
	IsValid            bool     `json:"isValid"`
	IsSubmitted        bool     `json:"isSubmitted"`
	IsSubmitSuccessful bool     `json:"isSubmitSuccessful"`
	SubmitCount        int      `json:"submitCount"`
	DirtyFields        []string `json:"dirtyFields,omitempty"`
	TouchedFields      []string `json:"touchedFields,omitempty"`
}

// FieldErrors converts single-message field errors into the renderer shape,
// trimming messages and dropping empty ones.
func FieldErrors(errs map[string]string) map[string][]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string][]string, len(errs))
	for path, message := range errs {
		if messages := normalizeMessages([]string{message}); len(messages) > 0 {
			out[path] = messages
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ErrorPaths returns the paths carrying errors in sorted order.
func (o RenderOptions) ErrorPaths() []string {
	paths := make([]string, 0, len(o.Errors))
	for path, messages := range o.Errors {
		if len(messages) > 0 {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
