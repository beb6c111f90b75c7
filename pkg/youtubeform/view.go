package youtubeform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
)

// RenderOptions snapshots the screen for renderers.
func (s *Screen) RenderOptions(notice string) render.RenderOptions {
	state := s.form.State()
	errs := render.FieldErrors(state.Errors)

	opts := render.RenderOptions{
		Values:    make(map[string]string),
		Errors:    errs,
		Disabled:  make(map[string]bool),
		Rows:      make(map[string][]render.RowView),
		CanSubmit: state.IsDirty && !state.IsSubmitting,
		Notice:    notice,
		State: render.StateView{
			Status:             string(s.form.Status()),
			IsDirty:            state.IsDirty,
			IsValid:            state.IsValid,
			IsSubmitted:        state.IsSubmitted,
			IsSubmitSuccessful: state.IsSubmitSuccessful,
			SubmitCount:        state.SubmitCount,
			DirtyFields:        state.DirtyFields,
			TouchedFields:      state.TouchedFields,
		},
	}

	for _, path := range s.form.Paths() {
		value, _ := s.form.GetValue(path)
		opts.Values[path] = DisplayValue(value)
		if s.form.IsDisabled(path) {
			opts.Disabled[path] = true
		}
	}

	rowPath := func(index int) string {
		return strings.Replace(model.PathPhoneRowNumber, "*", strconv.Itoa(index), 1)
	}
	rowErrs := render.FieldErrors(s.form.ErrorsUnder(model.PathPhoneRows))
	for _, row := range s.phones.Fields() {
		path := rowPath(row.Index)
		opts.Rows[model.PathPhoneRows] = append(opts.Rows[model.PathPhoneRows], render.RowView{
			ID:        row.ID,
			Index:     row.Index,
			Path:      path,
			Value:     opts.Values[path],
			Removable: s.phones.CanRemove(row.Index),
			Errors:    rowErrs[path],
		})
	}
	return opts
}

// DisplayValue formats a stored value for an input element. Dates use the
// YYYY-MM-DD layout; the zero time renders empty.
func DisplayValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case int:
		return strconv.Itoa(typed)
	case time.Time:
		if typed.IsZero() {
			return ""
		}
		return typed.Format(model.DateLayout)
	default:
		return fmt.Sprint(typed)
	}
}
