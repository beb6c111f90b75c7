package vanilla

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
)

// Template data. Every number is pre-formatted: the engine hands templates a
// JSON-decoded copy, so ints would arrive as floats.

type pageView struct {
	Form    formView     `json:"form"`
	Fields  []fieldView  `json:"fields"`
	Actions []actionView `json:"actions"`
	// DefaultAction is the form's submit action, rendered first so implicit
	// submission (Enter in a text input) triggers it.
	DefaultAction *actionView  `json:"defaultAction,omitempty"`
	Notice        string       `json:"notice,omitempty"`
	State         []stateEntry `json:"state"`
	BlurEndpoint  string       `json:"blurEndpoint,omitempty"`
	Stylesheet    string       `json:"stylesheet,omitempty"`
	Script        string       `json:"script,omitempty"`
	Theme         themeView    `json:"theme"`
}

type themeView struct {
	Name          string `json:"name,omitempty"`
	Variant       string `json:"variant,omitempty"`
	CSSVars       string `json:"cssVars,omitempty"`
	StylesheetURL string `json:"stylesheetURL,omitempty"`
}

type formView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Endpoint    string `json:"endpoint"`
	Method      string `json:"method"`
}

type fieldView struct {
	Path        string    `json:"path"`
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Input       string    `json:"input"`
	Placeholder string    `json:"placeholder,omitempty"`
	Help        string    `json:"help,omitempty"`
	Value       string    `json:"value"`
	Required    bool      `json:"required"`
	Disabled    bool      `json:"disabled"`
	Pattern     string    `json:"pattern,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
	List        bool      `json:"list"`
	Rows        []rowView `json:"rows,omitempty"`
	AddLabel    string    `json:"addLabel,omitempty"`
}

type rowView struct {
	ID        string   `json:"id"`
	DOMID     string   `json:"domId"`
	Path      string   `json:"path"`
	Value     string   `json:"value"`
	Label     string   `json:"label"`
	Removable bool     `json:"removable"`
	Errors    []string `json:"errors,omitempty"`
}

type actionView struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

type stateEntry struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func buildPage(form model.FormModel, opts render.RenderOptions) pageView {
	method := form.Method
	if method == "" {
		method = "POST"
	}
	page := pageView{
		Form: formView{
			ID:          form.ID,
			Title:       form.Title,
			Description: form.Description,
			Endpoint:    form.Endpoint,
			Method:      strings.ToLower(method),
		},
		Notice: opts.Notice,
		State:  stateEntries(opts.State),
	}
	for _, field := range form.Fields {
		page.Fields = append(page.Fields, fieldViews(field, opts)...)
	}
	for _, action := range form.Actions {
		view := actionView{
			Name:     action.Name,
			Label:    action.Label,
			Disabled: action.Type == "submit" && !opts.CanSubmit,
		}
		page.Actions = append(page.Actions, view)
		if action.Type == "submit" && page.DefaultAction == nil {
			page.DefaultAction = &view
		}
	}
	return page
}

func fieldViews(field model.Field, opts render.RenderOptions) []fieldView {
	switch {
	case len(field.Nested) > 0:
		var out []fieldView
		for _, nested := range field.Nested {
			out = append(out, fieldViews(nested, opts)...)
		}
		return out
	case field.Items != nil:
		return []fieldView{listView(field, opts)}
	default:
		return []fieldView{leafView(field, opts)}
	}
}

func leafView(field model.Field, opts render.RenderOptions) fieldView {
	input := field.Input
	if input == "" {
		input = "text"
	}
	label := field.Label
	if label == "" {
		label = field.Name
	}
	view := fieldView{
		Path:        field.Name,
		ID:          domID(field.Name),
		Label:       label,
		Input:       input,
		Placeholder: field.Placeholder,
		Help:        field.Description,
		Value:       opts.Values[field.Name],
		Required:    field.Required,
		Disabled:    opts.Disabled[field.Name],
		Errors:      opts.Errors[field.Name],
	}
	for _, rule := range field.Validations {
		if rule.Kind == model.ValidationRulePattern {
			view.Pattern = rule.Params["pattern"]
		}
	}
	return view
}

func listView(field model.Field, opts render.RenderOptions) fieldView {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	rowLabel := field.Items.Label
	if rowLabel == "" {
		rowLabel = label
	}
	addLabel := field.Metadata["addLabel"]
	if addLabel == "" {
		addLabel = "Add"
	}
	view := fieldView{
		Path:     field.Name,
		ID:       domID(field.Name),
		Label:    label,
		List:     true,
		AddLabel: addLabel,
	}
	for _, row := range opts.Rows[field.Name] {
		view.Rows = append(view.Rows, rowView{
			ID:        row.ID,
			DOMID:     domID(row.Path),
			Path:      row.Path,
			Value:     row.Value,
			Label:     rowLabel + " " + strconv.Itoa(row.Index+1),
			Removable: row.Removable,
			Errors:    row.Errors,
		})
	}
	return view
}

func stateEntries(state render.StateView) []stateEntry {
	return []stateEntry{
		{Label: "Status", Value: state.Status},
		{Label: "Dirty", Value: strconv.FormatBool(state.IsDirty)},
		{Label: "Valid", Value: strconv.FormatBool(state.IsValid)},
		{Label: "Submitted", Value: strconv.FormatBool(state.IsSubmitted)},
		{Label: "Submit successful", Value: strconv.FormatBool(state.IsSubmitSuccessful)},
		{Label: "Submit count", Value: strconv.Itoa(state.SubmitCount)},
		{Label: "Dirty fields", Value: strings.Join(state.DirtyFields, ", ")},
		{Label: "Touched fields", Value: strings.Join(state.TouchedFields, ", ")},
	}
}

func domID(path string) string {
	return "field-" + strings.ReplaceAll(path, ".", "-")
}
