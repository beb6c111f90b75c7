package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/youtubeform"
)

// Controller is the form the terminal session edits.
type Controller interface {
	RenderOptions(notice string) render.RenderOptions
	Change(ctx context.Context, path, raw string) error
	Blur(ctx context.Context, path string) error
	Dispatch(ctx context.Context, action, row string) (youtubeform.Outcome, error)
}

// Menu entries that are not form actions.
const (
	menuEdit   = "Edit fields"
	menuAdd    = "Add phone number"
	menuRemove = "Remove phone number"
	menuQuit   = "Quit"
)

// Renderer implements render.Renderer for terminal-driven sessions: every
// answer is applied as a change followed by a blur, and the action menu
// mirrors the buttons of the HTML page.
type Renderer struct {
	ctrl         Controller
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(ctrl Controller, options ...Option) (*Renderer, error) {
	if ctrl == nil {
		return nil, ErrControllerMissing
	}
	r := &Renderer{
		ctrl:         ctrl,
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
		theme:        Theme{ErrorPrefix: "✗ "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Render runs an interactive session over form. It returns the serialized
// record once a submission is accepted, or nil output when the user quits.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := r.info(ctx, opts.Notice); err != nil {
		return nil, err
	}
	if err := r.editFields(ctx, form); err != nil {
		return nil, err
	}

	menu := r.menu(form)
	for {
		choice, err := r.driver.Select(ctx, SelectConfig{
			Message: form.Title,
			Options: menu.labels,
		})
		if err != nil {
			return nil, err
		}
		if choice < 0 || choice >= len(menu.labels) {
			continue
		}

		switch entry := menu.entries[choice]; entry {
		case menuQuit:
			return nil, nil
		case menuEdit:
			err = r.editFields(ctx, form)
		case menuRemove:
			err = r.removeRow(ctx)
		default:
			var record *model.ChannelForm
			record, err = r.dispatch(ctx, entry)
			if err == nil && record != nil {
				return r.encode(*record)
			}
		}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrAborted) {
				return nil, err
			}
			if infoErr := r.failure(ctx, err.Error()); infoErr != nil {
				return nil, infoErr
			}
		}
	}
}

type menuItems struct {
	labels  []string
	entries []string
}

func (r *Renderer) menu(form model.FormModel) menuItems {
	var m menuItems
	add := func(label, entry string) {
		m.labels = append(m.labels, label)
		m.entries = append(m.entries, entry)
	}
	for _, action := range form.Actions {
		add(action.Label, action.Name)
	}
	add(menuEdit, menuEdit)
	add(menuAdd, youtubeform.ActionAdd)
	add(menuRemove, menuRemove)
	add(menuQuit, menuQuit)
	return m
}

// dispatch runs a form action and returns the record of an accepted
// submission.
func (r *Renderer) dispatch(ctx context.Context, action string) (*model.ChannelForm, error) {
	if action == youtubeform.ActionSubmit && !r.ctrl.RenderOptions("").CanSubmit {
		return nil, r.info(ctx, "Nothing to submit yet: change a field first.")
	}
	out, err := r.ctrl.Dispatch(ctx, action, "")
	if err != nil {
		return nil, err
	}
	if err := r.info(ctx, out.Notice); err != nil {
		return nil, err
	}
	if out.Submit == nil {
		return nil, nil
	}
	if out.Submit.Accepted {
		return &out.Submit.Record, nil
	}
	paths := make([]string, 0, len(out.Submit.Errors))
	for path := range out.Submit.Errors {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := r.failure(ctx, fmt.Sprintf("%s: %s", path, out.Submit.Errors[path])); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (r *Renderer) editFields(ctx context.Context, form model.FormModel) error {
	for _, field := range form.Fields {
		if err := r.editField(ctx, field); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) editField(ctx context.Context, field model.Field) error {
	switch {
	case len(field.Nested) > 0:
		for _, nested := range field.Nested {
			if err := r.editField(ctx, nested); err != nil {
				return err
			}
		}
		return nil
	case field.Items != nil:
		return r.editRows(ctx, field)
	}

	label := labelOf(field)
	if r.ctrl.RenderOptions("").Disabled[field.Name] {
		return r.info(ctx, fmt.Sprintf("%s is disabled.", label))
	}
	return r.prompt(ctx, field.Name, label, field.Description)
}

func (r *Renderer) editRows(ctx context.Context, field model.Field) error {
	label := labelOf(*field.Items)
	for i := 0; ; i++ {
		rows := r.ctrl.RenderOptions("").Rows[field.Name]
		if i >= len(rows) {
			more, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: fmt.Sprintf("Add another %s?", strings.ToLower(label)),
			})
			if err != nil || !more {
				return err
			}
			if _, err := r.ctrl.Dispatch(ctx, youtubeform.ActionAdd, ""); err != nil {
				return err
			}
			continue
		}
		if err := r.prompt(ctx, rows[i].Path, fmt.Sprintf("%s %d", label, i+1), ""); err != nil {
			return err
		}
	}
}

// prompt asks for one value until it validates or the user gives up on it.
func (r *Renderer) prompt(ctx context.Context, path, label, help string) error {
	for {
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: label,
			Default: r.ctrl.RenderOptions("").Values[path],
			Help:    help,
		})
		if err != nil {
			return err
		}
		if err := r.ctrl.Change(ctx, path, answer); err != nil {
			return err
		}
		if err := r.ctrl.Blur(ctx, path); err != nil {
			return err
		}

		messages := r.ctrl.RenderOptions("").Errors[path]
		if len(messages) == 0 {
			return nil
		}
		if err := r.failure(ctx, fmt.Sprintf("Invalid %s: %s", label, strings.Join(messages, " "))); err != nil {
			return err
		}
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
		if err != nil {
			return err
		}
		if !retry {
			return nil
		}
	}
}

func (r *Renderer) removeRow(ctx context.Context) error {
	var (
		labels []string
		ids    []string
	)
	for _, rows := range r.ctrl.RenderOptions("").Rows {
		for _, row := range rows {
			if !row.Removable {
				continue
			}
			value := row.Value
			if value == "" {
				value = "(empty)"
			}
			labels = append(labels, fmt.Sprintf("#%d %s", row.Index+1, value))
			ids = append(ids, row.ID)
		}
	}
	if len(ids) == 0 {
		return r.info(ctx, "The first phone number cannot be removed.")
	}
	choice, err := r.driver.Select(ctx, SelectConfig{Message: menuRemove, Options: labels})
	if err != nil {
		return err
	}
	if choice < 0 || choice >= len(ids) {
		return nil
	}
	out, err := r.ctrl.Dispatch(ctx, youtubeform.ActionRemove, ids[choice])
	if err != nil {
		return err
	}
	return r.info(ctx, out.Notice)
}

func (r *Renderer) encode(record model.ChannelForm) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		var b strings.Builder
		fmt.Fprintf(&b, "Username: %s\n", record.Username)
		fmt.Fprintf(&b, "Email: %s\n", record.Email)
		fmt.Fprintf(&b, "Channel: %s\n", record.Channel)
		fmt.Fprintf(&b, "Twitter: %s\n", record.Social.Twitter)
		fmt.Fprintf(&b, "Facebook: %s\n", record.Social.Facebook)
		fmt.Fprintf(&b, "Phone numbers: %s\n", strings.Join(record.PhoneNumbers[:], ", "))
		numbers := make([]string, 0, len(record.PhNumbers))
		for _, row := range record.PhNumbers {
			numbers = append(numbers, row.Number)
		}
		fmt.Fprintf(&b, "List of phone numbers: %s\n", strings.Join(numbers, ", "))
		fmt.Fprintf(&b, "Age: %d\n", record.Age)
		fmt.Fprintf(&b, "Date of birth: %s\n", record.DOB.Format(model.DateLayout))
		return []byte(b.String()), nil
	}
	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode record: %w", err)
	}
	return out, nil
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) failure(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func labelOf(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}
