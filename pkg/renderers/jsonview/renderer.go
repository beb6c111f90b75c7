// Package jsonview renders the form description and its current state as a
// JSON document for scripted clients.
package jsonview

import (
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
)

// Document is the payload written by Render.
type Document struct {
	Form      model.FormModel             `json:"form"`
	Values    map[string]string           `json:"values"`
	Errors    map[string][]string         `json:"errors,omitempty"`
	Disabled  []string                    `json:"disabled,omitempty"`
	Rows      map[string][]render.RowView `json:"rows,omitempty"`
	State     render.StateView            `json:"state"`
	CanSubmit bool                        `json:"canSubmit"`
	Notice    string                      `json:"notice,omitempty"`
}

// Renderer implements render.Renderer with JSON output.
type Renderer struct {
	indent bool
}

var _ render.Renderer = (*Renderer)(nil)

// Option configures the renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the output.
func WithIndent(indent bool) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// New constructs the renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := Document{
		Form:      form,
		Values:    opts.Values,
		Errors:    opts.Errors,
		Rows:      opts.Rows,
		State:     opts.State,
		CanSubmit: opts.CanSubmit,
		Notice:    opts.Notice,
	}
	for path, disabled := range opts.Disabled {
		if disabled {
			doc.Disabled = append(doc.Disabled, path)
		}
	}
	sort.Strings(doc.Disabled)

	var (
		out []byte
		err error
	)
	if r.indent {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview: encode: %w", err)
	}
	return out, nil
}
