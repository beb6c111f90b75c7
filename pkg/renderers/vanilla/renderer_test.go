package vanilla_test

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/vanilla"
	"github.com/goliatone/go-formstate/pkg/sink"
	"github.com/goliatone/go-formstate/pkg/validation"
	"github.com/goliatone/go-formstate/pkg/youtubeform"
)

func sampleForm() model.FormModel {
	item := model.Field{Name: "phNumbers.*.number", Type: model.FieldTypeString, Label: "Phone number"}
	return model.FormModel{
		ID:       "sample",
		Title:    "Sample Form",
		Endpoint: "/",
		Method:   "POST",
		Fields: []model.Field{
			{Name: "username", Type: model.FieldTypeString, Label: "Username", Required: true},
			{
				Name: "social",
				Type: model.FieldTypeObject,
				Nested: []model.Field{
					{Name: "social.twitter", Type: model.FieldTypeString, Label: "Twitter"},
				},
			},
			{
				Name:     "phNumbers",
				Type:     model.FieldTypeArray,
				Label:    "List of phone numbers",
				Items:    &item,
				Metadata: map[string]string{"addLabel": "Add phone number"},
			},
		},
		Actions: []model.Action{
			{Name: "submit", Label: "Submit", Type: "submit"},
			{Name: "reset", Label: "Reset", Type: "button"},
		},
	}
}

func newRenderer(t *testing.T, opts ...vanilla.Option) *vanilla.Renderer {
	t.Helper()
	r, err := vanilla.New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderer_Contract(t *testing.T) {
	r := newRenderer(t)
	if r.Name() != "vanilla" {
		t.Fatalf("name = %q", r.Name())
	}
	if !strings.HasPrefix(r.ContentType(), "text/html") {
		t.Fatalf("content type = %q", r.ContentType())
	}
}

func TestRenderer_FieldsErrorsAndRows(t *testing.T) {
	r := newRenderer(t)
	opts := render.RenderOptions{
		Values:   map[string]string{"username": "<ada>", "social.twitter": ""},
		Errors:   map[string][]string{"username": {"Username is required!"}},
		Disabled: map[string]bool{"social.twitter": true},
		Rows: map[string][]render.RowView{
			"phNumbers": {
				{ID: "row-a", Index: 0, Path: "phNumbers.0.number", Value: "555"},
				{ID: "row-b", Index: 1, Path: "phNumbers.1.number", Removable: true, Errors: []string{"bad"}},
			},
		},
		Notice: "Form reset",
		State:  render.StateView{Status: "invalid", SubmitCount: 2},
	}

	out, err := r.Render(context.Background(), sampleForm(), opts)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`<title>Sample Form</title>`,
		`<label for="field-username">Username`,
		`name="username" value="&lt;ada&gt;"`,
		`Username is required!`,
		`id="field-social-twitter" name="social.twitter" value="" disabled`,
		`data-row-id="row-a"`,
		`name="phNumbers.0.number" value="555"`,
		`aria-label="Phone number 2"`,
		`<button type="submit" name="remove" value="row-b">Remove</button>`,
		`<button type="submit" name="action" value="add">Add phone number</button>`,
		`<button type="submit" name="action" value="submit" disabled>Submit</button>`,
		`<button type="submit" name="action" value="reset">Reset</button>`,
		`Form reset`,
		`<dt>Submit count</dt><dd>2</dd>`,
		`data-blur-endpoint="/fields/blur"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected output to contain %q\n%s", want, html)
		}
	}
	if strings.Contains(html, `value="row-a">Remove`) {
		t.Fatalf("first row must not offer a remove control")
	}
}

func TestRenderer_SubmitEnabledWhenAllowed(t *testing.T) {
	r := newRenderer(t, vanilla.WithBlurEndpoint(""))
	out, err := r.Render(context.Background(), sampleForm(), render.RenderOptions{CanSubmit: true})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, `<button type="submit" name="action" value="submit">Submit</button>`) {
		t.Fatalf("expected enabled submit button\n%s", html)
	}
	if strings.Contains(html, "data-blur-endpoint") || strings.Contains(html, "<script>") {
		t.Fatalf("inline validation should be disabled")
	}
}

func TestRenderer_Theme(t *testing.T) {
	r := newRenderer(t, vanilla.WithTheme(&theme.RendererConfig{
		Theme:   "acme",
		Variant: "dark",
		CSSVars: map[string]string{
			"--brand": "#123456",
			"--error": "#aa0000",
			"--bad":   "red;}</style>",
			"plain":   "ignored",
		},
		AssetURL: func(key string) string {
			return "/themes/acme/" + key + ".css"
		},
	}))
	out, err := r.Render(context.Background(), sampleForm(), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`data-theme="acme"`,
		`data-theme-variant="dark"`,
		`<style>:root { --brand: #123456; --error: #aa0000; }</style>`,
		`<link rel="stylesheet" href="/themes/acme/stylesheet.css">`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output\n%s", want, html)
		}
	}
	if strings.Contains(html, "ignored") || strings.Contains(html, "--bad") {
		t.Fatalf("unsafe or non-custom properties should be dropped\n%s", html)
	}
}

func TestRenderer_CancelledContext(t *testing.T) {
	r := newRenderer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Render(ctx, sampleForm(), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestRenderer_YouTubeScreen(t *testing.T) {
	checker := validation.EmailCheckerFunc(func(context.Context, string) (bool, error) { return true, nil })
	screen, err := youtubeform.New(checker, sink.NewLogger(nil), youtubeform.WithClock(func() time.Time {
		return time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}

	out, err := newRenderer(t).Render(context.Background(), screen.Model(), screen.RenderOptions(""))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	order := []string{
		`name="username"`,
		`name="email"`,
		`name="channel"`,
		`name="social.twitter"`,
		`name="social.facebook"`,
		`name="phoneNumbers.0"`,
		`name="phoneNumbers.1"`,
		`name="phNumbers.0.number"`,
		`type="number" id="field-age" name="age" value="0"`,
		`type="date" id="field-dob" name="dob" value="2024-05-06"`,
	}
	last := -1
	for _, want := range order {
		idx := strings.Index(html, want)
		if idx < 0 {
			t.Fatalf("expected output to contain %q\n%s", want, html)
		}
		if idx < last {
			t.Fatalf("%q rendered out of order", want)
		}
		last = idx
	}
	if !strings.Contains(html, `name="social.twitter" value="" disabled`) {
		t.Fatalf("twitter should render disabled while channel is empty")
	}
	if strings.Contains(html, `name="remove"`) {
		t.Fatalf("single phone row must not offer a remove control")
	}
	for _, label := range []string{"Print values", "Set values", "Trigger", "Add phone number"} {
		if !strings.Contains(html, ">"+label+"</button>") {
			t.Fatalf("missing %q button", label)
		}
	}
}

var firstSubmitButton = regexp.MustCompile(`<button type="submit"[^>]*>`)

func TestRenderer_EnterSubmitsTheForm(t *testing.T) {
	checker := validation.EmailCheckerFunc(func(context.Context, string) (bool, error) { return true, nil })
	screen, err := youtubeform.New(checker, sink.NewLogger(nil))
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	r := newRenderer(t)

	firstButton := func() string {
		t.Helper()
		out, err := r.Render(context.Background(), screen.Model(), screen.RenderOptions(""))
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		form := string(out)[strings.Index(string(out), "<form"):]
		return firstSubmitButton.FindString(form)
	}

	if got := firstButton(); !strings.Contains(got, `name="action" value="submit" disabled`) {
		t.Fatalf("first submit button = %s, want the disabled submit action", got)
	}

	if _, err := screen.AddPhone(); err != nil {
		t.Fatalf("add phone: %v", err)
	}
	got := firstButton()
	if !strings.Contains(got, `name="action" value="submit"`) || strings.Contains(got, "disabled") {
		t.Fatalf("first submit button = %s, want the enabled submit action", got)
	}
}
