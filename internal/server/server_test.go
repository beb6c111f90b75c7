package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/jsonview"
	"github.com/goliatone/go-formstate/pkg/renderers/vanilla"
	"github.com/goliatone/go-formstate/pkg/validation"
	"github.com/goliatone/go-formstate/pkg/youtubeform"
)

type recordingSink struct {
	mu        sync.Mutex
	submitted []model.ChannelForm
	rejected  []map[string]string
}

func (r *recordingSink) Submitted(_ context.Context, record model.ChannelForm) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, record)
	return nil
}

func (r *recordingSink) Rejected(_ context.Context, errs map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, errs)
}

func (r *recordingSink) Printed(context.Context, []string, []any) {}

func newTestServer(t *testing.T) (*httptest.Server, *youtubeform.Screen, *recordingSink) {
	t.Helper()
	checker := validation.EmailCheckerFunc(func(_ context.Context, email string) (bool, error) {
		return email != "Sincere@april.biz", nil
	})
	s := &recordingSink{}
	screen, err := youtubeform.New(checker, s, youtubeform.WithClock(func() time.Time {
		return time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}

	registry := render.NewRegistry()
	html, err := vanilla.New()
	if err != nil {
		t.Fatalf("vanilla: %v", err)
	}
	if err := registry.Register(html); err != nil {
		t.Fatalf("register vanilla: %v", err)
	}
	if err := registry.Register(jsonview.New()); err != nil {
		t.Fatalf("register json: %v", err)
	}

	srv, err := New(screen, registry)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, screen, s
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func post(t *testing.T, ts *httptest.Server, values url.Values) *http.Response {
	t.Helper()
	resp, err := noRedirectClient().PostForm(ts.URL+"/", values)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", resp.StatusCode)
	}
	return resp
}

func getDocument(t *testing.T, ts *httptest.Server) jsonview.Document {
	t.Helper()
	resp, err := http.Get(ts.URL + "/?format=json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var doc jsonview.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return doc
}

func getPage(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return buf.String()
}

func TestShow_RendersPage(t *testing.T) {
	ts, _, _ := newTestServer(t)
	page := getPage(t, ts)
	for _, want := range []string{"<h1>YouTube Form</h1>", `name="username"`, `value="submit" disabled`} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page", want)
		}
	}
}

func TestShow_UnknownFormat(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/?format=preact")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestSubmit_RefusedShowsErrors(t *testing.T) {
	ts, _, s := newTestServer(t)
	post(t, ts, url.Values{"channel": {"yt"}, "action": {"submit"}})

	doc := getDocument(t, ts)
	want := map[string][]string{
		"username": {youtubeform.MessageUsernameRequired},
		"age":      {youtubeform.MessageAgeRequired},
	}
	if diff := cmp.Diff(want, doc.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if doc.Notice != "Form has 2 error(s)" {
		t.Fatalf("notice = %q", doc.Notice)
	}
	if len(s.submitted) != 0 || len(s.rejected) != 1 {
		t.Fatalf("unexpected sink calls: %d submitted %d rejected", len(s.submitted), len(s.rejected))
	}

	// The notice is shown once.
	if doc := getDocument(t, ts); doc.Notice != "" {
		t.Fatalf("notice should be consumed, got %q", doc.Notice)
	}
}

func TestSubmit_AcceptedResetsForm(t *testing.T) {
	ts, _, s := newTestServer(t)
	post(t, ts, url.Values{
		"username":           {"<b>ada</b>"},
		"email":              {"ada@example.org"},
		"channel":            {"ada-codes"},
		"phNumbers.0.number": {"555-0101"},
		"age":                {"36"},
		"dob":                {"1988-12-10"},
		"action":             {"submit"},
	})

	if len(s.submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(s.submitted))
	}
	record := s.submitted[0]
	if record.Username != "ada" || record.Age != 36 || record.PhNumbers[0].Number != "555-0101" {
		t.Fatalf("unexpected record: %+v", record)
	}

	doc := getDocument(t, ts)
	if doc.Notice != "Form submitted" {
		t.Fatalf("notice = %q", doc.Notice)
	}
	if doc.Values["username"] != "" || doc.Values["age"] != "0" || doc.Values["dob"] != "2024-05-06" {
		t.Fatalf("values not reset: %v", doc.Values)
	}
	if doc.CanSubmit {
		t.Fatalf("reset form should not be submittable")
	}
}

func TestActions_AddAndRemoveRows(t *testing.T) {
	ts, screen, _ := newTestServer(t)
	post(t, ts, url.Values{"action": {"add"}})

	doc := getDocument(t, ts)
	rows := doc.Rows[model.PathPhoneRows]
	if len(rows) != 2 || rows[0].Removable || !rows[1].Removable {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	post(t, ts, url.Values{"remove": {rows[0].ID}})
	if doc := getDocument(t, ts); doc.Notice != "That phone number cannot be removed." {
		t.Fatalf("notice = %q", doc.Notice)
	}

	post(t, ts, url.Values{"remove": {rows[1].ID}})
	if screen.Phones().Len() != 1 {
		t.Fatalf("expected one row, got %d", screen.Phones().Len())
	}
}

func TestActions_PostedTextIsKeptAsTyped(t *testing.T) {
	ts, _, _ := newTestServer(t)
	post(t, ts, url.Values{"username": {"   "}, "action": {"trigger"}})

	doc := getDocument(t, ts)
	if doc.Values["username"] != "   " {
		t.Fatalf("username = %q, want three spaces", doc.Values["username"])
	}
	if doc.Notice != "Username is valid" {
		t.Fatalf("notice = %q", doc.Notice)
	}

	post(t, ts, url.Values{"username": {" <i>ada</i> "}, "action": {"trigger"}})
	if doc := getDocument(t, ts); doc.Values["username"] != " ada " {
		t.Fatalf("username = %q, want markup stripped and spaces kept", doc.Values["username"])
	}
}

func TestActions_UnknownAction(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := noRedirectClient().PostForm(ts.URL+"/", url.Values{"action": {"publish"}})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func blur(t *testing.T, ts *httptest.Server, path, value string) (int, map[string]any) {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"path": path, "value": value})
	resp, err := http.Post(ts.URL+"/fields/blur", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post blur: %v", err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.StatusCode, out
}

func TestBlur_ReportsFieldErrors(t *testing.T) {
	ts, _, _ := newTestServer(t)

	status, out := blur(t, ts, "email", "admin@example.com")
	if status != http.StatusOK {
		t.Fatalf("status = %d: %v", status, out)
	}
	if out["status"] != "invalid" {
		t.Fatalf("field status = %v", out["status"])
	}
	errs, _ := out["errors"].(map[string]any)
	if diff := cmp.Diff([]any{validation.MessageEmailReserved}, errs["email"]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{"social.twitter"}, out["disabled"]); diff != "" {
		t.Fatalf("disabled mismatch (-want +got):\n%s", diff)
	}
	if out["canSubmit"] != true {
		t.Fatalf("dirty form should be submittable")
	}

	status, out = blur(t, ts, "email", "Sincere@april.biz")
	errs, _ = out["errors"].(map[string]any)
	if status != http.StatusOK || cmp.Diff([]any{validation.MessageEmailTaken}, errs["email"]) != "" {
		t.Fatalf("expected taken email, got %d %v", status, out)
	}
}

func TestBlur_RejectsUnknownAndDisabledFields(t *testing.T) {
	ts, _, _ := newTestServer(t)

	if status, _ := blur(t, ts, "password", "x"); status != http.StatusBadRequest {
		t.Fatalf("unknown field status = %d", status)
	}
	if status, _ := blur(t, ts, "social.twitter", "@yt"); status != http.StatusConflict {
		t.Fatalf("disabled field status = %d", status)
	}

	resp, err := http.Post(ts.URL+"/fields/blur", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body status = %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestNew_RequiresDefaultRenderer(t *testing.T) {
	screen, err := youtubeform.New(nil, &recordingSink{})
	if err != nil {
		t.Fatalf("new screen: %v", err)
	}
	if _, err := New(screen, render.NewRegistry()); err == nil {
		t.Fatalf("expected missing renderer error")
	}
}
