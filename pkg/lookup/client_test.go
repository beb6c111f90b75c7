package lookup_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-formstate/pkg/lookup"
)

func newUsersServer(t *testing.T, handler func(email string) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		status, body := handler(r.URL.Query().Get("email"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmailAvailable(t *testing.T) {
	srv := newUsersServer(t, func(email string) (int, string) {
		if email == "Sincere@april.biz" {
			return http.StatusOK, `[{"id":1,"email":"Sincere@april.biz"}]`
		}
		return http.StatusOK, `[]`
	})
	client := lookup.New(lookup.WithBaseURL(srv.URL + "/"))

	available, err := client.EmailAvailable(context.Background(), "fresh@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !available {
		t.Fatalf("expected fresh address to be available")
	}

	available, err = client.EmailAvailable(context.Background(), "Sincere@april.biz")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if available {
		t.Fatalf("expected existing address to be taken")
	}
}

func TestEmailAvailable_QueryEscapesEmail(t *testing.T) {
	var got string
	srv := newUsersServer(t, func(email string) (int, string) {
		got = email
		return http.StatusOK, `[]`
	})
	client := lookup.New(lookup.WithBaseURL(srv.URL))

	if _, err := client.EmailAvailable(context.Background(), "a+b&c@example.com"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != "a+b&c@example.com" {
		t.Fatalf("server saw %q", got)
	}
}

func TestEmailAvailable_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "status", status: http.StatusInternalServerError, body: `oops`},
		{name: "decode", status: http.StatusOK, body: `{"not":"an array"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newUsersServer(t, func(string) (int, string) { return tc.status, tc.body })
			client := lookup.New(lookup.WithBaseURL(srv.URL))

			_, err := client.EmailAvailable(context.Background(), "x@example.com")
			if !errors.Is(err, lookup.ErrLookupFailed) {
				t.Fatalf("expected ErrLookupFailed, got %v", err)
			}
		})
	}
}

func TestEmailAvailable_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := lookup.New(lookup.WithBaseURL(srv.URL), lookup.WithTimeout(20*time.Millisecond))
	_, err := client.EmailAvailable(context.Background(), "slow@example.com")
	if !errors.Is(err, lookup.ErrLookupFailed) {
		t.Fatalf("expected ErrLookupFailed, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded in chain, got %v", err)
	}
}
