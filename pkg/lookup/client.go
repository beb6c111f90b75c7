// Package lookup checks whether an email address is already used by an
// account on a JSONPlaceholder-compatible users endpoint.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DefaultBaseURL points at the public placeholder API.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// ErrLookupFailed wraps every transport, status or decoding failure.
var ErrLookupFailed = errors.New("lookup: email lookup failed")

// Option configures the client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(base), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithHTTPClient swaps the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every lookup. Zero disables the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// Client queries {base}/users?email=... and treats an empty result array as
// "available".
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New constructs a client with defaults applied.
func New(options ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		timeout:    5 * time.Second,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// EmailAvailable reports whether no user with email exists.
func (c *Client) EmailAvailable(ctx context.Context, email string) (bool, error) {
	users, err := c.usersByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return len(users) == 0, nil
}

func (c *Client) usersByEmail(ctx context.Context, email string) ([]json.RawMessage, error) {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	endpoint := c.baseURL + "/users?" + url.Values{"email": {email}}.Encode()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status %s", ErrLookupFailed, resp.Status)
	}

	var users []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrLookupFailed, err)
	}
	return users, nil
}
