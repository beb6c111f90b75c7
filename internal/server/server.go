// Package server exposes the form screen over HTTP: a server-rendered page
// with post/redirect/get actions plus a JSON endpoint for inline validation.
package server

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/youtubeform"
)

// DefaultRenderer is used when the request does not ask for a format.
const DefaultRenderer = "vanilla"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultRenderer selects the renderer used for GET / without ?format.
func WithDefaultRenderer(name string) Option {
	return func(s *Server) {
		if name = strings.TrimSpace(name); name != "" {
			s.defaultRenderer = name
		}
	}
}

// Server serves one shared form screen.
type Server struct {
	screen          *youtubeform.Screen
	renderers       *render.Registry
	defaultRenderer string
	policy          *bluemonday.Policy
	logger          *zap.Logger

	// mu serialises posted actions so a post applies its values and its
	// action without interleaving with another post.
	mu     sync.Mutex
	notice string
}

// New builds a server. The registry must hold the default renderer.
func New(screen *youtubeform.Screen, renderers *render.Registry, options ...Option) (*Server, error) {
	if screen == nil {
		return nil, errors.New("server: screen is required")
	}
	if renderers == nil {
		return nil, errors.New("server: renderer registry is required")
	}
	s := &Server{
		screen:          screen,
		renderers:       renderers,
		defaultRenderer: DefaultRenderer,
		policy:          bluemonday.StrictPolicy(),
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if _, err := renderers.Get(s.defaultRenderer); err != nil {
		return nil, fmt.Errorf("server: default renderer: %w", err)
	}
	s.logger = s.logger.Named("server")
	return s, nil
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleShow)
	mux.HandleFunc("POST /{$}", s.handleAction)
	mux.HandleFunc("POST /fields/blur", s.handleBlur)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s.logRequests(mux)
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("format"))
	if name == "" {
		name = s.defaultRenderer
	}
	renderer, err := s.renderers.Get(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.mu.Lock()
	notice := s.notice
	s.notice = ""
	s.mu.Unlock()

	out, err := renderer.Render(r.Context(), s.screen.Model(), s.screen.RenderOptions(notice))
	if err != nil {
		s.logger.Error("render failed", zap.String("renderer", name), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	_, _ = w.Write(out)
}

// handleAction applies the posted values, runs the pressed button and
// redirects back to the page.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.applyValues(r); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("apply values failed", zap.Error(err))
		http.Error(w, "could not apply values", http.StatusInternalServerError)
		return
	}

	action := strings.TrimSpace(r.PostForm.Get("action"))
	row := strings.TrimSpace(r.PostForm.Get("remove"))
	if row != "" {
		action = youtubeform.ActionRemove
	}

	if action != "" {
		out, err := s.screen.Dispatch(ctx, action, row)
		switch {
		case errors.Is(err, youtubeform.ErrUnknownAction):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, youtubeform.ErrFirstRow), errors.Is(err, form.ErrLastRow), errors.Is(err, form.ErrRowNotFound):
			s.notice = "That phone number cannot be removed."
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("action failed", zap.String("action", action), zap.Error(err))
			http.Error(w, "action failed", http.StatusInternalServerError)
			return
		default:
			s.notice = out.Notice
		}
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// applyValues stores every posted field whose value differs from the current
// one, as a change followed by a blur. Disabled inputs are not posted by
// browsers; a stale post for one is ignored.
func (s *Server) applyValues(r *http.Request) error {
	ctx := r.Context()
	current := s.screen.RenderOptions("").Values
	for _, path := range s.screen.Form().Paths() {
		posted, ok := r.PostForm[path]
		if !ok || len(posted) == 0 {
			continue
		}
		value := s.clean(posted[0])
		if value == current[path] {
			continue
		}
		if err := s.screen.Change(ctx, path, value); err != nil {
			if errors.Is(err, form.ErrFieldDisabled) || errors.Is(err, form.ErrUnknownField) {
				continue
			}
			return err
		}
		if err := s.screen.Blur(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

type blurRequest struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

type blurResponse struct {
	Path      string              `json:"path"`
	Status    string              `json:"status"`
	Errors    map[string][]string `json:"errors"`
	Fields    []string            `json:"fields"`
	Disabled  []string            `json:"disabled"`
	CanSubmit bool                `json:"canSubmit"`
}

func (s *Server) handleBlur(w http.ResponseWriter, r *http.Request) {
	var req blurRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	ctx := r.Context()
	path := strings.TrimSpace(req.Path)

	err := s.screen.Change(ctx, path, s.clean(req.Value))
	if err == nil {
		err = s.screen.Blur(ctx, path)
	}
	switch {
	case errors.Is(err, form.ErrUnknownField):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	case errors.Is(err, form.ErrFieldDisabled):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	case err != nil:
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("blur failed", zap.String("field", path), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "validation failed"})
		return
	}

	opts := s.screen.RenderOptions("")
	resp := blurResponse{
		Path:      path,
		Status:    string(s.screen.Form().FieldStatus(path)),
		Errors:    opts.Errors,
		Fields:    s.screen.Form().Paths(),
		Disabled:  []string{},
		CanSubmit: opts.CanSubmit,
	}
	if resp.Errors == nil {
		resp.Errors = map[string][]string{}
	}
	for disabled := range opts.Disabled {
		resp.Disabled = append(resp.Disabled, disabled)
	}
	sort.Strings(resp.Disabled)
	writeJSON(w, http.StatusOK, resp)
}

// clean strips markup from user text. The strict policy escapes entities,
// which would double-encode on render, so they are unescaped again.
func (s *Server) clean(value string) string {
	return html.UnescapeString(s.policy.Sanitize(value))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
