package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/render"
	rendertemplate "github.com/goliatone/go-formstate/pkg/render/template"
	"github.com/goliatone/go-formstate/pkg/render/template/pongo"
)

// DefaultBlurEndpoint receives inline validation requests from the page.
const DefaultBlurEndpoint = "/fields/blur"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	blurEndpoint     string
	theme            *theme.RendererConfig
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithBlurEndpoint sets the URL the page posts focus-lost events to. An
// empty endpoint disables inline validation.
func WithBlurEndpoint(endpoint string) Option {
	return func(cfg *config) {
		cfg.blurEndpoint = endpoint
	}
}

// WithTheme applies a theme selection. CSS variables are emitted on :root and
// AssetURL, when set, resolves the "stylesheet" asset linked from the page.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// Renderer produces a complete HTML page for a form.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	blurEndpoint string
	stylesheet   string
	script       string
	theme        themeView
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:   TemplatesFS(),
		blurEndpoint: DefaultBlurEndpoint,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tpl"),
			pongo.WithGlobalData(map[string]any{"classes": chromeClasses()}),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:    renderer,
		blurEndpoint: cfg.blurEndpoint,
		stylesheet:   readAsset(StylesheetName),
		script:       readAsset(RuntimeScriptName),
		theme:        buildTheme(cfg.theme),
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page := buildPage(form, opts)
	page.BlurEndpoint = r.blurEndpoint
	page.Stylesheet = r.stylesheet
	page.Theme = r.theme
	if r.blurEndpoint != "" {
		page.Script = r.script
	}

	result, err := r.templates.RenderTemplate("page", page)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
