package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/internal/config"
	"github.com/goliatone/go-formstate/internal/logger"
	"github.com/goliatone/go-formstate/internal/server"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/lookup"
	"github.com/goliatone/go-formstate/pkg/render"
	"github.com/goliatone/go-formstate/pkg/renderers/jsonview"
	"github.com/goliatone/go-formstate/pkg/renderers/tui"
	"github.com/goliatone/go-formstate/pkg/renderers/vanilla"
	"github.com/goliatone/go-formstate/pkg/sink"
	"github.com/goliatone/go-formstate/pkg/youtubeform"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var (
		uiFlag        = flag.String("ui", cfg.UI, "Surface to run: http or tui")
		addrFlag      = flag.String("addr", cfg.Addr, "HTTP listen address")
		modeFlag      = flag.String("mode", cfg.ValidationMode, "Validation mode: onBlur, onChange, onSubmit, onTouched")
		shutdownGrace = flag.Duration("grace", 5*time.Second, "Shutdown grace period")
	)
	flag.Parse()

	zlog, closer, err := logger.New(logger.Options{
		Level:       cfg.LoggerLevel,
		Format:      cfg.LoggerFormat,
		OutputPath:  cfg.LoggerOutputPath,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() {
		_ = zlog.Sync()
		_ = closer.Close()
	}()

	checker := lookup.New(
		lookup.WithBaseURL(cfg.LookupBaseURL),
		lookup.WithTimeout(cfg.LookupTimeout),
	)
	screen, err := youtubeform.New(checker, sink.NewLogger(zlog),
		youtubeform.WithMode(form.ParseMode(*modeFlag)),
		youtubeform.WithLogger(zlog),
	)
	if err != nil {
		zlog.Fatal("build screen", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch strings.ToLower(*uiFlag) {
	case "tui":
		err = runTUI(ctx, screen, tui.OutputFormat(cfg.TUIOutput))
	case "http":
		err = runHTTP(ctx, screen, zlog, *addrFlag, *shutdownGrace, themeConfig(cfg))
	default:
		err = fmt.Errorf("unknown ui %q", *uiFlag)
	}
	if err != nil && !errors.Is(err, tui.ErrAborted) {
		zlog.Error("exit", zap.Error(err))
		_ = zlog.Sync()
		os.Exit(1)
	}
}

func runTUI(ctx context.Context, screen *youtubeform.Screen, format tui.OutputFormat) error {
	session, err := tui.New(screen, tui.WithOutputFormat(format))
	if err != nil {
		return err
	}
	out, err := session.Render(ctx, screen.Model(), screen.RenderOptions(""))
	if err != nil {
		return err
	}
	if len(out) > 0 {
		fmt.Println(string(out))
	}
	return nil
}

func themeConfig(cfg config.Config) *theme.RendererConfig {
	if cfg.ThemeName == "" {
		return nil
	}
	out := &theme.RendererConfig{
		Theme:   cfg.ThemeName,
		Variant: cfg.ThemeVariant,
	}
	if cfg.ThemeBrand != "" {
		out.Tokens = map[string]string{"brand": cfg.ThemeBrand}
		out.CSSVars = map[string]string{"--brand": cfg.ThemeBrand}
	}
	return out
}

func runHTTP(ctx context.Context, screen *youtubeform.Screen, zlog *zap.Logger, addr string, grace time.Duration, themeCfg *theme.RendererConfig) error {
	registry := render.NewRegistry()
	html, err := vanilla.New(vanilla.WithTheme(themeCfg))
	if err != nil {
		return err
	}
	if err := registry.Register(html); err != nil {
		return err
	}
	if err := registry.Register(jsonview.New(jsonview.WithIndent(true))); err != nil {
		return err
	}

	srv, err := server.New(screen, registry, server.WithLogger(zlog))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	zlog.Info("listening",
		zap.String("addr", addr),
		zap.Strings("renderers", registry.List()),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
