// Package config reads the runtime settings from the environment, optionally
// seeded by a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Addr        string `env:"FORM_ADDR" envDefault:":8080"`
	UI          string `env:"FORM_UI" envDefault:"http"` // http, tui
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Form behaviour
	ValidationMode string `env:"FORM_VALIDATION_MODE" envDefault:"onBlur"` // onBlur, onChange, onSubmit, onTouched
	TUIOutput      string `env:"FORM_TUI_OUTPUT" envDefault:"json"`        // json, pretty

	// Page theme; an empty name keeps the built-in look.
	ThemeName    string `env:"FORM_THEME"`
	ThemeVariant string `env:"FORM_THEME_VARIANT"`
	ThemeBrand   string `env:"FORM_THEME_BRAND"`

	// Email lookup
	LookupBaseURL string        `env:"LOOKUP_BASE_URL" envDefault:"https://jsonplaceholder.typicode.com"`
	LookupTimeout time.Duration `env:"LOOKUP_TIMEOUT" envDefault:"5s"`

	// Logging
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`
}

// Load reads the given dotenv files (".env" when none are named; missing
// files are skipped) and parses the environment into a Config. Variables
// already set in the environment win over dotenv values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the binary cannot act on.
func (c Config) Validate() error {
	switch strings.ToLower(c.UI) {
	case "http", "tui":
	default:
		return fmt.Errorf("config: FORM_UI must be http or tui, got %q", c.UI)
	}
	switch c.ValidationMode {
	case "onBlur", "onChange", "onSubmit", "onTouched":
	default:
		return fmt.Errorf("config: unknown FORM_VALIDATION_MODE %q", c.ValidationMode)
	}
	switch c.TUIOutput {
	case "json", "pretty":
	default:
		return fmt.Errorf("config: FORM_TUI_OUTPUT must be json or pretty, got %q", c.TUIOutput)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("config: LOOKUP_TIMEOUT must be positive")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}
