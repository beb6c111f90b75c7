package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		" warn ":  zapcore.WarnLevel,
		"Error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNew_JSONFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.log")
	logger, closer, err := New(Options{Level: "warn", Format: "json", OutputPath: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info("dropped")
	logger.Warn("lookup failed", zap.String("field", "email"))
	_ = logger.Sync()
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Fatalf("info entry should be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, `"msg":"lookup failed"`) || !strings.Contains(out, `"field":"email"`) {
		t.Fatalf("expected JSON warn entry:\n%s", out)
	}
}

func TestNew_BadPath(t *testing.T) {
	if _, _, err := New(Options{OutputPath: filepath.Join(t.TempDir(), "missing", "dir", "x.log")}); err == nil {
		t.Fatalf("expected error for unwritable path")
	}
}
