// Package logger builds the process zap logger from configuration.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options mirror the logging settings of the configuration.
type Options struct {
	Level       string
	Format      string // json, text
	OutputPath  string // stdout, stderr or a file path
	Development bool
}

// New builds a logger. The returned closer releases the output file, if any.
func New(opts Options) (*zap.Logger, io.Closer, error) {
	ws, closer, err := buildWriteSyncer(opts.OutputPath)
	if err != nil {
		return nil, nil, err
	}
	core := zapcore.NewCore(buildEncoder(opts), ws, zap.NewAtomicLevelAt(ParseLevel(opts.Level)))
	logger := zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	return logger, closer, nil
}

func buildEncoder(opts Options) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	if opts.Development || strings.EqualFold(opts.Format, "text") {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func buildWriteSyncer(path string) (zapcore.WriteSyncer, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(path)) {
	case "", "stdout":
		return zapcore.AddSync(os.Stdout), nopCloser{}, nil
	case "stderr":
		return zapcore.AddSync(os.Stderr), nopCloser{}, nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return zapcore.AddSync(file), file, nil
}

// ParseLevel maps a level name onto a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "INFO":
		return zapcore.InfoLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
