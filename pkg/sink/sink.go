// Package sink receives the outcome of form submissions.
package sink

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/model"
)

// Sink is notified once per submission attempt.
type Sink interface {
	Submitted(ctx context.Context, record model.ChannelForm) error
	Rejected(ctx context.Context, errs map[string]string)
	Printed(ctx context.Context, paths []string, values []any)
}

// Logger writes submissions to a zap logger.
type Logger struct {
	logger *zap.Logger
}

// NewLogger returns a sink backed by logger; nil falls back to a no-op logger.
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{logger: logger.Named("sink")}
}

// Submitted logs the accepted record.
func (l *Logger) Submitted(_ context.Context, record model.ChannelForm) error {
	phones := make([]string, 0, len(record.PhNumbers))
	for _, row := range record.PhNumbers {
		phones = append(phones, row.Number)
	}
	l.logger.Info("form submitted",
		zap.String("username", record.Username),
		zap.String("email", record.Email),
		zap.String("channel", record.Channel),
		zap.String("twitter", record.Social.Twitter),
		zap.String("facebook", record.Social.Facebook),
		zap.Strings("phoneNumbers", record.PhoneNumbers[:]),
		zap.Strings("phNumbers", phones),
		zap.Int("age", record.Age),
		zap.Time("dob", record.DOB),
	)
	return nil
}

// Rejected logs the field errors of a refused submission.
func (l *Logger) Rejected(_ context.Context, errs map[string]string) {
	fields := make([]zap.Field, 0, len(errs))
	for _, path := range sortedKeys(errs) {
		fields = append(fields, zap.String(path, errs[path]))
	}
	l.logger.Warn("form rejected",
		zap.Int("errorCount", len(errs)),
		zap.Dict("errors", fields...),
	)
}

// Printed logs a values snapshot requested by the user.
func (l *Logger) Printed(_ context.Context, paths []string, values []any) {
	fields := make([]zap.Field, 0, len(paths))
	for i, path := range paths {
		var value any
		if i < len(values) {
			value = values[i]
		}
		fields = append(fields, zap.Any(path, value))
	}
	l.logger.Info("form values", zap.Dict("values", fields...))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
