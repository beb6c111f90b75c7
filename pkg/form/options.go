package form

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// Mode selects which input events run validation.
type Mode string

const (
	ModeOnBlur    Mode = "onBlur"
	ModeOnChange  Mode = "onChange"
	ModeOnSubmit  Mode = "onSubmit"
	ModeOnTouched Mode = "onTouched"
)

// ParseMode maps a configuration string onto a Mode, falling back to
// ModeOnBlur for unknown values.
func ParseMode(raw string) Mode {
	switch Mode(raw) {
	case ModeOnChange, ModeOnSubmit, ModeOnTouched:
		return Mode(raw)
	default:
		return ModeOnBlur
	}
}

// ValueKind controls how raw input text is converted before it is stored.
type ValueKind int

const (
	// ValueText stores the raw string.
	ValueText ValueKind = iota
	// ValueNumber stores an int; unparsable input stores 0.
	ValueNumber
	// ValueDate stores a time.Time parsed from YYYY-MM-DD; empty input stores
	// the zero time.
	ValueDate
)

// Option configures a Form.
type Option func(*Form)

// WithMode sets the validation mode used before the first submission.
func WithMode(mode Mode) Option {
	return func(f *Form) {
		if mode != "" {
			f.mode = mode
		}
	}
}

// WithReValidateMode sets the validation mode used after a submission.
// Only ModeOnChange and ModeOnBlur are meaningful here.
func WithReValidateMode(mode Mode) Option {
	return func(f *Form) {
		if mode != "" {
			f.reValidateMode = mode
		}
	}
}

// WithLogger attaches a logger for validation diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(f *Form) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithKeyGenerator overrides the row key generator (uuid.NewString).
func WithKeyGenerator(fn func() string) Option {
	return func(f *Form) {
		if fn != nil {
			f.newKey = fn
		}
	}
}

// WithLocation sets the location date inputs are parsed in.
func WithLocation(loc *time.Location) Option {
	return func(f *Form) {
		if loc != nil {
			f.location = loc
		}
	}
}

func defaultKeyGenerator() string {
	return uuid.NewString()
}

// FieldOption configures a registered field.
type FieldOption func(*registration)

// Rules attaches the validation rules of the field.
func Rules(set validation.Set) FieldOption {
	return func(r *registration) {
		r.rules = set
	}
}

// ValueAs selects the conversion applied to raw input.
func ValueAs(kind ValueKind) FieldOption {
	return func(r *registration) {
		r.valueAs = kind
	}
}

// DisabledWhen disables the field while fn reports true. Disabled fields
// skip validation and are left out of submitted values.
func DisabledWhen(fn func(values ValueTree) bool) FieldOption {
	return func(r *registration) {
		r.disabledWhen = fn
	}
}

// SetValueOptions mirrors the side effects a programmatic update may carry.
type SetValueOptions struct {
	ShouldValidate bool
	ShouldDirty    bool
	ShouldTouch    bool
}
