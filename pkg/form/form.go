package form

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/validation"
)

type registration struct {
	pattern      string
	segments     []string
	rules        validation.Set
	valueAs      ValueKind
	disabledWhen func(ValueTree) bool
}

func (r *registration) wildcard() (prefix, suffix string, ok bool) {
	for i, segment := range r.segments {
		if segment == "*" {
			return strings.Join(r.segments[:i], "."), strings.Join(r.segments[i+1:], "."), true
		}
	}
	return "", "", false
}

type fieldMeta struct {
	touched   bool
	dirty     bool
	validated bool
	message   string
	seq       uint64
}

// Form owns the values, per-field bookkeeping and submission state of one
// form instance.
type Form struct {
	mu sync.Mutex

	mode           Mode
	reValidateMode Mode
	logger         *zap.Logger
	newKey         func() string
	location       *time.Location

	defaults map[string]any
	values   map[string]any
	regs     []*registration
	meta     map[string]*fieldMeta
	rowKeys  map[string][]string
	seq      uint64

	submitting       bool
	submitted        bool
	submitSuccessful bool
	submitCount      int
}

// New creates a form seeded with defaults. The defaults tree is copied.
func New(defaults map[string]any, options ...Option) *Form {
	f := &Form{
		mode:           ModeOnBlur,
		reValidateMode: ModeOnChange,
		logger:         zap.NewNop(),
		newKey:         defaultKeyGenerator,
		location:       time.Local,
		defaults:       copyTree(defaults),
		meta:           make(map[string]*fieldMeta),
		rowKeys:        make(map[string][]string),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	f.values = copyTree(f.defaults)
	return f
}

// Register declares a field. Registering the same path twice replaces the
// earlier registration.
func (f *Form) Register(path string, options ...FieldOption) {
	reg := &registration{
		pattern:  strings.TrimSpace(path),
		segments: splitPath(strings.TrimSpace(path)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(reg)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.regs {
		if existing.pattern == reg.pattern {
			f.regs[i] = reg
			return
		}
	}
	f.regs = append(f.regs, reg)
}

// Change records a user input event: raw is converted per the field's value
// kind, stored, and validated when the current mode asks for it.
func (f *Form) Change(ctx context.Context, path, raw string) error {
	f.mu.Lock()
	reg, err := f.lookupLocked(path)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	if f.disabledLocked(reg) {
		f.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrFieldDisabled, path)
	}

	value, convErr := coerce(raw, reg.valueAs, f.location)
	if convErr != nil {
		f.logger.Debug("input conversion failed",
			zap.String("field", path),
			zap.Error(convErr),
		)
	}
	if err := f.writeLocked(path, value); err != nil {
		f.mu.Unlock()
		return err
	}
	meta := f.metaLocked(path)
	meta.dirty = !f.matchesDefaultLocked(path, value)
	mode := f.activeModeLocked()
	validate := mode == ModeOnChange || (mode == ModeOnTouched && meta.touched)
	f.mu.Unlock()

	if validate {
		_, err := f.validateField(ctx, path)
		return err
	}
	return nil
}

// Blur records that a field lost focus: it becomes touched and is validated
// when the active mode is onBlur or onTouched.
func (f *Form) Blur(ctx context.Context, path string) error {
	f.mu.Lock()
	if _, err := f.lookupLocked(path); err != nil {
		f.mu.Unlock()
		return err
	}
	f.metaLocked(path).touched = true
	mode := f.activeModeLocked()
	validate := mode == ModeOnBlur || mode == ModeOnTouched
	f.mu.Unlock()

	if validate {
		_, err := f.validateField(ctx, path)
		return err
	}
	return nil
}

// SetValue updates a field programmatically.
func (f *Form) SetValue(ctx context.Context, path string, value any, opts SetValueOptions) error {
	f.mu.Lock()
	if _, err := f.lookupLocked(path); err != nil {
		f.mu.Unlock()
		return err
	}
	if err := f.writeLocked(path, deepCopy(value)); err != nil {
		f.mu.Unlock()
		return err
	}
	meta := f.metaLocked(path)
	if opts.ShouldDirty {
		meta.dirty = !f.matchesDefaultLocked(path, value)
	}
	if opts.ShouldTouch {
		meta.touched = true
	}
	f.mu.Unlock()

	if opts.ShouldValidate {
		_, err := f.validateField(ctx, path)
		return err
	}
	return nil
}

// GetValue returns a copy of the value stored at path.
func (f *Form) GetValue(path string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := getPath(f.values, path)
	return deepCopy(value), ok
}

// GetValues returns copies of the values at paths, in order. Missing paths
// yield nil entries.
func (f *Form) GetValues(paths ...string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(paths))
	for i, path := range paths {
		value, _ := getPath(f.values, path)
		out[i] = deepCopy(value)
	}
	return out
}

// Values returns a deep copy of the whole value tree.
func (f *Form) Values() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyTree(f.values)
}

// Defaults returns a deep copy of the default value tree.
func (f *Form) Defaults() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyTree(f.defaults)
}

// IsDisabled reports whether the field at path is currently disabled.
func (f *Form) IsDisabled(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, err := f.lookupLocked(path)
	if err != nil {
		return false
	}
	return f.disabledLocked(reg)
}

// Reset restores default values, drops all field bookkeeping, regenerates
// row keys and clears submission state.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = copyTree(f.defaults)
	f.meta = make(map[string]*fieldMeta)
	f.rowKeys = make(map[string][]string)
	f.submitting = false
	f.submitted = false
	f.submitSuccessful = false
	f.submitCount = 0
}

// Paths lists the concrete paths of every registered field in registration
// order, expanding array rows.
func (f *Form) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pathsLocked(false)
}

func (f *Form) pathsLocked(enabledOnly bool) []string {
	var out []string
	for _, reg := range f.regs {
		if enabledOnly && f.disabledLocked(reg) {
			continue
		}
		prefix, suffix, ok := reg.wildcard()
		if !ok {
			out = append(out, reg.pattern)
			continue
		}
		rows, _ := getPath(f.values, prefix)
		list, _ := rows.([]any)
		for i := range list {
			path := prefix + "." + strconv.Itoa(i)
			if suffix != "" {
				path += "." + suffix
			}
			out = append(out, path)
		}
	}
	return out
}

func (f *Form) lookupLocked(path string) (*registration, error) {
	segments := splitPath(path)
	for _, reg := range f.regs {
		if !matchPattern(reg.segments, segments) {
			continue
		}
		if _, ok := getPath(f.values, path); !ok {
			break
		}
		return reg, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, path)
}

func (f *Form) disabledLocked(reg *registration) bool {
	if reg == nil || reg.disabledWhen == nil {
		return false
	}
	return reg.disabledWhen(ValueTree(f.values))
}

func (f *Form) writeLocked(path string, value any) error {
	if err := setPath(f.values, path, value); err != nil {
		return err
	}
	f.metaLocked(path).seq = f.nextSeqLocked()
	return nil
}

func (f *Form) metaLocked(path string) *fieldMeta {
	meta, ok := f.meta[path]
	if !ok {
		meta = &fieldMeta{seq: f.nextSeqLocked()}
		f.meta[path] = meta
	}
	return meta
}

// activeModeLocked returns the mode input events follow: the re-validate
// mode replaces the initial one once the form has been submitted.
func (f *Form) activeModeLocked() Mode {
	if f.submitted {
		return f.reValidateMode
	}
	return f.mode
}

func (f *Form) nextSeqLocked() uint64 {
	f.seq++
	return f.seq
}

func (f *Form) matchesDefaultLocked(path string, value any) bool {
	def, ok := getPath(f.defaults, path)
	if !ok {
		return false
	}
	return equalValues(def, value)
}
