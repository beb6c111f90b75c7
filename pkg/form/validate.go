package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/validation"
)

// SubmitHandler receives the validated values of a successful submission.
// Returning an error marks the submission as unsuccessful.
type SubmitHandler func(ctx context.Context, values map[string]any) error

// ErrorHandler receives the field errors of a refused submission.
type ErrorHandler func(ctx context.Context, errs map[string]string)

type validationJob struct {
	path  string
	value any
	seq   uint64
	rules validation.Set
}

// validateField runs the rules of one field and records the verdict unless
// the field changed in the meantime. It returns the failure message.
func (f *Form) validateField(ctx context.Context, path string) (string, error) {
	f.mu.Lock()
	reg, err := f.lookupLocked(path)
	if err != nil {
		f.mu.Unlock()
		return "", err
	}
	if f.disabledLocked(reg) {
		meta := f.metaLocked(path)
		meta.message = ""
		f.mu.Unlock()
		return "", nil
	}
	job := f.jobLocked(reg, path)
	f.mu.Unlock()

	message, err := f.run(ctx, job)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	f.applyLocked(job, message)
	f.mu.Unlock()
	return message, nil
}

func (f *Form) jobLocked(reg *registration, path string) validationJob {
	value, _ := getPath(f.values, path)
	return validationJob{
		path:  path,
		value: deepCopy(value),
		seq:   f.metaLocked(path).seq,
		rules: reg.rules,
	}
}

// run evaluates a job without holding the lock. Context errors abort; any
// other rule error is logged and surfaces as a field message.
func (f *Form) run(ctx context.Context, job validationJob) (string, error) {
	message, err := job.rules.Validate(ctx, job.value)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		f.logger.Warn("field validation errored",
			zap.String("field", job.path),
			zap.Error(err),
		)
		if message == "" {
			message = MessageValidationFailed
		}
	}
	return message, nil
}

// applyLocked records a verdict. Verdicts for values that have since been
// replaced are discarded.
func (f *Form) applyLocked(job validationJob, message string) bool {
	meta, ok := f.meta[job.path]
	if !ok || meta.seq != job.seq {
		f.logger.Debug("discarding stale validation result",
			zap.String("field", job.path),
		)
		return false
	}
	meta.message = message
	meta.validated = true
	return true
}

// Trigger validates the named fields, or every enabled field when paths is
// empty, and reports whether all of them passed.
func (f *Form) Trigger(ctx context.Context, paths ...string) (bool, error) {
	if len(paths) == 0 {
		f.mu.Lock()
		paths = f.pathsLocked(true)
		f.mu.Unlock()
	}
	valid := true
	for _, path := range paths {
		message, err := f.validateField(ctx, path)
		if err != nil {
			return false, err
		}
		if message != "" {
			valid = false
		}
	}
	return valid, nil
}

// HandleSubmit validates every enabled field against a snapshot of the
// current values. When all pass, onValid receives the snapshot with disabled
// fields removed; otherwise onInvalid receives the field errors. Validation
// failure is not an error: only context cancellation and onValid errors are
// returned.
func (f *Form) HandleSubmit(ctx context.Context, onValid SubmitHandler, onInvalid ErrorHandler) error {
	f.mu.Lock()
	f.submitting = true
	f.submitSuccessful = false
	snapshot := copyTree(f.values)
	var jobs []validationJob
	var disabled []string
	for _, path := range f.pathsLocked(false) {
		reg, err := f.lookupLocked(path)
		if err != nil {
			continue
		}
		if f.disabledLocked(reg) {
			disabled = append(disabled, path)
			f.metaLocked(path).message = ""
			continue
		}
		jobs = append(jobs, f.jobLocked(reg, path))
	}
	f.mu.Unlock()

	errs := make(map[string]string)
	messages := make([]string, len(jobs))
	for i, job := range jobs {
		message, err := f.run(ctx, job)
		if err != nil {
			f.mu.Lock()
			f.submitting = false
			f.mu.Unlock()
			return err
		}
		messages[i] = message
		if message != "" {
			errs[job.path] = message
		}
	}

	f.mu.Lock()
	for i, job := range jobs {
		f.applyLocked(job, messages[i])
	}
	f.submitting = false
	f.submitted = true
	f.submitCount++
	f.mu.Unlock()

	if len(errs) > 0 {
		if onInvalid != nil {
			onInvalid(ctx, errs)
		}
		return nil
	}

	for _, path := range disabled {
		deletePath(snapshot, path)
	}

	var err error
	if onValid != nil {
		err = onValid(ctx, snapshot)
	}

	f.mu.Lock()
	f.submitSuccessful = err == nil
	f.mu.Unlock()
	return err
}
