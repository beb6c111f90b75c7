package youtubeform

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
)

// Action names, matching the buttons of the layout.
const (
	ActionSubmit  = "submit"
	ActionReset   = "reset"
	ActionPrint   = "print"
	ActionSet     = "set"
	ActionTrigger = "trigger"
	ActionAdd     = "add"
	ActionRemove  = "remove"
)

// SubmitResult describes one submission attempt. Record is set when the
// submission was accepted; Errors when it was refused.
type SubmitResult struct {
	Accepted bool
	Record   model.ChannelForm
	Errors   map[string]string
}

// Outcome is the result of a dispatched action.
type Outcome struct {
	Action string
	Notice string
	Submit *SubmitResult
}

// Submit validates every enabled field. Accepted records go to the sink and
// the form resets to its defaults; refused submissions hand their errors to
// the sink instead.
func (s *Screen) Submit(ctx context.Context) (SubmitResult, error) {
	var result SubmitResult
	err := s.form.HandleSubmit(ctx,
		func(ctx context.Context, values map[string]any) error {
			record, err := model.Decode(values)
			if err != nil {
				return err
			}
			if err := s.sink.Submitted(ctx, record); err != nil {
				return fmt.Errorf("youtubeform: sink: %w", err)
			}
			result.Record = record
			return nil
		},
		func(ctx context.Context, errs map[string]string) {
			result.Errors = errs
			s.sink.Rejected(ctx, errs)
		},
	)
	if err != nil {
		return SubmitResult{}, err
	}
	if result.Errors == nil {
		result.Accepted = true
		s.form.Reset()
	}
	return result, nil
}

// Reset restores the default values.
func (s *Screen) Reset() {
	s.form.Reset()
}

// PrintValues sends the current username to the sink and returns it.
func (s *Screen) PrintValues(ctx context.Context) []any {
	paths := []string{model.PathUsername}
	values := s.form.GetValues(paths...)
	s.sink.Printed(ctx, paths, values)
	return values
}

// SetValues clears the username as if the user had edited it, which
// validates it, marks it touched and recomputes its dirty flag.
func (s *Screen) SetValues(ctx context.Context) error {
	return s.form.SetValue(ctx, model.PathUsername, "", form.SetValueOptions{
		ShouldValidate: true,
		ShouldDirty:    true,
		ShouldTouch:    true,
	})
}

// Trigger validates the username on demand.
func (s *Screen) Trigger(ctx context.Context) (bool, error) {
	return s.form.Trigger(ctx, model.PathUsername)
}

// AddPhone appends a blank phone row.
func (s *Screen) AddPhone() (form.Row, error) {
	return s.phones.Append(map[string]any{"number": ""})
}

// RemovePhone removes the phone row with the given identity. The first row
// offers no remove control and is refused.
func (s *Screen) RemovePhone(id string) error {
	index := s.phones.IndexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: %q", form.ErrRowNotFound, id)
	}
	if !s.phones.CanRemove(index) {
		return ErrFirstRow
	}
	return s.phones.Remove(index)
}

// Dispatch runs a named button action. row identifies the phone row for
// ActionRemove and is ignored otherwise.
func (s *Screen) Dispatch(ctx context.Context, action, row string) (Outcome, error) {
	out := Outcome{Action: action}
	switch action {
	case ActionSubmit:
		result, err := s.Submit(ctx)
		if err != nil {
			return out, err
		}
		out.Submit = &result
		if result.Accepted {
			out.Notice = "Form submitted"
		} else {
			out.Notice = fmt.Sprintf("Form has %d error(s)", len(result.Errors))
		}
	case ActionReset:
		s.Reset()
		out.Notice = "Form reset"
	case ActionPrint:
		raw, err := json.Marshal(s.PrintValues(ctx))
		if err != nil {
			return out, fmt.Errorf("youtubeform: encode values: %w", err)
		}
		out.Notice = "Values: " + string(raw)
	case ActionSet:
		if err := s.SetValues(ctx); err != nil {
			return out, err
		}
		out.Notice = "Username set"
	case ActionTrigger:
		valid, err := s.Trigger(ctx)
		if err != nil {
			return out, err
		}
		out.Notice = "Username is invalid"
		if valid {
			out.Notice = "Username is valid"
		}
	case ActionAdd:
		if _, err := s.AddPhone(); err != nil {
			return out, err
		}
		out.Notice = "Phone number added"
	case ActionRemove:
		if err := s.RemovePhone(strings.TrimSpace(row)); err != nil {
			return out, err
		}
		out.Notice = "Phone number removed"
	default:
		return out, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	s.logger.Debug("action dispatched",
		zap.String("action", action),
		zap.String("notice", out.Notice),
	)
	return out, nil
}
