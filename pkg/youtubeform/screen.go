// Package youtubeform wires the channel sign-up screen: field registrations,
// validation rules, the phone list and the button actions.
package youtubeform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formstate/pkg/condition"
	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/sink"
	"github.com/goliatone/go-formstate/pkg/uischema"
	"github.com/goliatone/go-formstate/pkg/validation"
)

// FormID identifies the screen layout in the embedded UI schema.
const FormID = "youtube-form"

// Field messages.
const (
	MessageUsernameRequired = "Username is required!"
	MessageAgeRequired      = "Age is required!"
	MessageDOBRequired      = "Date of birth is required!"
)

var (
	// ErrSinkMissing is returned by New when no sink is supplied.
	ErrSinkMissing = errors.New("youtubeform: sink is required")
	// ErrUnknownAction is returned by Dispatch for unsupported action names.
	ErrUnknownAction = errors.New("youtubeform: unknown action")
	// ErrFirstRow is returned when removing the first phone row.
	ErrFirstRow = errors.New("youtubeform: the first phone number cannot be removed")
)

// Option configures a Screen.
type Option func(*config)

type config struct {
	mode    form.Mode
	logger  *zap.Logger
	now     func() time.Time
	newKey  func() string
	layout  *uischema.Layout
	loadErr error
}

// WithMode sets when fields are validated. Defaults to form.ModeOnBlur.
func WithMode(mode form.Mode) Option {
	return func(cfg *config) {
		if mode != "" {
			cfg.mode = mode
		}
	}
}

// WithLogger sets the logger shared with the form engine.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithClock overrides the clock used for the date-of-birth default.
func WithClock(now func() time.Time) Option {
	return func(cfg *config) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithKeyGenerator overrides the identity generator of phone rows.
func WithKeyGenerator(fn func() string) Option {
	return func(cfg *config) {
		cfg.newKey = fn
	}
}

// WithLayout replaces the embedded layout.
func WithLayout(layout uischema.Layout) Option {
	return func(cfg *config) {
		cfg.layout = &layout
	}
}

// Screen is one instance of the channel sign-up form.
type Screen struct {
	form   *form.Form
	phones *form.FieldArray
	sink   sink.Sink
	logger *zap.Logger
	model  model.FormModel
}

// New builds the screen. checker backs the email availability rule; s
// receives submissions.
func New(checker validation.EmailChecker, s sink.Sink, options ...Option) (*Screen, error) {
	if s == nil {
		return nil, ErrSinkMissing
	}
	cfg := config{
		mode:   form.ModeOnBlur,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	layout, err := resolveLayout(cfg.layout)
	if err != nil {
		return nil, err
	}

	formOpts := []form.Option{
		form.WithMode(cfg.mode),
		form.WithLogger(cfg.logger),
		form.WithLocation(cfg.now().Location()),
	}
	if cfg.newKey != nil {
		formOpts = append(formOpts, form.WithKeyGenerator(cfg.newKey))
	}
	f := form.New(model.DefaultValues(cfg.now()), formOpts...)

	rules := fieldRules(checker)
	if err := register(f, rules, layout); err != nil {
		return nil, err
	}

	return &Screen{
		form:   f,
		phones: f.FieldArray(model.PathPhoneRows),
		sink:   s,
		logger: cfg.logger.Named("youtubeform"),
		model:  uischema.Decorate(buildModel(rules), layout),
	}, nil
}

func resolveLayout(override *uischema.Layout) (uischema.Layout, error) {
	if override != nil {
		return *override, nil
	}
	store, err := uischema.LoadFS(uischema.EmbeddedFS())
	if err != nil {
		return uischema.Layout{}, fmt.Errorf("youtubeform: load layout: %w", err)
	}
	layout, ok := store.Layout(FormID)
	if !ok {
		return uischema.Layout{}, fmt.Errorf("youtubeform: layout %q not found", FormID)
	}
	return layout, nil
}

func fieldRules(checker validation.EmailChecker) map[string]validation.Set {
	return map[string]validation.Set{
		model.PathUsername: validation.NewSet(validation.Required(MessageUsernameRequired)),
		model.PathEmail:    validation.EmailRules(checker),
		model.PathAge:      validation.NewSet(validation.Required(MessageAgeRequired)),
		model.PathDOB:      validation.NewSet(validation.Required(MessageDOBRequired)),
	}
}

// twitterDisabledRule applies when the layout does not name its own rule.
const twitterDisabledRule = `channel == ""`

func register(f *form.Form, rules map[string]validation.Set, layout uischema.Layout) error {
	twitter, err := disabledRule(layout, model.PathTwitter, twitterDisabledRule)
	if err != nil {
		return err
	}

	f.Register(model.PathUsername, form.Rules(rules[model.PathUsername]))
	f.Register(model.PathEmail, form.Rules(rules[model.PathEmail]))
	f.Register(model.PathChannel)
	f.Register(model.PathTwitter, form.DisabledWhen(twitter))
	f.Register(model.PathFacebook)
	f.Register(model.PathPrimaryPhone)
	f.Register(model.PathSecondaryPhone)
	f.Register(model.PathPhoneRowNumber)
	f.Register(model.PathAge, form.ValueAs(form.ValueNumber), form.Rules(rules[model.PathAge]))
	f.Register(model.PathDOB, form.ValueAs(form.ValueDate), form.Rules(rules[model.PathDOB]))
	return nil
}

func disabledRule(layout uischema.Layout, path, fallback string) (func(form.ValueTree) bool, error) {
	rule := layout.Fields[path].DisabledWhen
	if rule == "" {
		rule = fallback
	}
	expr, err := condition.Compile(rule)
	if err != nil {
		return nil, fmt.Errorf("youtubeform: %s disabled rule: %w", path, err)
	}
	return func(values form.ValueTree) bool { return expr.Eval(values) }, nil
}

func buildModel(rules map[string]validation.Set) model.FormModel {
	leaf := func(name string, kind model.FieldType) model.Field {
		set := rules[name]
		return model.Field{
			Name:        name,
			Type:        kind,
			Required:    set.Required(),
			Validations: set.Describe(),
		}
	}

	email := leaf(model.PathEmail, model.FieldTypeString)
	email.Format = "email"
	email.Input = "email"
	age := leaf(model.PathAge, model.FieldTypeInteger)
	age.Input = "number"
	dob := leaf(model.PathDOB, model.FieldTypeString)
	dob.Format = "date"
	dob.Input = "date"
	phone := leaf(model.PathPhoneRowNumber, model.FieldTypeString)

	return model.FormModel{
		ID:       FormID,
		Title:    "YouTube Form",
		Endpoint: "/",
		Method:   "POST",
		Fields: []model.Field{
			leaf(model.PathUsername, model.FieldTypeString),
			email,
			leaf(model.PathChannel, model.FieldTypeString),
			{
				Name: "social",
				Type: model.FieldTypeObject,
				Nested: []model.Field{
					leaf(model.PathTwitter, model.FieldTypeString),
					leaf(model.PathFacebook, model.FieldTypeString),
				},
			},
			{
				Name: "phoneNumbers",
				Type: model.FieldTypeArray,
				Nested: []model.Field{
					leaf(model.PathPrimaryPhone, model.FieldTypeString),
					leaf(model.PathSecondaryPhone, model.FieldTypeString),
				},
			},
			{
				Name:  model.PathPhoneRows,
				Type:  model.FieldTypeArray,
				Items: &phone,
			},
			age,
			dob,
		},
	}
}

// Model returns the decorated description of the screen.
func (s *Screen) Model() model.FormModel {
	return s.model
}

// Form exposes the underlying form engine.
func (s *Screen) Form() *form.Form {
	return s.form
}

// Phones exposes the dynamic phone list controller.
func (s *Screen) Phones() *form.FieldArray {
	return s.phones
}

// Change forwards an input event.
func (s *Screen) Change(ctx context.Context, path, raw string) error {
	return s.form.Change(ctx, path, raw)
}

// Blur forwards a focus-lost event.
func (s *Screen) Blur(ctx context.Context, path string) error {
	return s.form.Blur(ctx, path)
}

// CanSubmit gates the submit button: something must have changed and no
// submission may be running.
func (s *Screen) CanSubmit() bool {
	state := s.form.State()
	return state.IsDirty && !state.IsSubmitting
}
