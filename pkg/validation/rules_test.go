package validation_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/model"
	"github.com/goliatone/go-formstate/pkg/validation"
)

func TestRequired(t *testing.T) {
	rule := validation.Required("Username is required!")
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: "Username is required!"},
		{name: "empty string", value: "", want: "Username is required!"},
		{name: "whitespace", value: " ", want: ""},
		{name: "zero int", value: 0, want: "Username is required!"},
		{name: "int", value: 18, want: ""},
		{name: "zero time", value: time.Time{}, want: "Username is required!"},
		{name: "time", value: time.Now(), want: ""},
		{name: "text", value: "alice", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rule.Evaluate(context.Background(), tc.value)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("message = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPattern_SkipsEmpty(t *testing.T) {
	rule := validation.Pattern(regexp.MustCompile(`^\d+$`), "digits only")
	if msg, _ := rule.Evaluate(context.Background(), ""); msg != "" {
		t.Fatalf("expected empty value to pass, got %q", msg)
	}
	if msg, _ := rule.Evaluate(context.Background(), "12a"); msg != "digits only" {
		t.Fatalf("expected pattern failure, got %q", msg)
	}
}

func TestNewSet_OrdersByKind(t *testing.T) {
	set := validation.NewSet(
		validation.Validate("custom", func(context.Context, any) (string, error) { return "", nil }),
		validation.Pattern(regexp.MustCompile(`.`), "pattern"),
		validation.Required("required"),
	)

	var kinds []string
	for _, rule := range set {
		kinds = append(kinds, rule.Kind)
	}
	want := []string{model.ValidationRuleRequired, model.ValidationRulePattern, model.ValidationRuleCustom}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	if !set.Required() {
		t.Fatalf("expected set to report required")
	}
}

func TestEmailRules(t *testing.T) {
	calls := 0
	checker := validation.EmailCheckerFunc(func(_ context.Context, email string) (bool, error) {
		calls++
		return email != "taken@example.com", nil
	})
	set := validation.EmailRules(checker)

	cases := []struct {
		email     string
		want      string
		wantCalls int
	}{
		{email: "not-an-email", want: validation.MessageEmailFormat},
		{email: "admin@example.com", want: validation.MessageEmailReserved},
		{email: "someone@baddomain.com", want: validation.MessageDomainBlocked},
		{email: "", want: ""},
		{email: "taken@example.com", want: validation.MessageEmailTaken, wantCalls: 1},
		{email: "free@example.com", want: "", wantCalls: 1},
	}
	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			calls = 0
			got, err := set.Validate(context.Background(), tc.email)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if got != tc.want {
				t.Fatalf("message = %q, want %q", got, tc.want)
			}
			if calls != tc.wantCalls {
				t.Fatalf("lookup calls = %d, want %d", calls, tc.wantCalls)
			}
		})
	}
}

func TestEmailAvailable_LookupFailureIsFieldMessage(t *testing.T) {
	boom := errors.New("network down")
	rule := validation.EmailAvailable(validation.EmailCheckerFunc(func(context.Context, string) (bool, error) {
		return false, boom
	}))

	msg, err := rule.Evaluate(context.Background(), "someone@example.com")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
	if msg != validation.MessageEmailUnverified {
		t.Fatalf("message = %q, want %q", msg, validation.MessageEmailUnverified)
	}
}

func TestSet_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set := validation.NewSet(validation.Required("required"))
	if _, err := set.Validate(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
