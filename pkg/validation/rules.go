package validation

import (
	"context"
	"reflect"
	"regexp"
	"sort"
	"time"

	"github.com/goliatone/go-formstate/pkg/model"
)

// Check inspects a field value and returns the failure message, or "" when
// the value passes. A non-nil error reports that the check could not reach a
// verdict; callers still display the returned message when one is given.
type Check func(ctx context.Context, value any) (string, error)

// Rule is a single named constraint attached to a field.
type Rule struct {
	Kind    string
	Name    string
	Message string
	Params  map[string]string
	check   Check
}

// Evaluate runs the rule against value.
func (r Rule) Evaluate(ctx context.Context, value any) (string, error) {
	if r.check == nil {
		return "", nil
	}
	return r.check(ctx, value)
}

// Describe converts the rule into the renderer-facing model representation.
func (r Rule) Describe() model.ValidationRule {
	out := model.ValidationRule{Kind: r.Kind, Message: r.Message}
	if len(r.Params) > 0 {
		out.Params = make(map[string]string, len(r.Params))
		for key, value := range r.Params {
			out.Params[key] = value
		}
	}
	return out
}

// Required fails when the value is empty: nil, "", a zero number, a zero
// time or an empty slice. Whitespace-only strings are not empty.
func Required(message string) Rule {
	return Rule{
		Kind:    model.ValidationRuleRequired,
		Message: message,
		check: func(_ context.Context, value any) (string, error) {
			if IsEmpty(value) {
				return message, nil
			}
			return "", nil
		},
	}
}

// Pattern fails when a non-empty string value does not match re. Empty values
// are left to Required.
func Pattern(re *regexp.Regexp, message string) Rule {
	return Rule{
		Kind:    model.ValidationRulePattern,
		Message: message,
		Params:  map[string]string{"pattern": re.String()},
		check: func(_ context.Context, value any) (string, error) {
			text, ok := value.(string)
			if !ok || text == "" {
				return "", nil
			}
			if !re.MatchString(text) {
				return message, nil
			}
			return "", nil
		},
	}
}

// Validate wraps an arbitrary named check.
func Validate(name string, check Check) Rule {
	return Rule{
		Kind:   model.ValidationRuleCustom,
		Name:   name,
		Params: map[string]string{"name": name},
		check:  check,
	}
}

// Set is an ordered collection of rules. Required rules run first, then
// patterns, then custom validators in declaration order; the first failure
// wins.
type Set []Rule

// NewSet orders rules by kind while keeping declaration order within a kind.
func NewSet(rules ...Rule) Set {
	set := make(Set, 0, len(rules))
	set = append(set, rules...)
	sort.SliceStable(set, func(i, j int) bool {
		return kindRank(set[i].Kind) < kindRank(set[j].Kind)
	})
	return set
}

// Validate evaluates the set against value and returns the first failing
// message. Evaluation stops at the first failure or error.
func (s Set) Validate(ctx context.Context, value any) (string, error) {
	for _, rule := range s {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		message, err := rule.Evaluate(ctx, value)
		if err != nil || message != "" {
			return message, err
		}
	}
	return "", nil
}

// Required reports whether the set contains a required rule.
func (s Set) Required() bool {
	for _, rule := range s {
		if rule.Kind == model.ValidationRuleRequired {
			return true
		}
	}
	return false
}

// Describe converts every rule for renderers.
func (s Set) Describe() []model.ValidationRule {
	if len(s) == 0 {
		return nil
	}
	out := make([]model.ValidationRule, 0, len(s))
	for _, rule := range s {
		out = append(out, rule.Describe())
	}
	return out
}

func kindRank(kind string) int {
	switch kind {
	case model.ValidationRuleRequired:
		return 0
	case model.ValidationRulePattern:
		return 1
	default:
		return 2
	}
}

// IsEmpty reports whether value counts as missing for Required.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case time.Time:
		return typed.IsZero()
	case []any:
		return len(typed) == 0
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
