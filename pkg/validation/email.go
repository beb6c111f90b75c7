package validation

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// EmailPattern accepts the address shapes the sign-up form allows.
var EmailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// Messages used by the sign-up form.
const (
	MessageEmailFormat     = "Wrong email format!"
	MessageEmailReserved   = "Enter a different email address"
	MessageDomainBlocked   = "This domain is not supported"
	MessageEmailTaken      = "Email already exists"
	MessageEmailUnverified = "Unable to verify email address"
	ReservedEmail          = "admin@example.com"
	BlockedDomain          = "baddomain.com"
	RuleNotAdmin           = "notAdmin"
	RuleNotBlackListed     = "notBlackListed"
	RuleEmailAvailable     = "emailAvailable"
)

// ErrCheckerMissing is returned when EmailAvailable runs without a checker.
var ErrCheckerMissing = errors.New("validation: email checker is nil")

// EmailChecker answers whether an email address is still free.
type EmailChecker interface {
	EmailAvailable(ctx context.Context, email string) (bool, error)
}

// EmailCheckerFunc adapts a function to EmailChecker.
type EmailCheckerFunc func(ctx context.Context, email string) (bool, error)

// EmailAvailable calls fn.
func (fn EmailCheckerFunc) EmailAvailable(ctx context.Context, email string) (bool, error) {
	return fn(ctx, email)
}

// NotEqual rejects one exact value.
func NotEqual(name, reserved, message string) Rule {
	return Validate(name, func(_ context.Context, value any) (string, error) {
		if text, _ := value.(string); text == reserved {
			return message, nil
		}
		return "", nil
	})
}

// NotSuffix rejects string values ending in suffix.
func NotSuffix(name, suffix, message string) Rule {
	return Validate(name, func(_ context.Context, value any) (string, error) {
		if text, _ := value.(string); strings.HasSuffix(text, suffix) {
			return message, nil
		}
		return "", nil
	})
}

// EmailAvailable asks checker whether the address is free. Empty values pass
// without a lookup. Lookup failures come back as a field message together
// with the underlying error so callers can log it.
func EmailAvailable(checker EmailChecker) Rule {
	return Validate(RuleEmailAvailable, func(ctx context.Context, value any) (string, error) {
		email, _ := value.(string)
		if email == "" {
			return "", nil
		}
		if checker == nil {
			return MessageEmailUnverified, ErrCheckerMissing
		}
		available, err := checker.EmailAvailable(ctx, email)
		if err != nil {
			return MessageEmailUnverified, err
		}
		if !available {
			return MessageEmailTaken, nil
		}
		return "", nil
	})
}

// EmailRules returns the complete rule set for the email field.
func EmailRules(checker EmailChecker) Set {
	return NewSet(
		Pattern(EmailPattern, MessageEmailFormat),
		NotEqual(RuleNotAdmin, ReservedEmail, MessageEmailReserved),
		NotSuffix(RuleNotBlackListed, BlockedDomain, MessageDomainBlocked),
		EmailAvailable(checker),
	)
}
