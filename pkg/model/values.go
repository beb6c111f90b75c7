package model

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Dotted paths of the channel form fields.
const (
	PathUsername       = "username"
	PathEmail          = "email"
	PathChannel        = "channel"
	PathTwitter        = "social.twitter"
	PathFacebook       = "social.facebook"
	PathPrimaryPhone   = "phoneNumbers.0"
	PathSecondaryPhone = "phoneNumbers.1"
	PathPhoneRows      = "phNumbers"
	PathPhoneRowNumber = "phNumbers.*.number"
	PathAge            = "age"
	PathDOB            = "dob"
)

// DateLayout is the wire format of date inputs.
const DateLayout = "2006-01-02"

// Social groups the social-network handles.
type Social struct {
	Twitter  string `json:"twitter"`
	Facebook string `json:"facebook"`
}

// PhoneRow is one entry of the variable-length phone list.
type PhoneRow struct {
	Number string `json:"number"`
}

// ChannelForm is the record a successful submission produces.
type ChannelForm struct {
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Channel      string     `json:"channel"`
	Social       Social     `json:"social"`
	PhoneNumbers [2]string  `json:"phoneNumbers"`
	PhNumbers    []PhoneRow `json:"phNumbers"`
	Age          int        `json:"age"`
	DOB          time.Time  `json:"dob"`
}

// DefaultValues returns the default value tree: empty strings, two empty
// fixed phone slots, one empty dynamic phone row, age 0 and today's date.
func DefaultValues(now time.Time) map[string]any {
	return map[string]any{
		"username": "",
		"email":    "",
		"channel":  "",
		"social": map[string]any{
			"twitter":  "",
			"facebook": "",
		},
		"phoneNumbers": []any{"", ""},
		"phNumbers": []any{
			map[string]any{"number": ""},
		},
		"age": 0,
		"dob": Date(now),
	}
}

// Date truncates t to midnight in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Decode converts a value tree into a ChannelForm. Missing keys keep their
// zero value, so fields omitted from a submission (disabled inputs) decode
// as empty strings.
func Decode(values map[string]any) (ChannelForm, error) {
	var out ChannelForm
	raw, err := json.Marshal(values)
	if err != nil {
		return out, fmt.Errorf("model: encode values: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("model: decode values: %w", err)
	}
	return out, nil
}
