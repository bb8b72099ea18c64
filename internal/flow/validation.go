package flow

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// blockedMessage is the message used when a boolean guard rejects.
const blockedMessage = "Blocked"

// Validation is the canonical result of an exit guard.
type Validation struct {
	OK          bool              `json:"ok"`
	Errors      []string          `json:"errors,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// Valid returns a passing validation.
func Valid() Validation {
	return Validation{OK: true}
}

// Invalid returns a failing validation with the given messages.
func Invalid(errs ...string) Validation {
	return Validation{OK: false, Errors: errs}
}

// FromBool normalizes a boolean guard result.
func FromBool(ok bool) Validation {
	if ok {
		return Valid()
	}
	return Invalid(blockedMessage)
}

// FromError wraps an error raised by a guard or finish handler.
func FromError(err error) Validation {
	return Invalid(err.Error())
}

// WithFieldError returns a copy of v marked invalid with an error for field.
func (v Validation) WithFieldError(field, msg string) Validation {
	out := v.clone()
	out.OK = false
	if out.FieldErrors == nil {
		out.FieldErrors = make(map[string]string)
	}
	out.FieldErrors[field] = msg
	return out
}

// Messages returns the general errors followed by the field errors in field order.
func (v Validation) Messages() []string {
	msgs := slices.Clone(v.Errors)
	for _, field := range slices.Sorted(maps.Keys(v.FieldErrors)) {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, v.FieldErrors[field]))
	}
	return msgs
}

// String joins all messages.
func (v Validation) String() string {
	if v.OK {
		return "ok"
	}
	return strings.Join(v.Messages(), "; ")
}

// normalize ensures a failing validation carries at least one message.
func (v Validation) normalize() Validation {
	if !v.OK && len(v.Errors) == 0 && len(v.FieldErrors) == 0 {
		return Invalid(blockedMessage)
	}
	return v
}

func (v Validation) clone() Validation {
	return Validation{
		OK:          v.OK,
		Errors:      slices.Clone(v.Errors),
		FieldErrors: maps.Clone(v.FieldErrors),
	}
}
