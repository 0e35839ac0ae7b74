// Package validation checks request fields against typed rule sets and reports
// every failing constraint per field.
package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	apperrors "github.com/spec-kit/staffing-service/pkg/util"
)

// Rule returns a human-readable message when value violates the constraint, or "" when it holds.
type Rule func(value string) string

// Field binds a request field to the rules it must satisfy.
type Field struct {
	Name  string
	Value string
	// Optional fields skip their rules when empty.
	Optional bool
	Rules    []Rule
}

// Errors collects messages keyed by field name.
type Errors map[string][]string

// Add records a message for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Details converts the collected messages to DomainError details.
func (e Errors) Details() map[string]any {
	details := make(map[string]any, len(e))
	for field, msgs := range e {
		details[field] = msgs
	}
	return details
}

// Check evaluates fields and returns the collected messages. A failing Required rule
// stops evaluation of that field's remaining rules.
func Check(fields ...Field) Errors {
	errs := Errors{}
	for _, f := range fields {
		if f.Optional && strings.TrimSpace(f.Value) == "" {
			continue
		}
		for _, rule := range f.Rules {
			msg := rule(f.Value)
			if msg == "" {
				continue
			}
			errs.Add(f.Name, msg)
			if msg == requiredMessage {
				break
			}
		}
	}
	return errs
}

// Validate is Check reported as a VALIDATION_FAILED domain error, or nil when every field passes.
func Validate(fields ...Field) error {
	errs := Check(fields...)
	if len(errs) == 0 {
		return nil
	}
	return apperrors.NewValidationError("request validation failed", errs.Details())
}

const requiredMessage = "is required"

// Required rejects empty or whitespace-only values.
func Required() Rule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return requiredMessage
		}
		return ""
	}
}

// MinLength rejects values shorter than n characters.
func MinLength(n int) Rule {
	return func(value string) string {
		if utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("must be at least %d characters", n)
		}
		return ""
	}
}

// MaxLength rejects values longer than n characters.
func MaxLength(n int) Rule {
	return func(value string) string {
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("must be at most %d characters", n)
		}
		return ""
	}
}

// Digits rejects values containing anything but ASCII digits.
func Digits() Rule {
	return func(value string) string {
		for _, r := range value {
			if r < '0' || r > '9' {
				return "must contain only digits"
			}
		}
		return ""
	}
}

// OneOf rejects values outside allowed.
func OneOf(allowed ...string) Rule {
	return func(value string) string {
		for _, a := range allowed {
			if value == a {
				return ""
			}
		}
		return fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", "))
	}
}

// Email rejects values that are not a bare e-mail address.
func Email() Rule {
	return func(value string) string {
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return "must be a valid email address"
		}
		return ""
	}
}

// Contains rejects values without at least one rune from set. label names the class in the message.
func Contains(set, label string) Rule {
	return func(value string) string {
		if !strings.ContainsAny(value, set) {
			return fmt.Sprintf("must contain at least one %s", label)
		}
		return ""
	}
}
