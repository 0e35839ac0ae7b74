package util

import (
	"errors"
	"fmt"
)

// Kind classifies a DomainError independently of any transport.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindDependency   Kind = "dependency"
	KindInternal     Kind = "internal"
)

// Stable error codes reported to callers.
const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeWeakSecret          = "WEAK_SECRET"
	CodeConflict            = "CONFLICT"
	CodeDuplicateIdentifier = "DUPLICATE_IDENTIFIER"
	CodeAuthFailure         = "AUTH_FAILURE"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeUnknownIdentity     = "UNKNOWN_IDENTITY"
	CodeDependencyFailure   = "DEPENDENCY_FAILURE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request later.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindDependency
}

// NewDomainError constructs a DomainError.
func NewDomainError(kind Kind, code, message string, details map[string]any) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(KindValidation, CodeValidationFailed, message, details)
}

// NewWeakSecret reports a secret that does not satisfy the configured policy.
func NewWeakSecret(details map[string]any) error {
	return NewDomainError(KindValidation, CodeWeakSecret, "secret does not satisfy the password policy", details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return NewDomainError(KindNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), details)
}

func NewUnknownIdentity() error {
	return NewDomainError(KindNotFound, CodeUnknownIdentity, "no contact address registered for identity", nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError(KindUnauthorized, CodeUnauthorized, message, nil)
}

// NewAuthFailure is the single response for unknown identifiers and wrong secrets.
func NewAuthFailure() error {
	return NewDomainError(KindUnauthorized, CodeAuthFailure, "invalid credentials", nil)
}

func NewInvalidToken() error {
	return NewDomainError(KindUnauthorized, CodeInvalidToken, "invalid or expired token", nil)
}

func NewForbidden(message string) error {
	return NewDomainError(KindForbidden, CodeForbidden, message, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(KindConflict, CodeConflict, message, details)
}

func NewDuplicateIdentifier() error {
	return NewDomainError(KindConflict, CodeDuplicateIdentifier, "identifier already registered", nil)
}

// NewDependencyFailure wraps storage or delivery outages; callers may retry.
func NewDependencyFailure(dependency string, err error) error {
	return &DomainError{
		Kind:    KindDependency,
		Code:    CodeDependencyFailure,
		Message: fmt.Sprintf("%s unavailable", dependency),
		Err:     err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Kind:    KindInternal,
		Code:    CodeInternalError,
		Message: "internal server error",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Kind:    KindInternal,
		Code:    CodeInternalError,
		Message: "internal server error",
		Err:     err,
	}
}

// IsCode reports whether err carries the given DomainError code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
