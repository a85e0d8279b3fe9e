package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorCode represents a semantic classification shared by the session, cart and catalog engines.
type ErrorCode string

const (
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeDuplicateEmail     ErrorCode = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidOTP         ErrorCode = "INVALID_OTP"
	ErrCodeTransient          ErrorCode = "TRANSIENT"
	ErrCodeMalformedState     ErrorCode = "MALFORMED_STATE"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeBusy               ErrorCode = "BUSY"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error

	// Email is set on DUPLICATE_EMAIL so callers can offer a login shortcut.
	Email string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewDuplicateEmail reports that the identity service already knows email.
func NewDuplicateEmail(email string) *Error {
	return &Error{
		Code:    ErrCodeDuplicateEmail,
		Message: "email already registered",
		Email:   email,
	}
}

// Common domain errors.
var (
	ErrStateNotFound      = NewError(ErrCodeNotFound, "state not found")
	ErrProductNotFound    = NewError(ErrCodeNotFound, "product not found")
	ErrNoPendingOTP       = NewError(ErrCodeInvalidInput, "no registration awaiting confirmation")
	ErrInvalidCredentials = NewError(ErrCodeInvalidCredentials, "invalid username or password")
	ErrInvalidOTP         = NewError(ErrCodeInvalidOTP, "invalid or expired one-time passcode")
	ErrBusy               = NewError(ErrCodeBusy, "request already in flight")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the classification of err, or an empty code for foreign errors.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ""
}

// ValidationError collects field-level messages produced before any network call.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	if v == nil || len(v.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return strings.Join(parts, "; ")
}

// Add records a message for field, keeping the first one reported.
func (v *ValidationError) Add(field, message string) {
	if v.Fields == nil {
		v.Fields = make(map[string]string)
	}
	if _, ok := v.Fields[field]; !ok {
		v.Fields[field] = message
	}
}

// Empty reports whether no field failed.
func (v *ValidationError) Empty() bool {
	return v == nil || len(v.Fields) == 0
}

// Err returns nil when no field failed, otherwise an INVALID_INPUT domain error.
func (v *ValidationError) Err() error {
	if v.Empty() {
		return nil
	}
	return WrapError(ErrCodeInvalidInput, "invalid input", v)
}

// FieldErrors extracts the field messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Fields
	}
	return nil
}
