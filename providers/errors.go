package providers

import (
	"errors"
	"strings"
)

// Error is the failure value returned by provider API calls. Code is always
// "<slug>-error"; Message is shown to the admin as-is.
type Error struct {
	Code    string
	Message string
	Err     error
}

// NewError builds a provider error for slug.
func NewError(slug, message string) *Error {
	return &Error{Code: errorCode(slug), Message: message}
}

// WrapError turns err into a provider error for slug, keeping it as cause.
// A nil err yields nil.
func WrapError(slug string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	return &Error{Code: errorCode(slug), Message: err.Error(), Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message == "" {
		return e.Code
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsError reports whether err is, or wraps, a provider error.
func IsError(err error) bool {
	var target *Error
	return errors.As(err, &target)
}

// ErrorMessage returns the admin facing message carried by err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var target *Error
	if errors.As(err, &target) {
		return target.Error()
	}
	return err.Error()
}

func errorCode(slug string) string {
	return strings.TrimSpace(slug) + "-error"
}
