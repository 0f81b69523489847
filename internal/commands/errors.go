package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-formbridge/providers"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

const (
	textCodeInvalid       = "FORMBRIDGE_COMMAND_INVALID"
	textCodeCanceled      = "FORMBRIDGE_COMMAND_CANCELED"
	textCodeDeadline      = "FORMBRIDGE_COMMAND_DEADLINE"
	textCodeFormMissing   = "FORMBRIDGE_FORM_NOT_FOUND"
	textCodeProviderError = "FORMBRIDGE_PROVIDER_FAILED"
	textCodeFailed        = "FORMBRIDGE_COMMAND_FAILED"
)

// WrapValidationError tags a rejected command message. Already wrapped
// errors pass through.
func WrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid command").
		WithTextCode(textCodeInvalid)
}

// WrapContextError tags cancellation and deadline errors.
func WrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command deadline exceeded").
			WithTextCode(textCodeDeadline)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled").
		WithTextCode(textCodeCanceled)
}

// WrapExecuteError classifies a failure returned by a command function:
// missing forms are not-found errors, provider API failures are external
// and everything else is a command failure.
func WrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, formstore.ErrFormNotFound):
		return goerrors.Wrap(err, goerrors.CategoryNotFound, "form not found").
			WithTextCode(textCodeFormMissing)
	case providers.IsError(err):
		return goerrors.Wrap(err, goerrors.CategoryExternal, providers.ErrorMessage(err)).
			WithTextCode(textCodeProviderError)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return WrapContextError(err)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
		WithTextCode(textCodeFailed)
}
