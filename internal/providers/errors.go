package providers

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrSlugRequired       = errors.New("providers: slug is required")
	ErrAPIRequired        = errors.New("providers: api implementation is required")
	ErrSettingsRequired   = errors.New("providers: settings service is required")
	ErrProviderRegistered = errors.New("providers: provider already registered")
	ErrInvalidNonce       = errors.New("providers: invalid nonce")
)

// Envelope messages.
const (
	msgNoPermission   = "You do not have permission"
	msgMissingData    = "Missing data"
	msgMissingAccount = "Connection missing"
	msgCouldNotAdd    = "Could not connect to the provider."
)

const (
	textCodeNonce      = "PROVIDER_NONCE_INVALID"
	textCodePermission = "PROVIDER_PERMISSION_DENIED"
	textCodeExternal   = "PROVIDER_API_FAILED"
)

func nonceError(err error) error {
	return goerrors.Wrap(errors.Join(ErrInvalidNonce, err), goerrors.CategoryAuthz, "invalid nonce").
		WithTextCode(textCodeNonce)
}

func permissionError(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryAuthz, msgNoPermission).
		WithTextCode(textCodePermission)
}

func externalError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "provider api call failed").
		WithTextCode(textCodeExternal)
}
