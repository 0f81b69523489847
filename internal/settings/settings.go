package settings

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/goliatone/go-formbridge/providers"
)

// ProvidersOption names the options row holding connected accounts.
const ProvidersOption = "formbridge_providers"

var (
	ErrAccountMissing   = errors.New("settings: connection missing")
	ErrProviderRequired = errors.New("settings: provider slug is required")
	ErrKeyRequired      = errors.New("settings: account key is required")
	ErrLabelRequired    = errors.New("settings: account label is required")
)

// NotFoundError reports a missing account.
type NotFoundError struct {
	Provider string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("settings: account %q not found for provider %q", e.Key, e.Provider)
}

func (e *NotFoundError) Unwrap() error {
	return ErrAccountMissing
}

// Record is the providers options value: provider slug to account key to
// account.
type Record map[string]map[string]providers.Account

// Clone deep copies the record so callers can mutate it safely.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for slug, accounts := range r {
		copied := make(map[string]providers.Account, len(accounts))
		for key, account := range accounts {
			account.Key = key
			account.Credentials = maps.Clone(account.Credentials)
			copied[key] = account
		}
		out[slug] = copied
	}
	return out
}

// Repository loads and saves the providers options record. A missing record
// loads as empty. Save replaces the whole record; concurrent writers race and
// the last write wins.
type Repository interface {
	Load(ctx context.Context) (Record, error)
	Save(ctx context.Context, record Record) error
}
