package settings

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-formbridge/internal/identity"
	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/pkg/interfaces"
	"github.com/goliatone/go-formbridge/providers"
)

// Service manages connected provider accounts in the options record.
type Service struct {
	repo   Repository
	now    func() time.Time
	logger interfaces.Logger
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, now: time.Now, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// All returns the whole record, as used by the integrations settings page.
func (s *Service) All(ctx context.Context) (Record, error) {
	return s.repo.Load(ctx)
}

// Accounts lists the accounts of slug, oldest first.
func (s *Service) Accounts(ctx context.Context, slug string) ([]providers.Account, error) {
	record, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return SortedAccounts(record[slug]), nil
}

// HasAccounts reports whether slug has at least one connected account.
func (s *Service) HasAccounts(ctx context.Context, slug string) (bool, error) {
	record, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}
	return len(record[slug]) > 0, nil
}

// Account returns one account or a NotFoundError.
func (s *Service) Account(ctx context.Context, slug, key string) (providers.Account, error) {
	record, err := s.repo.Load(ctx)
	if err != nil {
		return providers.Account{}, err
	}
	account, ok := record[slug][key]
	if !ok {
		return providers.Account{}, notFound(slug, key)
	}
	account.Key = key
	return account, nil
}

// Add stores account under slug. A blank key is derived from the label and
// the connect time; a zero date is set to now.
func (s *Service) Add(ctx context.Context, slug string, account providers.Account) (providers.Account, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return providers.Account{}, validation(ErrProviderRequired, "SETTINGS_PROVIDER_REQUIRED")
	}
	if strings.TrimSpace(account.Label) == "" {
		return providers.Account{}, validation(ErrLabelRequired, "SETTINGS_LABEL_REQUIRED")
	}

	now := s.now().UTC()
	if account.Date.IsZero() {
		account.Date = now
	}
	if account.Key == "" {
		account.Key = identity.AccountKey(slug, account.Label, strconv.FormatInt(now.UnixNano(), 10))
	}

	record, err := s.repo.Load(ctx)
	if err != nil {
		return providers.Account{}, err
	}
	if record[slug] == nil {
		record[slug] = map[string]providers.Account{}
	}
	record[slug][account.Key] = account
	if err := s.repo.Save(ctx, record); err != nil {
		return providers.Account{}, err
	}

	s.logger.Info("settings.account_connected", "provider", slug, "account", account.Key)
	return account, nil
}

// Remove deletes an account. Missing accounts yield ErrAccountMissing.
func (s *Service) Remove(ctx context.Context, slug, key string) error {
	slug, key = strings.TrimSpace(slug), strings.TrimSpace(key)
	if slug == "" {
		return validation(ErrProviderRequired, "SETTINGS_PROVIDER_REQUIRED")
	}
	if key == "" {
		return validation(ErrKeyRequired, "SETTINGS_KEY_REQUIRED")
	}

	record, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := record[slug][key]; !ok {
		return notFound(slug, key)
	}
	delete(record[slug], key)
	if err := s.repo.Save(ctx, record); err != nil {
		return err
	}

	s.logger.Info("settings.account_disconnected", "provider", slug, "account", key)
	return nil
}

// SortedAccounts orders accounts by connect date, then key, and fills in Key.
func SortedAccounts(accounts map[string]providers.Account) []providers.Account {
	out := make([]providers.Account, 0, len(accounts))
	for key, account := range accounts {
		account.Key = key
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func notFound(slug, key string) error {
	return goerrors.Wrap(&NotFoundError{Provider: slug, Key: key}, goerrors.CategoryNotFound, "provider account not found").
		WithTextCode("SETTINGS_ACCOUNT_MISSING")
}

func validation(err error, code string) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).WithTextCode(code)
}
