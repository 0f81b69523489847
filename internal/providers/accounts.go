package providers

import (
	"context"
	"strings"

	"github.com/goliatone/go-formbridge/internal/validation"
	"github.com/goliatone/go-formbridge/providers"
)

// connectAccount validates data, authenticates it against the integration
// and stores the resulting account. Failures come back as *providers.Error.
func (p *Provider) connectAccount(ctx context.Context, data map[string]string, formID string) (providers.Account, error) {
	if err := validation.ValidateAccountData(p.accountSchema, data); err != nil {
		return providers.Account{}, providers.NewError(p.info.Slug, "Please fill out all of the required fields: "+err.Error())
	}

	account, err := p.api.Auth(ctx, data, formID)
	if err != nil {
		return providers.Account{}, providers.WrapError(p.info.Slug, err)
	}
	if strings.TrimSpace(account.Label) == "" {
		account.Label = strings.TrimSpace(data["label"])
	}
	if account.Label == "" {
		account.Label = p.info.Name
	}

	stored, err := p.settings.Add(ctx, p.info.Slug, account)
	if err != nil {
		return providers.Account{}, providers.WrapError(p.info.Slug, err)
	}
	return stored, nil
}
