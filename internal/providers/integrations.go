package providers

import (
	"context"
	"html/template"
	"strings"

	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/internal/validation"
	"github.com/goliatone/go-formbridge/providers"
)

type accountItemView struct {
	Slug  string
	Key   string
	Label string
	Date  string
}

type integrationView struct {
	Slug        string
	Name        string
	Icon        string
	Class       string
	Arrow       string
	Description template.HTML
	Accounts    []accountItemView
	NewForm     template.HTML
}

// NewAccountForm renders the inputs of the settings new-account form. The
// integration's own renderer wins; otherwise inputs are derived from the
// account schema.
func (p *Provider) NewAccountForm(ctx context.Context) string {
	if renderer, ok := p.api.(providers.AuthFormRenderer); ok {
		return renderer.NewAccountForm(ctx)
	}
	props := validation.Properties(p.accountSchema)
	if len(props) == 0 {
		return ""
	}
	return p.render("account_inputs", props)
}

// IntegrationsTabOptions renders the provider section of the settings
// integrations tab. active lists the registered providers; focus highlights
// one provider and collapses the others.
func (p *Provider) IntegrationsTabOptions(ctx context.Context, active map[string]string, record settings.Record, focus string) string {
	slug := p.info.Slug
	_, connected := active[slug]
	accounts := record[slug]

	var classes []string
	if connected && len(accounts) > 0 {
		classes = append(classes, "connected")
	}
	arrow := "right"
	if focus = strings.TrimSpace(focus); focus != "" {
		if focus == slug {
			classes = append(classes, "focus-in")
			arrow = "down"
		} else {
			classes = append(classes, "focus-out")
		}
	}

	view := integrationView{
		Slug:        slug,
		Name:        p.info.Name,
		Icon:        p.info.Icon,
		Class:       strings.Join(classes, " "),
		Arrow:       arrow,
		Description: p.description,
		NewForm:     template.HTML(p.NewAccountForm(ctx)),
	}
	for _, account := range settings.SortedAccounts(accounts) {
		view.Accounts = append(view.Accounts, accountItemView{
			Slug:  slug,
			Key:   account.Key,
			Label: account.Label,
			Date:  p.formDate(account.Date),
		})
	}
	return p.render("integration", view)
}

func (p *Provider) accountItem(account providers.Account) string {
	return p.render("account_item", accountItemView{
		Slug:  p.info.Slug,
		Key:   account.Key,
		Label: account.Label,
		Date:  p.formDate(account.Date),
	})
}
