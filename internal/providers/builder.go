package providers

import (
	"context"
	"html/template"
	"strings"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/providers"
)

type sidebarView struct {
	Slug       string
	Name       string
	Icon       string
	Configured bool
}

type panelView struct {
	Slug        string
	Name        string
	Type        string
	TypeAttr    string
	FormID      string
	Before      template.HTML
	After       template.HTML
	Connections template.HTML
}

// BuilderSidebar renders the provider entry of the builder sidebar, marked
// as configured when the form has connections for it.
func (p *Provider) BuilderSidebar(_ context.Context, form *forms.Form) string {
	view := sidebarView{Slug: p.info.Slug, Name: p.info.Name, Icon: p.info.Icon}
	if form != nil {
		view.Configured = form.Providers.Configured(p.info.Slug)
	}
	return p.render("sidebar", view)
}

// BuilderContent renders the stored connections of form whose account is
// still connected.
func (p *Provider) BuilderContent(ctx context.Context, form *forms.Form) string {
	if form == nil || !form.Providers.Configured(p.info.Slug) {
		return ""
	}
	record, err := p.settings.All(ctx)
	if err != nil {
		p.logger.Error("providers.accounts_load_failed", "error", err)
		return ""
	}
	accounts := record[p.info.Slug]
	if len(accounts) == 0 {
		return ""
	}

	connections := form.Providers.Connections(p.info.Slug)
	var out strings.Builder
	for _, id := range form.Providers.ConnectionIDs(p.info.Slug) {
		conn := connections[id]
		if conn.AccountID == "" {
			continue
		}
		if _, ok := accounts[conn.AccountID]; !ok {
			continue
		}
		out.WriteString(p.OutputConnection(ctx, id, conn, form))
	}
	return out.String()
}

// BuilderOutput renders the provider's builder panel.
func (p *Provider) BuilderOutput(ctx context.Context, form *forms.Form) string {
	view := panelView{
		Slug:        p.info.Slug,
		Name:        p.info.Name,
		Type:        p.info.Type,
		TypeAttr:    strings.ToLower(p.info.Type),
		Connections: template.HTML(p.BuilderContent(ctx, form)),
	}
	if form != nil {
		view.FormID = form.ID.String()
	}
	if decorator, ok := p.api.(providers.BuilderDecorator); ok {
		view.Before = template.HTML(decorator.BuilderOutputBefore(ctx))
		view.After = template.HTML(decorator.BuilderOutputAfter(ctx))
	}
	return p.render("panel", view)
}
