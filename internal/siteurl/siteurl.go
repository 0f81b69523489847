package siteurl

import (
	"fmt"
	"net/url"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-formbridge/internal/runtimeconfig"
)

const (
	groupSite  = "site"
	groupAdmin = "admin"

	routeHome         = "home"
	routeEntries      = "entries"
	routeAjax         = "ajax"
	routeBuilder      = "builder"
	routeIntegrations = "integrations"
)

// Builder produces the public and admin URLs of the site. Admin URLs use
// https when FORCE_SSL_ADMIN is set.
type Builder struct {
	manager *urlkit.RouteManager
}

// New builds the route manager from the site configuration.
func New(cfg runtimeconfig.Config) (*Builder, error) {
	site, err := url.Parse(strings.TrimSpace(cfg.Site.SiteURL))
	if err != nil || site.Host == "" {
		return nil, fmt.Errorf("siteurl: invalid site url %q", cfg.Site.SiteURL)
	}
	home := strings.TrimSpace(cfg.Site.HomeURL)
	if home == "" {
		home = site.String()
	}

	admin := *site
	admin.Scheme = cfg.AdminScheme()
	admin.Path = strings.TrimRight(site.Path, "/") + "/" + strings.Trim(cfg.Server.BasePath, "/")

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    groupSite,
				BaseURL: strings.TrimRight(home, "/"),
				Paths: map[string]string{
					routeHome:    "/",
					routeEntries: "/forms/:form_id/entries",
				},
			},
			{
				Name:    groupAdmin,
				BaseURL: strings.TrimRight(admin.String(), "/"),
				Paths: map[string]string{
					routeAjax:         "/admin-ajax",
					routeBuilder:      "/builder/:form_id/providers",
					routeIntegrations: "/settings/integrations",
				},
			},
		},
	})
	return &Builder{manager: manager}, nil
}

// Home returns the front page URL.
func (b *Builder) Home() (string, error) {
	return b.build(groupSite, routeHome, nil, nil)
}

// Entries returns the submission endpoint of a form.
func (b *Builder) Entries(formID string) (string, error) {
	return b.build(groupSite, routeEntries, map[string]any{"form_id": formID}, nil)
}

// Ajax returns the admin AJAX endpoint for action.
func (b *Builder) Ajax(action string) (string, error) {
	var query map[string]string
	if action = strings.TrimSpace(action); action != "" {
		query = map[string]string{"action": action}
	}
	return b.build(groupAdmin, routeAjax, nil, query)
}

// Builder returns the providers panel of the form builder.
func (b *Builder) Builder(formID string) (string, error) {
	return b.build(groupAdmin, routeBuilder, map[string]any{"form_id": formID}, nil)
}

// Integrations returns the settings integrations tab, optionally focused on
// one provider.
func (b *Builder) Integrations(focus string) (string, error) {
	var query map[string]string
	if focus = strings.TrimSpace(focus); focus != "" {
		query = map[string]string{"wpforms-integration": focus}
	}
	return b.build(groupAdmin, routeIntegrations, nil, query)
}

func (b *Builder) build(groupName, route string, params map[string]any, query map[string]string) (out string, err error) {
	if b == nil || b.manager == nil {
		return "", fmt.Errorf("siteurl: builder not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("siteurl: route %s.%s: %v", groupName, route, rec)
		}
	}()

	builder := b.manager.Group(groupName).Builder(route)
	for key, val := range params {
		builder.WithParam(key, val)
	}
	for key, val := range query {
		builder.WithQuery(key, val)
	}
	return builder.Build()
}
