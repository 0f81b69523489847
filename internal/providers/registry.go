package providers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/pkg/interfaces"
	"github.com/goliatone/go-formbridge/providers"
)

// Hook names a point a provider binds to when registered.
type Hook string

const (
	HookProvidersAvailable Hook = "providers_available"
	HookProviderAjax       Hook = "provider_ajax"
	HookProcessComplete    Hook = "process_complete"
	HookBuilderInit        Hook = "builder_init"
	HookPanelSidebar       Hook = "providers_panel_sidebar"
	HookPanelContent       Hook = "providers_panel_content"
	HookSettingsDisconnect Hook = "settings_provider_disconnect"
	HookSettingsAdd        Hook = "settings_provider_add"
	HookSettingsProviders  Hook = "settings_providers"
)

const providerAjaxActionPrefix = "provider_ajax_"

// Hooks lists every hook a provider is bound to. The provider AJAX hook is
// bound per slug as ProviderAjaxAction(slug).
func Hooks() []Hook {
	return []Hook{
		HookProvidersAvailable,
		HookProviderAjax,
		HookProcessComplete,
		HookBuilderInit,
		HookPanelSidebar,
		HookPanelContent,
		HookSettingsDisconnect,
		HookSettingsAdd,
		HookSettingsProviders,
	}
}

// ProviderAjaxAction returns the AJAX action routed to slug's builder
// dispatch.
func ProviderAjaxAction(slug string) string {
	return providerAjaxActionPrefix + slug
}

// Registry binds providers to hooks and routes calls to them in priority
// order.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*Provider
	bindings  map[Hook][]string
	logger    interfaces.Logger
}

func NewRegistry(logger interfaces.Logger) *Registry {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Registry{
		providers: map[string]*Provider{},
		bindings:  map[Hook][]string{},
		logger:    logger,
	}
}

// Register binds p to every hook. A slug can only be registered once.
func (r *Registry) Register(p *Provider) error {
	if p == nil {
		return ErrSlugRequired
	}
	slug := p.Slug()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[slug]; exists {
		return fmt.Errorf("%w: %s", ErrProviderRegistered, slug)
	}
	r.providers[slug] = p
	for _, hook := range Hooks() {
		r.bindings[hook] = append(r.bindings[hook], slug)
		r.sortLocked(hook)
	}
	r.logger.Info("providers.registered", "provider", slug, "priority", p.info.Priority)
	return nil
}

func (r *Registry) sortLocked(hook Hook) {
	slugs := r.bindings[hook]
	sort.SliceStable(slugs, func(i, j int) bool {
		pi, pj := r.providers[slugs[i]].info.Priority, r.providers[slugs[j]].info.Priority
		if pi != pj {
			return pi < pj
		}
		return slugs[i] < slugs[j]
	})
}

// Bindings lists the slugs bound to hook by priority then slug.
func (r *Registry) Bindings(hook Hook) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.bindings[hook]...)
}

// Provider returns the provider registered under slug.
func (r *Registry) Provider(slug string) (*Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[strings.TrimSpace(slug)]
	return p, ok
}

func (r *Registry) bound(hook Hook) []*Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Provider, 0, len(r.bindings[hook]))
	for _, slug := range r.bindings[hook] {
		out = append(out, r.providers[slug])
	}
	return out
}

// Available lists the registered providers in priority order.
func (r *Registry) Available() []providers.Info {
	bound := r.bound(HookProvidersAvailable)
	out := make([]providers.Info, 0, len(bound))
	for _, p := range bound {
		out = append(out, p.Info())
	}
	return out
}

// AvailableNames maps slug to display name.
func (r *Registry) AvailableNames() map[string]string {
	out := map[string]string{}
	for _, info := range r.Available() {
		out[info.Slug] = info.Name
	}
	return out
}

// ErrUnknownAction is returned by Dispatch for actions no provider serves.
var ErrUnknownAction = errors.New("providers: unknown ajax action")

// Dispatch routes an admin AJAX action. Provider AJAX actions go to the
// provider named in the action; settings actions go to the bound providers
// in priority order until one answers. A nil envelope with a nil error means
// no provider produced a response.
func (r *Registry) Dispatch(ctx context.Context, action string, req Request) (*Envelope, error) {
	action = strings.TrimSpace(action)
	switch {
	case strings.HasPrefix(action, providerAjaxActionPrefix):
		p, ok := r.Provider(strings.TrimPrefix(action, providerAjaxActionPrefix))
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
		}
		return p.ProcessAjax(ctx, req)

	case action == string(HookSettingsDisconnect):
		if bound := r.bound(HookSettingsDisconnect); len(bound) > 0 {
			return bound[0].SettingsDisconnect(ctx, req)
		}
		return nil, nil

	case action == string(HookSettingsAdd):
		for _, p := range r.bound(HookSettingsAdd) {
			env, err := p.SettingsAdd(ctx, req)
			if err != nil || env != nil {
				return env, err
			}
		}
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
}

// BuilderInit loads the form opened in the builder.
func (r *Registry) BuilderInit(ctx context.Context, formID string) (*forms.Form, error) {
	for _, p := range r.bound(HookBuilderInit) {
		if p.forms != nil {
			return p.BuilderFormData(ctx, formID)
		}
	}
	return nil, nil
}

// PanelSidebar renders the sidebar entries of every provider.
func (r *Registry) PanelSidebar(ctx context.Context, form *forms.Form) string {
	var out strings.Builder
	for _, p := range r.bound(HookPanelSidebar) {
		out.WriteString(p.BuilderSidebar(ctx, form))
	}
	return out.String()
}

// PanelContent renders the builder panel of every provider.
func (r *Registry) PanelContent(ctx context.Context, form *forms.Form) string {
	var out strings.Builder
	for _, p := range r.bound(HookPanelContent) {
		out.WriteString(p.BuilderOutput(ctx, form))
	}
	return out.String()
}

// SettingsProviders renders the integrations tab sections.
func (r *Registry) SettingsProviders(ctx context.Context, record settings.Record, focus string) string {
	active := r.AvailableNames()
	var out strings.Builder
	for _, p := range r.bound(HookSettingsProviders) {
		out.WriteString(p.IntegrationsTabOptions(ctx, active, record, focus))
	}
	return out.String()
}

// ProcessComplete runs post-submit processing for every provider. One
// provider failing does not stop the others.
func (r *Registry) ProcessComplete(ctx context.Context, sub forms.Submission) error {
	var errs []error
	for _, p := range r.bound(HookProcessComplete) {
		if err := p.ProcessEntry(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
