package formbridge

import (
	"context"
	"net/http"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/di"
	"github.com/goliatone/go-formbridge/internal/pagebuilder"
	"github.com/goliatone/go-formbridge/internal/providers"
	"github.com/goliatone/go-formbridge/internal/settings"
	providertypes "github.com/goliatone/go-formbridge/providers"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

// Registry exports the provider registry.
type Registry = providers.Registry

// Settings exports the connected-accounts service.
type Settings = settings.Service

// FormRepository exports the form store contract.
type FormRepository = formstore.Repository

// Catalog exports the page builder module catalog.
type Catalog = pagebuilder.Catalog

// FormDefinition exports the JSON form document accepted by ImportForm.
type FormDefinition = formstore.Definition

// Module is the top level formbridge runtime.
type Module struct {
	container *di.Container
}

// New builds a module from cfg and optional container overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

func (m *Module) Registry() *Registry { return m.container.Registry() }

func (m *Module) Settings() *Settings { return m.container.Settings() }

func (m *Module) Forms() FormRepository { return m.container.Forms() }

func (m *Module) Catalog() *Catalog { return m.container.Catalog() }

// Providers lists the registered providers in priority order.
func (m *Module) Providers() []providertypes.Info {
	return m.container.Registry().Available()
}

// ImportForm creates or replaces the form described by def.
func (m *Module) ImportForm(ctx context.Context, def FormDefinition) (*forms.Form, error) {
	return formstore.ImportDefinition(ctx, m.container.Forms(), def)
}

// Migrate creates the tables of the bun-backed stores.
func (m *Module) Migrate(ctx context.Context) error {
	return m.container.Migrate(ctx)
}

// Handler returns the HTTP handler serving the admin screens, admin-ajax
// and entry submissions.
func (m *Module) Handler() (http.Handler, error) {
	server, err := m.container.HTTPServer()
	if err != nil {
		return nil, err
	}
	return server.Handler(), nil
}

// ProcessSubmission runs post-submit provider processing for sub.
func (m *Module) ProcessSubmission(ctx context.Context, sub forms.Submission) error {
	return m.container.Registry().ProcessComplete(ctx, sub)
}
