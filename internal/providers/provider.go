package providers

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/identity"
	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/pkg/interfaces"
	"github.com/goliatone/go-formbridge/providers"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

const (
	defaultType       = "Connection"
	defaultDateFormat = "January 2, 2006"
)

// NonceVerifier checks a request nonce for an action and user.
type NonceVerifier interface {
	Verify(token, action, user string) error
}

// Provider is the shared base of every provider integration. It owns the
// builder and settings markup, AJAX dispatch and entry processing, and calls
// into the concrete integration through providers.API and the optional
// capability interfaces.
type Provider struct {
	info          providers.Info
	api           providers.API
	settings      *settings.Service
	forms         formstore.Repository
	nonces        NonceVerifier
	logger        interfaces.Logger
	newID         func() string
	fieldTypes    []string
	accountSchema map[string]any
	description   template.HTML
	dateFormat    string
}

// Config wires a Provider.
type Config struct {
	Info     providers.Info
	API      providers.API
	Settings *settings.Service
	Forms    formstore.Repository
	Nonces   NonceVerifier
}

type Option func(*Provider)

func WithLogger(logger interfaces.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithIDGenerator overrides how new connection ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(p *Provider) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// WithFieldTypes overrides the form field types offered for mapping.
func WithFieldTypes(types ...string) Option {
	return func(p *Provider) {
		if len(types) > 0 {
			p.fieldTypes = append([]string(nil), types...)
		}
	}
}

// WithAccountSchema validates new-account data before calling Auth.
func WithAccountSchema(schema map[string]any) Option {
	return func(p *Provider) {
		p.accountSchema = schema
	}
}

// WithDescription sets the markup shown above the settings account list.
func WithDescription(html template.HTML) Option {
	return func(p *Provider) {
		p.description = html
	}
}

// WithDateFormat sets the layout of "Connected on" dates.
func WithDateFormat(layout string) Option {
	return func(p *Provider) {
		if strings.TrimSpace(layout) != "" {
			p.dateFormat = layout
		}
	}
}

// New validates cfg and returns a Provider.
func New(cfg Config, opts ...Option) (*Provider, error) {
	info := cfg.Info
	info.Slug = strings.TrimSpace(info.Slug)
	if info.Slug == "" {
		return nil, ErrSlugRequired
	}
	if cfg.API == nil {
		return nil, fmt.Errorf("%w: %s", ErrAPIRequired, info.Slug)
	}
	if cfg.Settings == nil {
		return nil, fmt.Errorf("%w: %s", ErrSettingsRequired, info.Slug)
	}
	if strings.TrimSpace(info.Name) == "" {
		info.Name = info.Slug
	}
	if strings.TrimSpace(info.Type) == "" {
		info.Type = defaultType
	}
	if info.Priority == 0 {
		info.Priority = providers.DefaultPriority
	}

	p := &Provider{
		info:       info,
		api:        cfg.API,
		settings:   cfg.Settings,
		forms:      cfg.Forms,
		nonces:     cfg.Nonces,
		logger:     logging.NoOp(),
		newID:      identity.ConnectionID,
		dateFormat: defaultDateFormat,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = logging.WithProviderContext(p.logger, info.Slug, "", "")
	return p, nil
}

// Info returns the provider description.
func (p *Provider) Info() providers.Info { return p.info }

func (p *Provider) Slug() string { return p.info.Slug }

// API exposes the concrete integration.
func (p *Provider) API() providers.API { return p.api }

// BuilderFormData loads the form being edited in the builder. A blank or
// malformed id yields a nil form.
func (p *Provider) BuilderFormData(ctx context.Context, formID string) (*forms.Form, error) {
	if p.forms == nil {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(formID))
	if err != nil || id == uuid.Nil {
		return nil, nil
	}
	return p.forms.GetByID(ctx, id)
}

func (p *Provider) formDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(p.dateFormat)
}
