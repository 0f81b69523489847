package di

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/goliatone/go-formbridge/internal/commands"
	entriescmd "github.com/goliatone/go-formbridge/internal/commands/entries"
	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/internal/logging/console"
	"github.com/goliatone/go-formbridge/internal/logging/gologger"
	"github.com/goliatone/go-formbridge/internal/manifest"
	"github.com/goliatone/go-formbridge/internal/nonce"
	"github.com/goliatone/go-formbridge/internal/pagebuilder"
	"github.com/goliatone/go-formbridge/internal/providerapi"
	"github.com/goliatone/go-formbridge/internal/providers"
	"github.com/goliatone/go-formbridge/internal/providers/restlist"
	"github.com/goliatone/go-formbridge/internal/runtimeconfig"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/internal/siteurl"
	"github.com/goliatone/go-formbridge/pkg/interfaces"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
	apihttp "github.com/goliatone/go-formbridge/internal/http"
)

const optionsTable = "options"

var ErrUnknownDriver = errors.New("di: unknown provider driver")

// Container wires the formbridge services from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB       *bun.DB
	mongoDB     *mongo.Database
	manifestFS  fs.FS
	httpOptions []providerapi.Option

	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	formRepo     formstore.Repository
	settingsRepo settings.Repository
	settingsSvc  *settings.Service

	nonces        *nonce.Manager
	urls          *siteurl.Builder
	metrics       *prometheus.Registry
	apiMetric     *providerapi.Metrics
	commandMetric *commands.Metrics
	manifests     []manifest.Manifest
	registry      *providers.Registry
	catalog       *pagebuilder.Catalog

	processEntry  *commands.Handler[entriescmd.ProcessEntryCommand]
	saveProviders *commands.Handler[entriescmd.SaveProvidersCommand]
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB stores forms and, unless the options store says otherwise, the
// options record in db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithMongoDatabase backs the options record with a Mongo database when the
// options store is "mongo".
func WithMongoDatabase(db *mongo.Database) Option {
	return func(c *Container) {
		c.mongoDB = db
	}
}

// WithCache overrides the default repository cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the logger provider chosen from the config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithFormRepository overrides the form store.
func WithFormRepository(repo formstore.Repository) Option {
	return func(c *Container) {
		c.formRepo = repo
	}
}

// WithSettingsRepository overrides the options record store.
func WithSettingsRepository(repo settings.Repository) Option {
	return func(c *Container) {
		c.settingsRepo = repo
	}
}

// WithManifestFS reads provider manifests from fsys instead of the
// configured manifest directory.
func WithManifestFS(fsys fs.FS) Option {
	return func(c *Container) {
		c.manifestFS = fsys
	}
}

// WithProviderAPIOptions appends options to every provider API client.
func WithProviderAPIOptions(opts ...providerapi.Option) Option {
	return func(c *Container) {
		c.httpOptions = append(c.httpOptions, opts...)
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{Config: cfg, cacheTTL: cacheTTL}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureRepositories(); err != nil {
		return nil, err
	}
	if err := c.configureSecurity(); err != nil {
		return nil, err
	}
	c.configureMetrics()
	if err := c.configureProviders(context.Background()); err != nil {
		return nil, err
	}
	if err := c.configurePageBuilder(); err != nil {
		return nil, err
	}
	c.configureCommands()

	logging.RootLogger(c.loggerProvider).Info("formbridge.container.ready",
		"providers", len(c.manifests),
		"options_store", c.Config.Storage.Options,
		"metrics", c.metrics != nil,
	)
	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	logCfg := c.Config.Logging
	switch strings.ToLower(strings.TrimSpace(logCfg.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     logCfg.Level,
			Format:    logCfg.Format,
			AddSource: logCfg.AddSource,
			Focus:     logCfg.Focus,
		})
		if err != nil {
			return fmt.Errorf("di: configure go-logger: %w", err)
		}
		c.loggerProvider = provider
	default:
		level := console.ParseLevel(logCfg.Level)
		c.loggerProvider = console.NewProvider(console.Options{Writer: os.Stdout, MinLevel: &level})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() error {
	if c.formRepo == nil {
		if c.bunDB != nil {
			c.formRepo = formstore.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		} else {
			c.formRepo = formstore.NewMemoryRepository()
		}
	}

	if c.settingsRepo == nil {
		switch strings.ToLower(strings.TrimSpace(c.Config.Storage.Options)) {
		case "mongo":
			if c.mongoDB == nil {
				return fmt.Errorf("di: options store is mongo but no database was supplied")
			}
			c.settingsRepo = settings.NewMongoRepository(c.mongoDB, c.Config.Table(optionsTable))
		case "memory":
			c.settingsRepo = settings.NewMemoryRepository()
		default:
			if c.bunDB != nil {
				c.settingsRepo = settings.NewBunRepository(c.bunDB, c.Config.Table(optionsTable))
			} else {
				c.settingsRepo = settings.NewMemoryRepository()
			}
		}
	}

	c.settingsSvc = settings.NewService(c.settingsRepo,
		settings.WithLogger(logging.SettingsLogger(c.loggerProvider)),
	)
	return nil
}

func (c *Container) configureSecurity() error {
	manager, err := nonce.NewManager(c.Config.Keys.NonceSecret(), c.Config.Nonce.TTL)
	if err != nil {
		return fmt.Errorf("di: configure nonces: %w", err)
	}
	c.nonces = manager

	urls, err := siteurl.New(c.Config)
	if err != nil {
		return fmt.Errorf("di: configure site urls: %w", err)
	}
	c.urls = urls
	return nil
}

func (c *Container) configureMetrics() {
	if !c.Config.Features.Metrics {
		return
	}
	c.metrics = prometheus.NewRegistry()
	c.metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	c.apiMetric = providerapi.NewMetrics(c.metrics)
	c.commandMetric = commands.NewMetrics(c.metrics)
}

// configureProviders loads the provider manifests and registers one provider
// per manifest. The embedded default manifest is used when none are found.
func (c *Container) configureProviders(ctx context.Context) error {
	fsys := c.manifestFS
	if fsys == nil && strings.TrimSpace(c.Config.Providers.ManifestDir) != "" {
		fsys = os.DirFS(c.Config.Providers.ManifestDir)
	}

	var manifests []manifest.Manifest
	if fsys != nil {
		loaded, err := manifest.LoadDir(ctx, fsys, ".")
		if err != nil {
			return fmt.Errorf("di: load manifests: %w", err)
		}
		manifests = loaded
	}
	if len(manifests) == 0 {
		fallback, err := restlist.DefaultManifest()
		if err != nil {
			return fmt.Errorf("di: default manifest: %w", err)
		}
		manifests = []manifest.Manifest{fallback}
	}

	providersLogger := logging.ProvidersLogger(c.loggerProvider)
	c.registry = providers.NewRegistry(providersLogger)
	for _, m := range manifests {
		p, err := c.buildProvider(m, providersLogger)
		if err != nil {
			return err
		}
		if err := c.registry.Register(p); err != nil {
			return fmt.Errorf("di: register %s: %w", m.Info.Slug, err)
		}
	}
	c.manifests = manifests
	return nil
}

func (c *Container) buildProvider(m manifest.Manifest, logger interfaces.Logger) (*providers.Provider, error) {
	driver := strings.ToLower(strings.TrimSpace(m.Driver))
	if driver != "" && driver != restlist.Driver {
		return nil, fmt.Errorf("%w: %s (%s)", ErrUnknownDriver, m.Driver, m.Info.Slug)
	}

	clientCfg := providerapi.DefaultConfig()
	clientCfg.Provider = m.Info.Slug
	if c.Config.Providers.HTTPTimeout > 0 {
		clientCfg.Timeout = c.Config.Providers.HTTPTimeout
	}
	clientOpts := []providerapi.Option{providerapi.WithLogger(logger)}
	if c.apiMetric != nil {
		clientOpts = append(clientOpts, providerapi.WithMetrics(c.apiMetric))
	}
	clientOpts = append(clientOpts, c.httpOptions...)

	api, err := restlist.New(restlist.Config{
		Manifest: m,
		Settings: c.settingsSvc,
		Client:   providerapi.NewClient(clientCfg, clientOpts...),
	}, restlist.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("di: provider %s: %w", m.Info.Slug, err)
	}

	return providers.New(providers.Config{
		Info:     m.Info,
		API:      api,
		Settings: c.settingsSvc,
		Forms:    c.formRepo,
		Nonces:   c.nonces,
	},
		providers.WithLogger(logger),
		providers.WithAccountSchema(m.AccountSchema),
		providers.WithDescription(m.Description),
	)
}

func (c *Container) configurePageBuilder() error {
	catalog, err := pagebuilder.DefaultCatalog()
	if err != nil {
		return fmt.Errorf("di: page builder catalog: %w", err)
	}
	catalog.RegisterSource("forms", c.formOptions)
	c.catalog = catalog
	return nil
}

func (c *Container) formOptions(ctx context.Context) ([]pagebuilder.Option, error) {
	list, err := c.formRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]pagebuilder.Option, 0, len(list))
	for _, form := range list {
		out = append(out, pagebuilder.Option{Value: form.ID.String(), Label: form.Title})
	}
	return out, nil
}

func (c *Container) configureCommands() {
	var metrics entriescmd.Option
	if c.commandMetric != nil {
		metrics = entriescmd.WithMetrics(c.commandMetric)
	}
	c.processEntry = entriescmd.NewProcessEntryHandler(c.formRepo, c.registry,
		entriescmd.WithLogger(commands.CommandLogger(c.loggerProvider, "process_entry")), metrics)
	c.saveProviders = entriescmd.NewSaveProvidersHandler(c.formRepo,
		entriescmd.WithLogger(commands.CommandLogger(c.loggerProvider, "save_providers")), metrics)
}

// Migrate creates the tables used by the bun-backed stores. It is a no-op
// without a bun database.
func (c *Container) Migrate(ctx context.Context) error {
	if c.bunDB == nil {
		return nil
	}
	if err := formstore.EnsureSchema(ctx, c.bunDB); err != nil {
		return err
	}
	logging.FormsLogger(c.loggerProvider).Debug("forms.schema.ensured", "table", "forms")
	if repo, ok := c.settingsRepo.(*settings.BunRepository); ok {
		return repo.EnsureSchema(ctx)
	}
	return nil
}

// HTTPServer builds the admin and submission HTTP server.
func (c *Container) HTTPServer() (*apihttp.Server, error) {
	cfg := apihttp.Config{
		BasePath:      c.Config.Server.BasePath,
		Registry:      c.registry,
		Settings:      c.settingsSvc,
		Nonces:        c.nonces,
		URLs:          c.urls,
		Catalog:       c.catalog,
		ProcessEntry:  c.processEntry,
		SaveProviders: c.saveProviders,
		AuthSecret:    c.Config.Keys.AuthSecret(),
		Logger:        logging.HTTPLogger(c.loggerProvider),
	}
	if c.metrics != nil {
		cfg.Gatherer = c.metrics
	}
	return apihttp.New(cfg)
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }

func (c *Container) Registry() *providers.Registry { return c.registry }

func (c *Container) Settings() *settings.Service { return c.settingsSvc }

func (c *Container) Forms() formstore.Repository { return c.formRepo }

func (c *Container) Nonces() *nonce.Manager { return c.nonces }

func (c *Container) URLs() *siteurl.Builder { return c.urls }

func (c *Container) Catalog() *pagebuilder.Catalog { return c.catalog }

// Manifests lists the provider manifests the registry was built from.
func (c *Container) Manifests() []manifest.Manifest {
	return append([]manifest.Manifest(nil), c.manifests...)
}

// MetricsRegistry is nil unless metrics are enabled.
func (c *Container) MetricsRegistry() *prometheus.Registry { return c.metrics }

func (c *Container) ProcessEntryHandler() *commands.Handler[entriescmd.ProcessEntryCommand] {
	return c.processEntry
}

func (c *Container) SaveProvidersHandler() *commands.Handler[entriescmd.SaveProvidersCommand] {
	return c.saveProviders
}
