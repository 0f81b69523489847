package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var (
	ErrSiteURLRequired        = errors.New("formbridge config: site url is required")
	ErrSiteURLInvalid         = errors.New("formbridge config: site url must be an absolute http(s) url")
	ErrHomeURLInvalid         = errors.New("formbridge config: home url must be an absolute http(s) url")
	ErrDatabaseNameRequired   = errors.New("formbridge config: database name is required")
	ErrDatabaseDriverUnknown  = errors.New("formbridge config: database driver is invalid")
	ErrTablePrefixInvalid     = errors.New("formbridge config: table prefix may only contain letters, numbers and underscores")
	ErrOptionsStoreUnknown    = errors.New("formbridge config: options store is invalid")
	ErrMongoURIRequired       = errors.New("formbridge config: mongo uri is required for the mongo options store")
	ErrNonceKeyRequired       = errors.New("formbridge config: nonce key and salt are required")
	ErrNonceTTLInvalid        = errors.New("formbridge config: nonce lifetime must be positive")
	ErrLoggingProviderUnknown = errors.New("formbridge config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("formbridge config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("formbridge config: logging format is invalid")
)

// Config carries everything the runtime needs to boot: database parameters,
// secret keys, site URLs and module options.
type Config struct {
	Site      SiteConfig
	Database  DatabaseConfig
	Keys      KeysConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Server    ServerConfig
	Providers ProvidersConfig
	Nonce     NonceConfig
	Features  Features
	Logging   LoggingConfig
}

// SiteConfig holds the public addresses of the site and admin behaviour.
type SiteConfig struct {
	SiteURL       string
	HomeURL       string
	ForceSSLAdmin bool
	Debug         bool
}

// DatabaseConfig mirrors the classic DB_* settings.
type DatabaseConfig struct {
	Driver      string
	Name        string
	User        string
	Password    string
	Host        string
	Charset     string
	Collate     string
	TablePrefix string
}

// KeysConfig holds the authentication keys and salts.
type KeysConfig struct {
	AuthKey        string
	SecureAuthKey  string
	LoggedInKey    string
	NonceKey       string
	AuthSalt       string
	SecureAuthSalt string
	LoggedInSalt   string
	NonceSalt      string
}

// AuthSecret combines the auth key and salt into the session token secret.
func (k KeysConfig) AuthSecret() []byte {
	return []byte(k.AuthKey + k.AuthSalt)
}

// NonceSecret combines the nonce key and salt into the signing secret.
func (k KeysConfig) NonceSecret() []byte {
	return []byte(k.NonceKey + k.NonceSalt)
}

// StorageConfig selects where the options record lives.
type StorageConfig struct {
	Options       string
	MongoURI      string
	MongoDatabase string
}

type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

type ServerConfig struct {
	Addr     string
	BasePath string
}

// ProvidersConfig configures provider manifests and outbound API calls.
type ProvidersConfig struct {
	ManifestDir string
	HTTPTimeout time.Duration
}

type NonceConfig struct {
	TTL time.Duration
}

// Features toggles optional wiring.
type Features struct {
	Logger  bool
	Metrics bool
}

// LoggingConfig selects the logger provider and its options.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns a local development configuration backed by SQLite.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			SiteURL: "http://localhost:8080",
			HomeURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			Name:        "formbridge.db",
			Host:        "localhost",
			Charset:     "utf8mb4",
			TablePrefix: "wp_",
		},
		Storage: StorageConfig{
			Options:       "bun",
			MongoDatabase: "formbridge",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Server: ServerConfig{
			Addr:     ":8080",
			BasePath: "/wp-admin",
		},
		Providers: ProvidersConfig{
			ManifestDir: "manifests",
			HTTPTimeout: 15 * time.Second,
		},
		Nonce: NonceConfig{
			TTL: 12 * time.Hour,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

var tablePrefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	site := strings.TrimSpace(cfg.Site.SiteURL)
	if site == "" {
		return ErrSiteURLRequired
	}
	if !isHTTPURL(site) {
		return fmt.Errorf("%w: %s", ErrSiteURLInvalid, site)
	}
	if home := strings.TrimSpace(cfg.Site.HomeURL); home != "" && !isHTTPURL(home) {
		return fmt.Errorf("%w: %s", ErrHomeURLInvalid, home)
	}

	switch normalize(cfg.Database.Driver) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, cfg.Database.Driver)
	}
	if strings.TrimSpace(cfg.Database.Name) == "" {
		return ErrDatabaseNameRequired
	}
	if !tablePrefixPattern.MatchString(cfg.Database.TablePrefix) {
		return fmt.Errorf("%w: %q", ErrTablePrefixInvalid, cfg.Database.TablePrefix)
	}

	switch normalize(cfg.Storage.Options) {
	case "", "bun", "memory":
	case "mongo":
		if strings.TrimSpace(cfg.Storage.MongoURI) == "" {
			return ErrMongoURIRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrOptionsStoreUnknown, cfg.Storage.Options)
	}

	if strings.TrimSpace(cfg.Keys.NonceKey) == "" || strings.TrimSpace(cfg.Keys.NonceSalt) == "" {
		return ErrNonceKeyRequired
	}
	if cfg.Nonce.TTL <= 0 {
		return ErrNonceTTLInvalid
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider != "console" && provider != "gologger" {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		switch level := normalize(cfg.Logging.Level); level {
		case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
		default:
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			switch format := normalize(cfg.Logging.Format); format {
			case "", "json", "console", "pretty":
			default:
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// AdminScheme is "https" when admin pages must be served over TLS.
func (cfg Config) AdminScheme() string {
	if cfg.Site.ForceSSLAdmin {
		return "https"
	}
	if parsed, err := url.Parse(cfg.Site.SiteURL); err == nil && parsed.Scheme != "" {
		return parsed.Scheme
	}
	return "http"
}

// Table prefixes name with the configured table prefix.
func (cfg Config) Table(name string) string {
	return cfg.Database.TablePrefix + name
}

func isHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
