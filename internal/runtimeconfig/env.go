package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LookupFunc resolves a configuration variable.
type LookupFunc func(key string) (string, bool)

// LoadEnv builds a Config from DefaultConfig, the given .env files and the
// process environment. Process variables win over file values; files that do
// not exist are skipped.
func LoadEnv(paths ...string) (Config, error) {
	fileValues := map[string]string{}
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(path)
		if err != nil {
			return Config{}, fmt.Errorf("formbridge config: read %s: %w", path, err)
		}
		for key, value := range values {
			fileValues[key] = value
		}
	}

	lookup := func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}
		value, ok := fileValues[key]
		return value, ok
	}

	cfg := DefaultConfig()
	if err := Apply(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv reads dotenv formatted content into a Config.
func ParseEnv(content string) (Config, error) {
	values, err := godotenv.Unmarshal(content)
	if err != nil {
		return Config{}, fmt.Errorf("formbridge config: parse env: %w", err)
	}
	cfg := DefaultConfig()
	err = Apply(&cfg, func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	})
	return cfg, err
}

// Apply overlays variables resolved through lookup onto cfg.
func Apply(cfg *Config, lookup LookupFunc) error {
	if cfg == nil || lookup == nil {
		return nil
	}
	a := applier{lookup: lookup}

	a.str("DB_DRIVER", &cfg.Database.Driver)
	a.str("DB_NAME", &cfg.Database.Name)
	a.str("DB_USER", &cfg.Database.User)
	a.str("DB_PASSWORD", &cfg.Database.Password)
	a.str("DB_HOST", &cfg.Database.Host)
	a.str("DB_CHARSET", &cfg.Database.Charset)
	a.str("DB_COLLATE", &cfg.Database.Collate)
	a.str("TABLE_PREFIX", &cfg.Database.TablePrefix)

	a.str("AUTH_KEY", &cfg.Keys.AuthKey)
	a.str("SECURE_AUTH_KEY", &cfg.Keys.SecureAuthKey)
	a.str("LOGGED_IN_KEY", &cfg.Keys.LoggedInKey)
	a.str("NONCE_KEY", &cfg.Keys.NonceKey)
	a.str("AUTH_SALT", &cfg.Keys.AuthSalt)
	a.str("SECURE_AUTH_SALT", &cfg.Keys.SecureAuthSalt)
	a.str("LOGGED_IN_SALT", &cfg.Keys.LoggedInSalt)
	a.str("NONCE_SALT", &cfg.Keys.NonceSalt)

	a.str("SITE_URL", &cfg.Site.SiteURL)
	a.str("HOME_URL", &cfg.Site.HomeURL)
	a.boolean("FORCE_SSL_ADMIN", &cfg.Site.ForceSSLAdmin)
	a.boolean("DEBUG", &cfg.Site.Debug)

	a.str("FORMBRIDGE_ADDR", &cfg.Server.Addr)
	a.str("FORMBRIDGE_BASE_PATH", &cfg.Server.BasePath)
	a.str("FORMBRIDGE_OPTIONS_STORE", &cfg.Storage.Options)
	a.str("FORMBRIDGE_MONGO_URI", &cfg.Storage.MongoURI)
	a.str("FORMBRIDGE_MONGO_DATABASE", &cfg.Storage.MongoDatabase)
	a.boolean("FORMBRIDGE_CACHE", &cfg.Cache.Enabled)
	a.duration("FORMBRIDGE_CACHE_TTL", &cfg.Cache.DefaultTTL)
	a.str("FORMBRIDGE_MANIFEST_DIR", &cfg.Providers.ManifestDir)
	a.duration("FORMBRIDGE_PROVIDER_TIMEOUT", &cfg.Providers.HTTPTimeout)
	a.duration("FORMBRIDGE_NONCE_TTL", &cfg.Nonce.TTL)
	a.boolean("FORMBRIDGE_METRICS", &cfg.Features.Metrics)
	a.boolean("FORMBRIDGE_LOGGER", &cfg.Features.Logger)
	a.str("FORMBRIDGE_LOG_PROVIDER", &cfg.Logging.Provider)
	a.str("FORMBRIDGE_LOG_LEVEL", &cfg.Logging.Level)
	a.str("FORMBRIDGE_LOG_FORMAT", &cfg.Logging.Format)
	a.boolean("FORMBRIDGE_LOG_SOURCE", &cfg.Logging.AddSource)
	if focus, ok := lookup("FORMBRIDGE_LOG_FOCUS"); ok {
		cfg.Logging.Focus = splitList(focus)
	}

	if cfg.Site.Debug && normalize(cfg.Logging.Level) == "info" {
		cfg.Logging.Level = "debug"
	}
	return a.err
}

type applier struct {
	lookup LookupFunc
	err    error
}

func (a *applier) str(key string, dst *string) {
	if value, ok := a.lookup(key); ok {
		*dst = strings.TrimSpace(value)
	}
}

func (a *applier) boolean(key string, dst *bool) {
	value, ok := a.lookup(key)
	if !ok || a.err != nil {
		return
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		a.err = fmt.Errorf("formbridge config: %s: %w", key, err)
		return
	}
	*dst = parsed
}

func (a *applier) duration(key string, dst *time.Duration) {
	value, ok := a.lookup(key)
	if !ok || a.err != nil {
		return
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		a.err = fmt.Errorf("formbridge config: %s: %w", key, err)
		return
	}
	*dst = parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
