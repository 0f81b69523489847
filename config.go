package formbridge

import "github.com/goliatone/go-formbridge/internal/runtimeconfig"

var (
	ErrSiteURLRequired        = runtimeconfig.ErrSiteURLRequired
	ErrSiteURLInvalid         = runtimeconfig.ErrSiteURLInvalid
	ErrDatabaseDriverUnknown  = runtimeconfig.ErrDatabaseDriverUnknown
	ErrOptionsStoreUnknown    = runtimeconfig.ErrOptionsStoreUnknown
	ErrMongoURIRequired       = runtimeconfig.ErrMongoURIRequired
	ErrNonceKeyRequired       = runtimeconfig.ErrNonceKeyRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
)

type (
	Config          = runtimeconfig.Config
	SiteConfig      = runtimeconfig.SiteConfig
	DatabaseConfig  = runtimeconfig.DatabaseConfig
	KeysConfig      = runtimeconfig.KeysConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	ServerConfig    = runtimeconfig.ServerConfig
	ProvidersConfig = runtimeconfig.ProvidersConfig
	NonceConfig     = runtimeconfig.NonceConfig
	Features        = runtimeconfig.Features
	LoggingConfig   = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads the site configuration from the given .env files and the
// process environment.
func LoadConfig(paths ...string) (Config, error) {
	return runtimeconfig.LoadEnv(paths...)
}
