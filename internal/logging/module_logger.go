package logging

import (
	"context"

	"github.com/goliatone/go-formbridge/pkg/interfaces"
)

const (
	rootModule      = "formbridge"
	providersModule = "formbridge.providers"
	httpModule      = "formbridge.http"
	settingsModule  = "formbridge.settings"
	formsModule     = "formbridge.forms"
	entriesModule   = "formbridge.entries"
)

const (
	fieldProvider   = "provider"
	fieldTask       = "task"
	fieldConnection = "connection_id"
)

// ModuleLogger returns a logger for module, tagged with a "module" field.
// A nil provider yields a no-op logger.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	var logger interfaces.Logger = noopLogger{}
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return WithFields(logger, map[string]any{"module": module})
}

func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rootModule)
}

// ProvidersLogger is used by the provider base and concrete integrations.
func ProvidersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, providersModule)
}

func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// SettingsLogger covers the options record and connected accounts.
func SettingsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, settingsModule)
}

func FormsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, formsModule)
}

// EntriesLogger covers post-submit processing.
func EntriesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, entriesModule)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger { return n }

func (n noopLogger) WithContext(context.Context) interfaces.Logger { return n }
