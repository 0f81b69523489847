package logging

import (
	"maps"
	"strings"

	"github.com/goliatone/go-formbridge/pkg/interfaces"
)

// WithFields attaches fields when the logger supports FieldsLogger and
// returns it unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}
	return logger
}

// WithProviderContext tags a logger with the provider slug, the AJAX task and
// the connection being worked on. Blank values are skipped.
func WithProviderContext(logger interfaces.Logger, slug, task, connectionID string) interfaces.Logger {
	fields := map[string]any{}
	if v := strings.TrimSpace(slug); v != "" {
		fields[fieldProvider] = v
	}
	if v := strings.TrimSpace(task); v != "" {
		fields[fieldTask] = v
	}
	if v := strings.TrimSpace(connectionID); v != "" {
		fields[fieldConnection] = v
	}
	return WithFields(logger, fields)
}
