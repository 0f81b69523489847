package commands

import (
	"strings"

	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/pkg/interfaces"
)

// CommandLogger returns the entries module logger tagged with the handler
// name, e.g. "process_entry".
func CommandLogger(provider interfaces.LoggerProvider, handler string) interfaces.Logger {
	fields := map[string]any{"component": "command"}
	if name := strings.TrimSpace(handler); name != "" {
		fields["handler"] = name
	}
	return logging.WithFields(logging.EntriesLogger(provider), fields)
}
