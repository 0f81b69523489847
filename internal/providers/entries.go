package providers

import (
	"context"
	"errors"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/conditionals"
	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/providers"
)

// ProcessConditionals reports whether conn should receive the submission.
// Connections without conditional logic, or without rules, always process.
// A "stop" conditional type inverts the rule outcome.
func (p *Provider) ProcessConditionals(fields map[int]forms.EntryField, _ map[string]any, _ *forms.Form, conn forms.Connection) bool {
	if !conn.ConditionalLogic || len(conn.Conditionals) == 0 {
		return true
	}
	process := conditionals.Evaluate(fields, conn.Conditionals)
	if conn.ConditionalType == "stop" {
		process = !process
	}
	return process
}

// ProcessEntry sends a completed submission to every connection the form
// holds for this provider. Integrations without an entry processor are
// skipped. Failures are logged and joined; earlier connections are not
// rolled back.
func (p *Provider) ProcessEntry(ctx context.Context, sub forms.Submission) error {
	processor, ok := p.api.(providers.EntryProcessor)
	if !ok || sub.Form == nil {
		return nil
	}

	connections := sub.Form.Providers.Connections(p.info.Slug)
	var errs []error
	for _, id := range sub.Form.Providers.ConnectionIDs(p.info.Slug) {
		conn := connections[id]
		logger := logging.WithProviderContext(p.logger, "", "process_entry", id)
		if conn.AccountID == "" || conn.ListID == "" {
			logger.Debug("providers.entry_connection_incomplete")
			continue
		}
		if !p.ProcessConditionals(sub.Fields, sub.Entry, sub.Form, conn) {
			logger.Debug("providers.entry_skipped_by_conditionals")
			continue
		}
		if err := processor.ProcessConnection(ctx, sub, id, conn); err != nil {
			logger.Error("providers.entry_failed", "entry_id", sub.EntryID, "error", err)
			errs = append(errs, providers.WrapError(p.info.Slug, err))
			continue
		}
		logger.Info("providers.entry_sent", "entry_id", sub.EntryID)
	}
	return errors.Join(errs...)
}
