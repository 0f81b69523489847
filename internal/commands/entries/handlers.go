package entriescmd

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/commands"
	"github.com/goliatone/go-formbridge/pkg/interfaces"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

// Completer runs post-submit processing. The provider registry implements
// it.
type Completer interface {
	ProcessComplete(ctx context.Context, sub forms.Submission) error
}

type Option func(*options)

type options struct {
	logger  interfaces.Logger
	timeout time.Duration
	metrics *commands.Metrics
}

func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithMetrics records executions on metrics besides logging them.
func WithMetrics(metrics *commands.Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

func resolve(opts []Option) options {
	o := options{timeout: commands.DefaultCommandTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	o.logger = commands.EnsureLogger(o.logger)
	return o
}

// NewProcessEntryHandler loads the submission's form and hands it to
// completer.
func NewProcessEntryHandler(repo formstore.Repository, completer Completer, opts ...Option) *commands.Handler[ProcessEntryCommand] {
	o := resolve(opts)
	return commands.NewHandler(func(ctx context.Context, msg ProcessEntryCommand) error {
		form, err := repo.GetByID(ctx, uuid.MustParse(msg.FormID))
		if err != nil {
			return err
		}
		return completer.ProcessComplete(ctx, forms.Submission{
			Form:    form,
			Fields:  msg.Fields,
			Entry:   msg.Entry,
			EntryID: msg.EntryID,
		})
	},
		commands.WithLogger[ProcessEntryCommand](o.logger),
		commands.WithTimeout[ProcessEntryCommand](o.timeout),
		commands.WithOperation[ProcessEntryCommand]("entries.process"),
		commands.WithTelemetry[ProcessEntryCommand](commands.MetricsTelemetry[ProcessEntryCommand](o.logger, o.metrics)),
	)
}

// NewSaveProvidersHandler stores the builder's provider connections on the
// form.
func NewSaveProvidersHandler(repo formstore.Repository, opts ...Option) *commands.Handler[SaveProvidersCommand] {
	o := resolve(opts)
	return commands.NewHandler(func(ctx context.Context, msg SaveProvidersCommand) error {
		form, err := repo.GetByID(ctx, uuid.MustParse(msg.FormID))
		if err != nil {
			return err
		}
		form.Providers = msg.Providers
		_, err = repo.Update(ctx, form)
		return err
	},
		commands.WithLogger[SaveProvidersCommand](o.logger),
		commands.WithTimeout[SaveProvidersCommand](o.timeout),
		commands.WithOperation[SaveProvidersCommand]("forms.providers.save"),
		commands.WithTelemetry[SaveProvidersCommand](commands.MetricsTelemetry[SaveProvidersCommand](o.logger, o.metrics)),
	)
}
