package commands

import (
	"errors"
	"fmt"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"

	"github.com/goliatone/go-formbridge/internal/commands"
	entriescmd "github.com/goliatone/go-formbridge/internal/commands/entries"
	"github.com/goliatone/go-formbridge/internal/di"
)

// CommandRegistry records command handlers so hosts can expose them via CLI.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered.
type RegistrationOptions struct {
	Registry   CommandRegistry
	Dispatcher CommandDispatcher
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Close releases every dispatcher subscription.
func (r *RegistrationResult) Close() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands exposes the entry and builder command handlers
// of container through the given registry and dispatcher.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}
	if container == nil {
		return result, nil
	}

	var errs error
	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	if handler := container.ProcessEntryHandler(); handler != nil {
		register(handler)
	}
	if handler := container.SaveProvidersHandler(); handler != nil {
		register(handler)
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure the container is configured")
	}
	return result, errs
}

// GoCommandDispatcher subscribes handlers to the go-command dispatcher.
type GoCommandDispatcher struct {
	Options []runner.Option
}

var ErrUnsupportedHandler = errors.New("commands: unsupported handler type")

func (d GoCommandDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case command.Commander[entriescmd.ProcessEntryCommand]:
		return dispatcher.SubscribeCommand(h, d.Options...), nil
	case command.Commander[entriescmd.SaveProvidersCommand]:
		return dispatcher.SubscribeCommand(h, d.Options...), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedHandler, handler)
}

var _ command.Commander[entriescmd.ProcessEntryCommand] = (*commands.Handler[entriescmd.ProcessEntryCommand])(nil)
