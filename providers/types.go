package providers

import (
	"context"
	"time"

	"github.com/goliatone/go-formbridge/forms"
)

// DefaultPriority orders providers that do not declare one.
const DefaultPriority = 10

// Info describes a provider as shown in the builder and settings screens.
type Info struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
	Type     string `json:"type,omitempty"`
	Version  string `json:"version,omitempty"`
	Priority int    `json:"priority"`
}

// Account is a connected provider account stored in the options record.
type Account struct {
	Key         string            `json:"-" bson:"-"`
	Label       string            `json:"label" bson:"label"`
	Date        time.Time         `json:"date" bson:"date"`
	Credentials map[string]string `json:"credentials,omitempty" bson:"credentials,omitempty"`
}

// List is a provider mailing list.
type List struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Group is a segment inside a list.
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GroupSet is a named collection of groups (interest categories).
type GroupSet struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Groups []Group `json:"groups"`
}

// Field is a merge field exposed by a provider list.
type Field struct {
	Name      string `json:"name"`
	Tag       string `json:"tag"`
	FieldType string `json:"field_type"`
	Required  bool   `json:"req"`
}

// API is the set of calls every provider integration implements.
//
// Auth validates the submitted credentials and returns the account to be
// stored; the caller persists it and assigns the key. Failures should be
// returned as *Error so callers can surface the message.
type API interface {
	Auth(ctx context.Context, data map[string]string, formID string) (Account, error)
	Connect(ctx context.Context, accountID string) error
	Lists(ctx context.Context, connectionID, accountID string) ([]List, error)
	Groups(ctx context.Context, connectionID, accountID, listID string) ([]GroupSet, error)
	Fields(ctx context.Context, connectionID, accountID, listID string) ([]Field, error)
}

// AuthFormRenderer renders the credential inputs used in the builder and in
// the settings new-account form.
type AuthFormRenderer interface {
	OutputAuth(ctx context.Context) string
	NewAccountForm(ctx context.Context) string
}

// OptionsRenderer renders provider specific options for a connection.
type OptionsRenderer interface {
	OutputOptions(ctx context.Context, connectionID string, conn forms.Connection) string
}

// EntryProcessor sends one submission to one connection. It is only invoked
// for connections whose conditional logic allows processing.
type EntryProcessor interface {
	ProcessConnection(ctx context.Context, sub forms.Submission, connectionID string, conn forms.Connection) error
}

// BuilderDecorator adds markup around the builder panel.
type BuilderDecorator interface {
	BuilderOutputBefore(ctx context.Context) string
	BuilderOutputAfter(ctx context.Context) string
}
