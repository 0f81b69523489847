package providers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/permissions"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/providers"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
	base "github.com/goliatone/go-formbridge/internal/providers"
)

const testNonce = "valid-nonce"

var errBadNonce = errors.New("bad nonce")

type stubNonces struct{}

func (stubNonces) Verify(token, _, _ string) error {
	if token != testNonce {
		return errBadNonce
	}
	return nil
}

type stubAPI struct {
	lists     []providers.List
	listsErr  error
	groups    []providers.GroupSet
	groupsErr error
	fields    []providers.Field
	fieldsErr error

	account  providers.Account
	authErr  error
	authData map[string]string

	processed  []string
	processErr error
}

func (s *stubAPI) Auth(_ context.Context, data map[string]string, _ string) (providers.Account, error) {
	s.authData = data
	if s.authErr != nil {
		return providers.Account{}, s.authErr
	}
	return s.account, nil
}

func (s *stubAPI) Connect(context.Context, string) error { return nil }

func (s *stubAPI) Lists(context.Context, string, string) ([]providers.List, error) {
	return s.lists, s.listsErr
}

func (s *stubAPI) Groups(context.Context, string, string, string) ([]providers.GroupSet, error) {
	return s.groups, s.groupsErr
}

func (s *stubAPI) Fields(context.Context, string, string, string) ([]providers.Field, error) {
	return s.fields, s.fieldsErr
}

func (s *stubAPI) OutputOptions(_ context.Context, connectionID string, _ forms.Connection) string {
	return `<div class="stub-options" data-connection="` + connectionID + `"></div>`
}

func (s *stubAPI) ProcessConnection(_ context.Context, _ forms.Submission, connectionID string, _ forms.Connection) error {
	if s.processErr != nil {
		return s.processErr
	}
	s.processed = append(s.processed, connectionID)
	return nil
}

func defaultStub() *stubAPI {
	return &stubAPI{
		lists: []providers.List{{ID: "l1", Name: "Newsletter"}, {ID: "l2", Name: "Customers"}},
		groups: []providers.GroupSet{{
			ID:     "gs1",
			Name:   "Interests",
			Groups: []providers.Group{{ID: "g1", Name: "VIP"}, {ID: "g2", Name: "Beta"}},
		}},
		fields: []providers.Field{
			{Name: "Email Address", Tag: "EMAIL", FieldType: "email", Required: true},
			{Name: "First Name", Tag: "FNAME", FieldType: "text"},
		},
		account: providers.Account{Label: "Main Account", Credentials: map[string]string{"api_key": "k"}},
	}
}

var testFormID = uuid.MustParse("7d3f6a52-95c4-4d8c-9d59-1a6f6e2f0c11")

func sampleForm() *forms.Form {
	return &forms.Form{
		ID:    testFormID,
		Title: "Contact",
		Fields: []forms.Field{
			{ID: 1, Type: "name", Label: "Name", Format: "first-last"},
			{ID: 2, Type: "email", Label: "Email"},
			{ID: 3, Type: "textarea", Label: "Message"},
			{ID: 4, Type: "file-upload", Label: "Attachment"},
		},
	}
}

type fixture struct {
	provider *base.Provider
	api      *stubAPI
	settings *settings.Service
	forms    *formstore.MemoryRepository
}

var connectedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T, api *stubAPI, opts ...base.Option) fixture {
	t.Helper()
	svc := settings.NewService(settings.NewMemoryRepository(), settings.WithClock(func() time.Time { return connectedAt }))
	repo := formstore.NewMemoryRepository()

	opts = append([]base.Option{base.WithIDGenerator(func() string { return "connection_fixed" })}, opts...)
	p, err := base.New(base.Config{
		Info:     providers.Info{Slug: "restlist", Name: "REST List", Icon: "/icons/restlist.png", Type: "List"},
		API:      api,
		Settings: svc,
		Forms:    repo,
		Nonces:   stubNonces{},
	}, opts...)
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	return fixture{provider: p, api: api, settings: svc, forms: repo}
}

func (f fixture) addAccount(t *testing.T, key, label string) {
	t.Helper()
	if _, err := f.settings.Add(context.Background(), "restlist", providers.Account{Key: key, Label: label}); err != nil {
		t.Fatalf("add account: %v", err)
	}
}

func (f fixture) storeForm(t *testing.T, form *forms.Form) {
	t.Helper()
	if _, err := f.forms.Create(context.Background(), form); err != nil {
		t.Fatalf("store form: %v", err)
	}
}

func adminContext() context.Context {
	return permissions.WithCapabilities(context.Background(), permissions.ManageOptions)
}

func envelopeField(t *testing.T, env *base.Envelope, key string) string {
	t.Helper()
	if env == nil {
		t.Fatalf("expected envelope, got nil")
	}
	data, ok := env.Data.(map[string]string)
	if !ok {
		t.Fatalf("unexpected envelope data %#v", env.Data)
	}
	return data[key]
}
