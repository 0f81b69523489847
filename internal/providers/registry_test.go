package providers_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/settings"
	"github.com/goliatone/go-formbridge/providers"

	base "github.com/goliatone/go-formbridge/internal/providers"
)

func newNamedProvider(t *testing.T, svc *settings.Service, slug string, priority int, api *stubAPI) *base.Provider {
	t.Helper()
	p, err := base.New(base.Config{
		Info:     providers.Info{Slug: slug, Name: strings.ToUpper(slug), Priority: priority},
		API:      api,
		Settings: svc,
		Nonces:   stubNonces{},
	})
	if err != nil {
		t.Fatalf("new provider %s: %v", slug, err)
	}
	return p
}

func TestRegistryOrdersByPriorityThenSlug(t *testing.T) {
	svc := settings.NewService(settings.NewMemoryRepository())
	reg := base.NewRegistry(nil)
	for _, p := range []*base.Provider{
		newNamedProvider(t, svc, "zeta", 0, defaultStub()),
		newNamedProvider(t, svc, "alpha", 20, defaultStub()),
		newNamedProvider(t, svc, "beta", 5, defaultStub()),
		newNamedProvider(t, svc, "gamma", 0, defaultStub()),
	} {
		if err := reg.Register(p); err != nil {
			t.Fatalf("register: %v", err)
		}
	}

	want := []string{"beta", "gamma", "zeta", "alpha"}
	for _, hook := range base.Hooks() {
		if got := reg.Bindings(hook); !reflect.DeepEqual(got, want) {
			t.Fatalf("hook %s: want %v, got %v", hook, want, got)
		}
	}
	names := reg.AvailableNames()
	if names["gamma"] != "GAMMA" || len(names) != 4 {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestRegistryRejectsDuplicateSlug(t *testing.T) {
	svc := settings.NewService(settings.NewMemoryRepository())
	reg := base.NewRegistry(nil)
	if err := reg.Register(newNamedProvider(t, svc, "restlist", 0, defaultStub())); err != nil {
		t.Fatalf("register: %v", err)
	}
	err := reg.Register(newNamedProvider(t, svc, "restlist", 0, defaultStub()))
	if !errors.Is(err, base.ErrProviderRegistered) {
		t.Fatalf("expected ErrProviderRegistered, got %v", err)
	}
	if len(reg.Available()) != 1 {
		t.Fatalf("duplicate must not be bound")
	}
}

func TestRegistryDispatch(t *testing.T) {
	f := newFixture(t, defaultStub())
	f.addAccount(t, "acc1", "Main Account")
	reg := base.NewRegistry(nil)
	if err := reg.Register(f.provider); err != nil {
		t.Fatalf("register: %v", err)
	}
	ctx := adminContext()

	env, err := reg.Dispatch(ctx, base.ProviderAjaxAction("restlist"), base.Request{Task: base.TaskSelectAccount, Nonce: testNonce, ConnectionID: "c1", AccountID: "acc1"})
	if err != nil || !env.Success {
		t.Fatalf("provider ajax: %+v %v", env, err)
	}

	if _, err := reg.Dispatch(ctx, base.ProviderAjaxAction("missing"), base.Request{}); !errors.Is(err, base.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if _, err := reg.Dispatch(ctx, "heartbeat", base.Request{}); !errors.Is(err, base.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}

	env, err = reg.Dispatch(ctx, string(base.HookSettingsAdd), base.Request{Provider: "unknown", Nonce: testNonce, Data: map[string]string{"a": "b"}})
	if env != nil || err != nil {
		t.Fatalf("expected no answer for unknown provider, got %+v %v", env, err)
	}

	env, err = reg.Dispatch(ctx, string(base.HookSettingsDisconnect), base.Request{Provider: "restlist", Key: "acc1", Nonce: testNonce})
	if err != nil || !env.Success {
		t.Fatalf("disconnect: %+v %v", env, err)
	}
}

func TestRegistryProcessCompleteRunsEveryProvider(t *testing.T) {
	svc := settings.NewService(settings.NewMemoryRepository())
	failing := defaultStub()
	failing.processErr = errors.New("down")
	ok := defaultStub()

	reg := base.NewRegistry(nil)
	_ = reg.Register(newNamedProvider(t, svc, "first", 1, failing))
	_ = reg.Register(newNamedProvider(t, svc, "second", 2, ok))

	form := &forms.Form{Providers: forms.Providers{
		"first":  {"connection_1": {AccountID: "a", ListID: "l"}},
		"second": {"connection_2": {AccountID: "a", ListID: "l"}},
	}}
	err := reg.ProcessComplete(context.Background(), forms.Submission{Form: form})
	if err == nil {
		t.Fatal("expected the failing provider's error")
	}
	if !reflect.DeepEqual(ok.processed, []string{"connection_2"}) {
		t.Fatalf("second provider should still run, got %v", ok.processed)
	}
}

func TestRegistryBuilderInit(t *testing.T) {
	f := newFixture(t, defaultStub())
	f.storeForm(t, sampleForm())
	reg := base.NewRegistry(nil)
	_ = reg.Register(f.provider)

	form, err := reg.BuilderInit(context.Background(), testFormID.String())
	if err != nil || form == nil || form.Title != "Contact" {
		t.Fatalf("unexpected form %+v %v", form, err)
	}
}
