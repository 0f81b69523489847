package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formbridge/internal/identity"
	"github.com/goliatone/go-formbridge/internal/runtimeconfig"
)

func stubConfig(t *testing.T) {
	t.Helper()
	original := configLoader
	configLoader = func(...string) (runtimeconfig.Config, error) {
		cfg := runtimeconfig.DefaultConfig()
		cfg.Keys.NonceKey = "nonce"
		cfg.Keys.NonceSalt = "salt"
		cfg.Keys.AuthKey = "auth"
		cfg.Keys.AuthSalt = "salt"
		cfg.Providers.ManifestDir = ""
		return cfg, nil
	}
	t.Cleanup(func() { configLoader = original })
}

func TestRunToken(t *testing.T) {
	stubConfig(t)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"token", "-user", "7", "-roles", "editor"}, &out); err != nil {
		t.Fatalf("run token: %v", err)
	}
	if parts := strings.Split(strings.TrimSpace(out.String()), "."); len(parts) != 3 {
		t.Fatalf("expected a jwt, got %q", out.String())
	}
}

func TestRunProviders(t *testing.T) {
	stubConfig(t)
	var out bytes.Buffer
	if err := run(context.Background(), []string{"providers"}, &out); err != nil {
		t.Fatalf("run providers: %v", err)
	}
	if !strings.HasPrefix(out.String(), "restlist\tREST List\tpriority=10\tembedded:default.md") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"migrate"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" administrator, ,editor ")
	if len(got) != 2 || got[0] != "administrator" || got[1] != "editor" {
		t.Fatalf("unexpected roles %v", got)
	}
}

func TestRunImport(t *testing.T) {
	stubConfig(t)
	stubbed := configLoader
	configLoader = func(paths ...string) (runtimeconfig.Config, error) {
		cfg, err := stubbed(paths...)
		cfg.Storage.Options = "memory"
		return cfg, err
	}

	path := filepath.Join(t.TempDir(), "contact.json")
	body := `{"title":"Contact","fields":[{"id":1,"type":"email","label":"Email"}]}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write definition: %v", err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"import", "-code", "contact", path}, &out); err != nil {
		t.Fatalf("run import: %v", err)
	}
	want := identity.FormUUID("contact").String() + "\tContact\t" + path
	if strings.TrimSpace(out.String()) != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}

	if err := run(context.Background(), []string{"import"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error without definition files")
	}
}
