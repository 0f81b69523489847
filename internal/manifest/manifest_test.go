package manifest_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-formbridge/internal/manifest"
	"github.com/goliatone/go-formbridge/internal/validation"
)

func TestParseManifest(t *testing.T) {
	data, err := os.ReadFile("testdata/listmonk.md")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	m, err := manifest.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if m.Info.Slug != "listmonk" {
		t.Fatalf("expected normalized slug, got %q", m.Info.Slug)
	}
	if m.Info.Name != "Listmonk" || m.Info.Type != "list" || m.Info.Priority != 20 {
		t.Fatalf("unexpected info %+v", m.Info)
	}
	if m.Driver != "restlist" || m.APIBaseURL != "https://lists.example.com/api" {
		t.Fatalf("unexpected api settings %q %q", m.Driver, m.APIBaseURL)
	}
	if !strings.Contains(string(m.Description), "<strong>Listmonk</strong>") {
		t.Fatalf("expected rendered description, got %q", m.Description)
	}

	props := validation.Properties(m.AccountSchema)
	if len(props) != 2 || props[0].Name != "api_key" || !props[0].Required {
		t.Fatalf("unexpected account properties %+v", props)
	}
}

func TestParseRequiresName(t *testing.T) {
	_, err := manifest.Parse([]byte("---\nslug: x\n---\n"))
	if !errors.Is(err, manifest.ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestLoadDirOrdersByPriority(t *testing.T) {
	listmonk, _ := os.ReadFile("testdata/listmonk.md")
	bare, _ := os.ReadFile("testdata/bare.md")
	fsys := fstest.MapFS{
		"manifests/listmonk.md": {Data: listmonk},
		"manifests/bare.md":     {Data: bare},
		"manifests/notes.txt":   {Data: []byte("ignored")},
	}

	got, err := manifest.LoadDir(context.Background(), fsys, "manifests")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(got))
	}
	if got[0].Info.Slug != "bare-provider" || got[1].Info.Slug != "listmonk" {
		t.Fatalf("unexpected order %q %q", got[0].Info.Slug, got[1].Info.Slug)
	}
	if got[1].Path != "manifests/listmonk.md" {
		t.Fatalf("unexpected path %q", got[1].Path)
	}
}

func TestLoadDirMissing(t *testing.T) {
	got, err := manifest.LoadDir(context.Background(), fstest.MapFS{}, "manifests")
	if err != nil || got != nil {
		t.Fatalf("expected nothing, got %v %v", got, err)
	}
}

func TestLoadDirRejectsDuplicateSlugs(t *testing.T) {
	bare, _ := os.ReadFile("testdata/bare.md")
	fsys := fstest.MapFS{
		"m/a.md": {Data: bare},
		"m/b.md": {Data: bare},
	}
	if _, err := manifest.LoadDir(context.Background(), fsys, "m"); err == nil {
		t.Fatal("expected duplicate slug error")
	}
}
