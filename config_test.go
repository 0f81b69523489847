package formbridge_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-formbridge"
	"github.com/goliatone/go-formbridge/forms"
)

func validConfig() formbridge.Config {
	cfg := formbridge.DefaultConfig()
	cfg.Keys.NonceKey = "nonce"
	cfg.Keys.NonceSalt = "salt"
	cfg.Keys.AuthKey = "auth"
	cfg.Keys.AuthSalt = "salt"
	cfg.Providers.ManifestDir = ""
	return cfg
}

func TestConfigValidateRequiresNonceKeys(t *testing.T) {
	cfg := formbridge.DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, formbridge.ErrNonceKeyRequired) {
		t.Fatalf("expected ErrNonceKeyRequired, got %v", err)
	}
}

func TestConfigValidateOptionsStore(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Options = "redis"
	if err := cfg.Validate(); !errors.Is(err, formbridge.ErrOptionsStoreUnknown) {
		t.Fatalf("expected ErrOptionsStoreUnknown, got %v", err)
	}

	cfg.Storage.Options = "mongo"
	if err := cfg.Validate(); !errors.Is(err, formbridge.ErrMongoURIRequired) {
		t.Fatalf("expected ErrMongoURIRequired, got %v", err)
	}
}

func TestModuleWiresDefaultProvider(t *testing.T) {
	module, err := formbridge.New(validConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	infos := module.Providers()
	if len(infos) != 1 || infos[0].Slug != "restlist" {
		t.Fatalf("unexpected providers %+v", infos)
	}
	if err := module.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate without database: %v", err)
	}
	if err := module.ProcessSubmission(context.Background(), forms.Submission{}); err != nil {
		t.Fatalf("ProcessSubmission with no form: %v", err)
	}

	handler, err := module.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}
}

func TestModuleImportForm(t *testing.T) {
	module, err := formbridge.New(validConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	form, err := module.ImportForm(ctx, formbridge.FormDefinition{
		Code:   "newsletter",
		Title:  "Newsletter",
		Fields: []forms.Field{{ID: 1, Type: "email", Label: "Email"}},
	})
	if err != nil {
		t.Fatalf("ImportForm: %v", err)
	}
	stored, err := module.Forms().GetByID(ctx, form.ID)
	if err != nil || stored.Title != "Newsletter" {
		t.Fatalf("expected stored form, got %+v (%v)", stored, err)
	}
}
