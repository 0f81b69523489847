package validation

import (
	"errors"
	"testing"
)

func accountSchema() map[string]any {
	return map[string]any{
		"fields": []any{
			map[string]any{"name": "api_key", "label": "API Key", "required": true, "format": "password"},
			map[string]any{"name": "label", "label": "Account Nickname", "required": true},
		},
	}
}

func TestValidateAccountDataRequiresFields(t *testing.T) {
	err := ValidateAccountData(accountSchema(), map[string]string{"api_key": "  "})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if len(Issues(err)) == 0 {
		t.Fatalf("expected issues, got none")
	}
}

func TestValidateAccountDataAccepts(t *testing.T) {
	err := ValidateAccountData(accountSchema(), map[string]string{"api_key": "abc", "label": "Main"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAccountDataRejectsUnknownKeys(t *testing.T) {
	err := ValidateAccountData(accountSchema(), map[string]string{"api_key": "abc", "label": "Main", "extra": "x"})
	if err == nil {
		t.Fatal("expected additional property error")
	}
}

func TestValidatePayloadWithoutSchema(t *testing.T) {
	if err := ValidatePayload(nil, map[string]any{"a": 1}); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestValidateSchemaRejectsBrokenSchema(t *testing.T) {
	err := ValidateSchema(map[string]any{"type": "object", "properties": map[string]any{"a": map[string]any{"type": 12}}})
	if !errors.Is(err, ErrSchemaInvalid) {
		t.Fatalf("expected ErrSchemaInvalid, got %v", err)
	}
}

func TestPropertiesKeepDeclaredOrder(t *testing.T) {
	props := Properties(accountSchema())
	if len(props) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(props))
	}
	if props[0].Name != "api_key" || props[0].Title != "API Key" || props[0].Format != "password" || !props[0].Required {
		t.Fatalf("unexpected first property %+v", props[0])
	}
	if props[1].Name != "label" {
		t.Fatalf("unexpected second property %+v", props[1])
	}
}
