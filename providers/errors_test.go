package providers

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewErrorUsesSlugCode(t *testing.T) {
	err := NewError("restlist", "API key invalid")
	if err.Code != "restlist-error" {
		t.Fatalf("unexpected code %q", err.Code)
	}
	if err.Error() != "API key invalid" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestIsErrorMatchesWrapped(t *testing.T) {
	base := NewError("restlist", "timeout")
	wrapped := fmt.Errorf("lists: %w", base)

	if !IsError(wrapped) {
		t.Fatal("expected wrapped provider error to match")
	}
	if IsError(errors.New("plain")) {
		t.Fatal("plain errors are not provider errors")
	}
	if ErrorMessage(wrapped) != "timeout" {
		t.Fatalf("expected provider message, got %q", ErrorMessage(wrapped))
	}
}

func TestWrapErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError("restlist", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be preserved")
	}
	if WrapError("restlist", nil) != nil {
		t.Fatal("nil error should stay nil")
	}
	if again := WrapError("other", err); again != err {
		t.Fatal("existing provider errors are returned untouched")
	}
}
