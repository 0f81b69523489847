package entriescmd

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-formbridge/forms"

	formstore "github.com/goliatone/go-formbridge/internal/forms"
)

type recordingCompleter struct {
	subs []forms.Submission
	err  error
}

func (r *recordingCompleter) ProcessComplete(_ context.Context, sub forms.Submission) error {
	r.subs = append(r.subs, sub)
	return r.err
}

var formID = uuid.MustParse("0b6f4f5e-2d0b-4a5e-9a53-3f5e6a1f9c20")

func seededRepo(t *testing.T) *formstore.MemoryRepository {
	t.Helper()
	repo := formstore.NewMemoryRepository()
	_, err := repo.Create(context.Background(), &forms.Form{
		ID:     formID,
		Title:  "Signup",
		Fields: []forms.Field{{ID: 1, Type: "email", Label: "Email"}},
	})
	if err != nil {
		t.Fatalf("seed form: %v", err)
	}
	return repo
}

func TestProcessEntryCommandValidate(t *testing.T) {
	fields := map[int]forms.EntryField{1: {ID: 1, Value: "a@b.c"}}
	cases := []struct {
		name string
		cmd  ProcessEntryCommand
		ok   bool
	}{
		{"valid", ProcessEntryCommand{FormID: formID.String(), Fields: fields}, true},
		{"missing form", ProcessEntryCommand{Fields: fields}, false},
		{"bad form id", ProcessEntryCommand{FormID: "42", Fields: fields}, false},
		{"no fields", ProcessEntryCommand{FormID: formID.String()}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cmd.Validate(); (err == nil) != tc.ok {
				t.Fatalf("unexpected validation result %v", err)
			}
		})
	}
}

func TestProcessEntryHandler(t *testing.T) {
	completer := &recordingCompleter{}
	handler := NewProcessEntryHandler(seededRepo(t), completer)

	err := handler.Execute(context.Background(), ProcessEntryCommand{
		FormID:  formID.String(),
		EntryID: "17",
		Fields:  map[int]forms.EntryField{1: {ID: 1, Type: "email", Value: "a@b.c"}},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(completer.subs) != 1 {
		t.Fatalf("expected one submission, got %d", len(completer.subs))
	}
	sub := completer.subs[0]
	if sub.Form == nil || sub.Form.Title != "Signup" || sub.EntryID != "17" || sub.Fields[1].Value != "a@b.c" {
		t.Fatalf("unexpected submission %+v", sub)
	}
}

func TestProcessEntryHandlerErrors(t *testing.T) {
	completer := &recordingCompleter{err: errors.New("provider down")}
	handler := NewProcessEntryHandler(seededRepo(t), completer)

	err := handler.Execute(context.Background(), ProcessEntryCommand{FormID: "nope", Fields: map[int]forms.EntryField{1: {}}})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}

	err = handler.Execute(context.Background(), ProcessEntryCommand{FormID: formID.String(), Fields: map[int]forms.EntryField{1: {}}})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}

	missing := uuid.New().String()
	err = handler.Execute(context.Background(), ProcessEntryCommand{FormID: missing, Fields: map[int]forms.EntryField{1: {}}})
	if !errors.Is(err, formstore.ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
}

func TestSaveProvidersHandler(t *testing.T) {
	repo := seededRepo(t)
	handler := NewSaveProvidersHandler(repo)

	providers := forms.Providers{"restlist": {"connection_1": {Name: "Main", AccountID: "acc", ListID: "l1"}}}
	if err := handler.Execute(context.Background(), SaveProvidersCommand{FormID: formID.String(), Providers: providers}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	form, err := repo.GetByID(context.Background(), formID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if form.Providers["restlist"]["connection_1"].ListID != "l1" {
		t.Fatalf("providers not saved: %+v", form.Providers)
	}

	bad := SaveProvidersCommand{FormID: formID.String(), Providers: forms.Providers{"restlist": {"x": {}}}}
	if err := handler.Execute(context.Background(), bad); !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
