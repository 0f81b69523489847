package providers_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-formbridge/forms"
	"github.com/goliatone/go-formbridge/internal/conditionals"
	"github.com/goliatone/go-formbridge/providers"
)

func TestProcessConditionals(t *testing.T) {
	f := newFixture(t, defaultStub())
	fields := map[int]forms.EntryField{2: {ID: 2, Type: "email", Value: "jane@example.com"}}
	match := forms.ConditionalGroups{{{Field: 2, Operator: conditionals.OpContains, Value: "@example"}}}
	miss := forms.ConditionalGroups{{{Field: 2, Operator: conditionals.OpIs, Value: "bob@example.com"}}}

	cases := []struct {
		name string
		conn forms.Connection
		want bool
	}{
		{"logic off", forms.Connection{Conditionals: miss}, true},
		{"no rules", forms.Connection{ConditionalLogic: true, ConditionalType: "go"}, true},
		{"go matching", forms.Connection{ConditionalLogic: true, ConditionalType: "go", Conditionals: match}, true},
		{"go failing", forms.Connection{ConditionalLogic: true, ConditionalType: "go", Conditionals: miss}, false},
		{"stop matching", forms.Connection{ConditionalLogic: true, ConditionalType: "stop", Conditionals: match}, false},
		{"stop failing", forms.Connection{ConditionalLogic: true, ConditionalType: "stop", Conditionals: miss}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.provider.ProcessConditionals(fields, nil, sampleForm(), tc.conn); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func submissionForm() *forms.Form {
	form := sampleForm()
	form.Providers = forms.Providers{
		"restlist": {
			"connection_a": {AccountID: "acc1", ListID: "l1"},
			"connection_b": {AccountID: "acc1"},
			"connection_c": {
				AccountID:        "acc1",
				ListID:           "l2",
				ConditionalLogic: true,
				ConditionalType:  "go",
				Conditionals:     forms.ConditionalGroups{{{Field: 2, Operator: conditionals.OpIs, Value: "nobody@example.com"}}},
			},
			"connection_d": {AccountID: "acc1", ListID: "l2"},
		},
		"other": {"connection_x": {AccountID: "z", ListID: "z"}},
	}
	return form
}

func TestProcessEntry(t *testing.T) {
	f := newFixture(t, defaultStub())
	sub := forms.Submission{
		Form:    submissionForm(),
		Fields:  map[int]forms.EntryField{2: {ID: 2, Type: "email", Value: "jane@example.com"}},
		EntryID: "42",
	}

	if err := f.provider.ProcessEntry(context.Background(), sub); err != nil {
		t.Fatalf("ProcessEntry: %v", err)
	}
	want := []string{"connection_a", "connection_d"}
	if !reflect.DeepEqual(f.api.processed, want) {
		t.Fatalf("want %v, got %v", want, f.api.processed)
	}
}

func TestProcessEntryJoinsFailures(t *testing.T) {
	api := defaultStub()
	api.processErr = errors.New("subscribe failed")
	f := newFixture(t, api)

	err := f.provider.ProcessEntry(context.Background(), forms.Submission{Form: submissionForm()})
	if err == nil {
		t.Fatal("expected error")
	}
	if !providers.IsError(err) {
		t.Fatalf("expected provider error, got %T", err)
	}
	if providers.ErrorMessage(err) != "subscribe failed" {
		t.Fatalf("unexpected message %q", providers.ErrorMessage(err))
	}
}

func TestProcessEntryWithoutForm(t *testing.T) {
	f := newFixture(t, defaultStub())
	if err := f.provider.ProcessEntry(context.Background(), forms.Submission{}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(f.api.processed) != 0 {
		t.Fatalf("nothing should be processed")
	}
}
