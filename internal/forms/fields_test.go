package forms

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-formbridge/forms"
)

func TestFormFieldsWithoutFields(t *testing.T) {
	if _, ok := FormFields(nil, nil); ok {
		t.Fatal("nil form should report false")
	}
	if _, ok := FormFields(&forms.Form{Title: "empty"}, nil); ok {
		t.Fatal("form lacking fields should report false")
	}
}

func TestFormFieldsAppliesWhitelist(t *testing.T) {
	form := &forms.Form{Fields: []forms.Field{
		{ID: 1, Type: "email", Label: "Email"},
		{ID: 2, Type: "file-upload", Label: "Upload"},
		{ID: 3, Type: "name", Label: "Name"},
		{ID: 4, Type: "pagebreak"},
	}}

	fields, ok := FormFields(form, nil)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(fields) != 2 || fields[0].ID != 1 || fields[1].ID != 3 {
		t.Fatalf("unexpected default whitelist result %+v", fields)
	}

	custom, _ := FormFields(form, []string{"file-upload"})
	if len(custom) != 1 || custom[0].ID != 2 {
		t.Fatalf("unexpected custom whitelist result %+v", custom)
	}
}

func TestFormFieldSelect(t *testing.T) {
	fields := []forms.Field{
		{ID: 1, Type: "text", Label: "Company"},
		{ID: 2, Type: "email", Label: "Email"},
		{ID: 3, Type: "name", Label: "Name", Format: "first-middle-last"},
		{ID: 4, Type: "address", Label: "Address"},
	}

	cases := []struct {
		providerType string
		want         []string
	}{
		{"email", []string{"1.value.email", "2.value.email"}},
		{"address", []string{"4.value.address"}},
		{"text", []string{"1.value.text", "2.value.text", "3.value.text", "3.first.text", "3.middle.text", "3.last.text", "4.value.text"}},
		{"", nil},
	}
	for _, tc := range cases {
		var got []string
		for _, option := range FormFieldSelect(fields, tc.providerType) {
			got = append(got, option.Value())
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("provider type %q: want %v, got %v", tc.providerType, tc.want, got)
		}
	}
}

func TestFormFieldSelectNameLabels(t *testing.T) {
	options := FormFieldSelect([]forms.Field{{ID: 7, Type: "name", Label: "Your Name", Format: "first-last"}}, "text")
	want := []string{"Your Name (Full)", "Your Name (First)", "Your Name (Last)"}
	if len(options) != len(want) {
		t.Fatalf("expected %d options, got %+v", len(want), options)
	}
	for i, label := range want {
		if options[i].Label != label {
			t.Fatalf("option %d: want %q, got %q", i, label, options[i].Label)
		}
	}
	if options[1].Subtype != "first" || options[0].Subtype != "" {
		t.Fatalf("unexpected subtypes %+v", options)
	}
}

func TestParseFieldValue(t *testing.T) {
	id, key, providerType, ok := ParseFieldValue("3.first.text")
	if !ok || id != 3 || key != "first" || providerType != "text" {
		t.Fatalf("unexpected parse %d %q %q %v", id, key, providerType, ok)
	}
	if _, _, _, ok := ParseFieldValue("x.value.text"); ok {
		t.Fatal("non numeric id must fail")
	}
	if _, _, _, ok := ParseFieldValue(""); ok {
		t.Fatal("empty value must fail")
	}
}
