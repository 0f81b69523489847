package pagebuilder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func sampleModal() ModalContent {
	return ModalContent{
		Label:      "Button",
		DefaultTab: "customizer",
		Tabs:       []Tab{{"customizer", "Customizer"}, {"design", "Design"}},
		Fields: []Field{
			{Name: "btn_text", Label: "Text", Type: "text", Tab: "customizer", Value: `Go "now"`},
			{Name: "btn_color", Label: "Color", Type: "text", Tab: "design"},
			{Name: "size", Label: "Size", Type: "select", Tab: "customizer", Value: "lg",
				Options: []Option{{"sm", "Small"}, {"lg", "Large"}}},
		},
	}
}

func TestRenderTabsAndFields(t *testing.T) {
	html, err := Render(sampleModal())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		`<li class="link active" data-tab="customizer">Customizer</li>`,
		`<li class="link" data-tab="design">Design</li>`,
		`<h3>Button</h3>`,
		`value="Go &#34;now&#34;"`,
		`<div class="amp-form-control amp-field-text hide" data-tab="design">`,
		`<option value="lg" selected="selected">Large</option>`,
		`value="Delete"`,
		"Save Module",
		"Close",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in %s", want, html)
		}
	}
	if strings.Contains(html, "amp-repeaters") {
		t.Fatal("repeater must not render without definition")
	}
}

func TestRenderRowHasNoDelete(t *testing.T) {
	m := sampleModal()
	m.SettingType = SettingTypeRow
	html, err := Render(m)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(html, "del-btn-modal") {
		t.Fatal("row modals cannot be deleted")
	}
}

func TestRenderRepeater(t *testing.T) {
	m := sampleModal()
	m.Repeater = &Repeater{Tab: "customizer", ShowFields: [][]Field{
		{{Name: "item", Label: "Item", Type: "text", Value: "one"}},
		{{Name: "item", Label: "Item", Type: "text", Value: "two"}},
	}}
	html, err := Render(m)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{
		`<span class="repeater_num">1</span> Button Field <span class="amp-accordion-label">(Hide)</span>`,
		`<span class="repeater_num">2</span> Button Field <span class="amp-accordion-label">(Show)</span>`,
		`name="repeater[0][item]"`,
		`name="repeater[1][item]"`,
		`class="amp-accordion-content hide"`,
		`value="Add Button Field"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in %s", want, html)
		}
	}

	m.DefaultTab = "design"
	html, _ = Render(m)
	if strings.Contains(html, "amp-repeaters") {
		t.Fatal("repeater only shows on its own tab")
	}
}

func TestValidate(t *testing.T) {
	m := sampleModal()
	m.DefaultTab = "missing"
	if _, err := Render(m); !errors.Is(err, ErrTabUnknown) {
		t.Fatalf("expected ErrTabUnknown, got %v", err)
	}
	if err := (ModalContent{}).Validate(); err == nil {
		t.Fatal("expected validation error for empty modal")
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	want := []string{"contact-form", "faq", "row", "text"}
	if got := c.Modules(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("want %v, got %v", want, got)
	}

	c.RegisterSource("forms", func(context.Context) ([]Option, error) {
		return []Option{{Value: "f1", Label: "Newsletter signup"}}, nil
	})
	html, ok, err := c.RenderModule(context.Background(), "contact-form")
	if err != nil || !ok {
		t.Fatalf("RenderModule: %v %v", ok, err)
	}
	if !strings.Contains(html, `<option value="">Select a form</option><option value="f1">Newsletter signup</option>`) {
		t.Fatalf("expected form options in %s", html)
	}

	if _, ok, _ := c.RenderModule(context.Background(), "nope"); ok {
		t.Fatal("unknown module should not be found")
	}
}

func TestRenderModuleSourceError(t *testing.T) {
	c, _ := DefaultCatalog()
	c.RegisterSource("forms", func(context.Context) ([]Option, error) { return nil, errors.New("db down") })
	if _, ok, err := c.RenderModule(context.Background(), "contact-form"); !ok || err == nil {
		t.Fatalf("expected source error, got %v %v", ok, err)
	}
}

func TestLoadCatalogRejectsInvalidModules(t *testing.T) {
	fsys := fstest.MapFS{
		"mods/bad.json": {Data: []byte(`{"label":"Bad","tabs":[{"key":"a","label":"A"}],"default_tab":"b"}`)},
	}
	if _, err := LoadCatalog(fsys, "mods"); !errors.Is(err, ErrTabUnknown) {
		t.Fatalf("expected ErrTabUnknown, got %v", err)
	}
}
