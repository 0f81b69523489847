// Package pagebuilder renders the settings modal of a page-builder module:
// a tab sidebar, the module fields of the active tab, an optional repeater
// of field groups and the save, delete and close actions.
package pagebuilder

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SettingTypeRow marks row modals, which cannot be deleted from the modal.
const SettingTypeRow = "row"

var ErrTabUnknown = errors.New("pagebuilder: default tab is not declared")

// Tab is one sidebar entry.
type Tab struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is a module setting. Fields only show while their tab is active;
// a field without a tab shows on every tab.
type Field struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Tab         string   `json:"tab,omitempty"`
	Value       string   `json:"value,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

// Repeater holds the repeatable field groups shown on Tab.
type Repeater struct {
	Tab        string    `json:"tab"`
	ShowFields [][]Field `json:"show_fields"`
}

// ModalContent is everything the modal shows for one module.
type ModalContent struct {
	Label       string    `json:"label"`
	Tabs        []Tab     `json:"tabs"`
	DefaultTab  string    `json:"default_tab"`
	Fields      []Field   `json:"fields"`
	Repeater    *Repeater `json:"repeater,omitempty"`
	SettingType string    `json:"setting_type,omitempty"`
}

func (m ModalContent) Validate() error {
	if err := validation.ValidateStruct(&m,
		validation.Field(&m.Label, validation.Required),
		validation.Field(&m.Tabs, validation.Required),
		validation.Field(&m.DefaultTab, validation.Required),
	); err != nil {
		return err
	}
	for _, tab := range m.Tabs {
		if tab.Key == m.DefaultTab {
			return nil
		}
	}
	return ErrTabUnknown
}

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("pagebuilder").ParseFS(templateFS, "templates/*.html"))

type fieldView struct {
	Field
	Input  string
	Hidden bool
}

type repeatView struct {
	Number int
	Active bool
	Fields []fieldView
}

type modalView struct {
	Label      string
	Tabs       []tabView
	Fields     []fieldView
	ShowRepeat bool
	Repeats    []repeatView
	Deletable  bool
}

type tabView struct {
	Tab
	Active bool
}

// Render returns the modal markup for m.
func Render(m ModalContent) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}

	view := modalView{
		Label:     m.Label,
		Deletable: m.SettingType != SettingTypeRow,
	}
	for _, tab := range m.Tabs {
		view.Tabs = append(view.Tabs, tabView{Tab: tab, Active: tab.Key == m.DefaultTab})
	}
	for _, field := range m.Fields {
		view.Fields = append(view.Fields, newFieldView(field, field.Name, m.DefaultTab))
	}
	if m.Repeater != nil && m.Repeater.Tab == m.DefaultTab {
		view.ShowRepeat = true
		for i, group := range m.Repeater.ShowFields {
			repeat := repeatView{Number: i + 1, Active: i == 0}
			for _, field := range group {
				repeat.Fields = append(repeat.Fields, newFieldView(field, repeaterName(i, field.Name), ""))
			}
			view.Repeats = append(view.Repeats, repeat)
		}
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "modal", view); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func newFieldView(field Field, name, activeTab string) fieldView {
	field.Name = name
	input := strings.ToLower(strings.TrimSpace(field.Type))
	switch input {
	case "textarea", "select", "checkbox", "hidden":
	default:
		input = "text"
	}
	return fieldView{
		Field:  field,
		Input:  input,
		Hidden: activeTab != "" && field.Tab != "" && field.Tab != activeTab,
	}
}

func repeaterName(index int, name string) string {
	return "repeater[" + strconv.Itoa(index) + "][" + name + "]"
}
