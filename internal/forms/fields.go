package forms

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbridge/forms"
)

var defaultFieldTypes = []string{
	"text",
	"textarea",
	"select",
	"radio",
	"checkbox",
	"email",
	"address",
	"url",
	"name",
	"hidden",
	"date-time",
	"phone",
	"number",
}

// DefaultFieldTypes returns the field types offered for provider mapping.
func DefaultFieldTypes() []string {
	return slices.Clone(defaultFieldTypes)
}

// FormFields returns the fields of form whose type is in whitelist, or in
// DefaultFieldTypes when whitelist is empty. ok is false when the form is nil
// or has no fields at all.
func FormFields(form *forms.Form, whitelist []string) (fields []forms.Field, ok bool) {
	if form == nil || len(form.Fields) == 0 {
		return nil, false
	}
	if len(whitelist) == 0 {
		whitelist = defaultFieldTypes
	}
	fields = make([]forms.Field, 0, len(form.Fields))
	for _, field := range form.Fields {
		if slices.Contains(whitelist, field.Type) {
			fields = append(fields, field)
		}
	}
	return fields, true
}

// FieldOption is one entry of a provider field mapping select.
type FieldOption struct {
	ID           int
	Key          string
	Type         string
	Subtype      string
	ProviderType string
	Label        string
}

// Value encodes the option as "<field id>.<key>.<provider type>".
func (o FieldOption) Value() string {
	return fmt.Sprintf("%d.%s.%s", o.ID, o.Key, o.ProviderType)
}

// ParseFieldValue decodes a mapping value produced by FieldOption.Value.
func ParseFieldValue(value string) (id int, key, providerType string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ".", 3)
	if len(parts) != 3 {
		return 0, "", "", false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", "", false
	}
	return id, parts[1], parts[2], true
}

var nameParts = []struct {
	key   string
	label string
}{
	{"first", "%s (First)"},
	{"middle", "%s (Middle)"},
	{"last", "%s (Last)"},
}

// FormFieldSelect turns form fields into select options for a provider field
// of type providerType. Email provider fields only accept text and email
// fields; address provider fields only accept address fields. Name fields
// expand into a full variant plus one per part enabled by their format.
func FormFieldSelect(fields []forms.Field, providerType string) []FieldOption {
	if len(fields) == 0 || providerType == "" {
		return nil
	}

	var out []FieldOption
	for _, field := range fields {
		switch {
		case providerType == "email" && field.Type != "text" && field.Type != "email":
			continue
		case providerType == "address" && field.Type != "address":
			continue
		}

		if field.Type != "name" {
			out = append(out, FieldOption{
				ID:           field.ID,
				Key:          "value",
				Type:         field.Type,
				ProviderType: providerType,
				Label:        field.Label,
			})
			continue
		}

		out = append(out, FieldOption{
			ID:           field.ID,
			Key:          "value",
			Type:         field.Type,
			ProviderType: providerType,
			Label:        fmt.Sprintf("%s (Full)", field.Label),
		})
		for _, part := range nameParts {
			if !strings.Contains(field.Format, part.key) {
				continue
			}
			out = append(out, FieldOption{
				ID:           field.ID,
				Key:          part.key,
				Type:         field.Type,
				Subtype:      part.key,
				ProviderType: providerType,
				Label:        fmt.Sprintf(part.label, field.Label),
			})
		}
	}
	return out
}
