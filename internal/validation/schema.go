package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// PayloadValidationError lists the issues found in a payload.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// ValidateSchema ensures the schema can be compiled.
func ValidateSchema(schema map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	if _, err := compileSchema(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

// ValidatePayload validates payload against schema. A nil schema accepts
// everything.
func ValidatePayload(schema map[string]any, payload map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	if payload == nil {
		payload = map[string]any{}
	}
	compiled, err := compileSchema(normalized)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if err := compiled.Validate(payload); err != nil {
		return &PayloadValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// ValidateAccountData validates the credentials posted by a new-account
// form. Blank values are treated as missing so "required" applies to them.
func ValidateAccountData(schema map[string]any, data map[string]string) error {
	payload := make(map[string]any, len(data))
	for key, value := range data {
		if strings.TrimSpace(value) == "" {
			continue
		}
		payload[key] = value
	}
	return ValidatePayload(schema, payload)
}

// Property is one input declared by an object schema.
type Property struct {
	Name        string
	Title       string
	Description string
	Format      string
	Required    bool
}

// Properties lists the object properties of schema sorted by the optional
// "x-order" keyword and then by name.
func Properties(schema map[string]any) []Property {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	props, _ := normalized["properties"].(map[string]any)
	required := map[string]bool{}
	switch list := normalized["required"].(type) {
	case []string:
		for _, name := range list {
			required[name] = true
		}
	case []any:
		for _, name := range list {
			if s, ok := name.(string); ok {
				required[s] = true
			}
		}
	}

	type ordered struct {
		Property
		order float64
	}
	items := make([]ordered, 0, len(props))
	for name, raw := range props {
		def, _ := raw.(map[string]any)
		item := ordered{Property: Property{Name: name, Required: required[name]}}
		item.Title, _ = def["title"].(string)
		item.Description, _ = def["description"].(string)
		item.Format, _ = def["format"].(string)
		switch v := def["x-order"].(type) {
		case int:
			item.order = float64(v)
		case float64:
			item.order = v
		}
		if item.Title == "" {
			item.Title = name
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].order != items[j].order {
			return items[i].order < items[j].order
		}
		return items[i].Name < items[j].Name
	})

	out := make([]Property, len(items))
	for i, item := range items {
		out[i] = item.Property
	}
	return out
}

// NormalizeSchema converts an account schema into a JSON schema. Besides
// plain JSON schemas it accepts the manifest shorthand
// {"fields": [{"name", "label", "format", "required"}, ...]}; every
// shorthand field is a non-empty string unless it says otherwise.
func NormalizeSchema(schema map[string]any) map[string]any {
	if len(schema) == 0 {
		return nil
	}
	for _, key := range []string{"$schema", "type", "properties", "oneOf", "anyOf", "allOf"} {
		if _, ok := schema[key]; ok {
			return cloneValue(schema).(map[string]any)
		}
	}

	var entries []map[string]any
	switch list := schema["fields"].(type) {
	case []any:
		for _, item := range list {
			switch field := item.(type) {
			case map[string]any:
				entries = append(entries, field)
			case string:
				entries = append(entries, map[string]any{"name": field})
			}
		}
	case []map[string]any:
		entries = list
	}

	properties := map[string]any{}
	required := []string{}
	for i, field := range entries {
		name, _ := field["name"].(string)
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		properties[name] = fieldProperty(field, i)
		if flag, _ := field["required"].(bool); flag {
			required = append(required, name)
		}
	}
	if len(properties) == 0 {
		return nil
	}

	normalized := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if allowed, ok := schema["additionalProperties"].(bool); ok {
		normalized["additionalProperties"] = allowed
	}
	if len(required) > 0 {
		normalized["required"] = required
	}
	return normalized
}

func fieldProperty(field map[string]any, order int) map[string]any {
	if nested, ok := field["schema"].(map[string]any); ok {
		return cloneValue(nested).(map[string]any)
	}
	prop := map[string]any{"type": "string", "x-order": order}
	if kind, ok := field["type"].(string); ok {
		switch kind = strings.ToLower(strings.TrimSpace(kind)); kind {
		case "string", "number", "integer", "boolean", "object", "array", "null":
			prop["type"] = kind
		}
	}
	if label, ok := field["label"].(string); ok && label != "" {
		prop["title"] = label
	}
	for _, key := range []string{"title", "description", "format"} {
		if value, ok := field[key].(string); ok && value != "" {
			prop[key] = value
		}
	}
	if prop["type"] == "string" {
		prop["minLength"] = 1
	}
	return prop
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	}
	return value
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
