package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/adrg/frontmatter"
	slug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-formbridge/internal/validation"
	"github.com/goliatone/go-formbridge/providers"
)

var (
	ErrNameRequired = errors.New("manifest: name is required")
	ErrSlugInvalid  = errors.New("manifest: slug is invalid")
)

// Manifest declares a provider: its listing metadata, where its API lives
// and which credentials its new-account form asks for.
type Manifest struct {
	Info          providers.Info
	Driver        string
	APIBaseURL    string
	DocsURL       string
	AccountSchema map[string]any
	Description   template.HTML
	Path          string
}

type envelope struct {
	Name       string         `yaml:"name"`
	Slug       string         `yaml:"slug"`
	Icon       string         `yaml:"icon"`
	Type       string         `yaml:"type"`
	Version    string         `yaml:"version"`
	Priority   int            `yaml:"priority"`
	Driver     string         `yaml:"driver"`
	APIBaseURL string         `yaml:"api_base_url"`
	DocsURL    string         `yaml:"docs_url"`
	Account    map[string]any `yaml:"account"`
}

// Parse reads a manifest document: YAML front matter followed by a markdown
// description.
func Parse(source []byte) (Manifest, error) {
	var env envelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &env)
	if err != nil {
		return Manifest{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	name := strings.TrimSpace(env.Name)
	if name == "" {
		return Manifest{}, ErrNameRequired
	}
	rawSlug := strings.TrimSpace(env.Slug)
	if rawSlug == "" {
		rawSlug = name
	}
	normalized, err := slug.Normalize(rawSlug)
	if err != nil || normalized == "" {
		return Manifest{}, fmt.Errorf("%w: %q", ErrSlugInvalid, rawSlug)
	}

	account := normalizeMap(env.Account)
	if err := validation.ValidateSchema(account); err != nil {
		return Manifest{}, fmt.Errorf("manifest %s: account: %w", normalized, err)
	}

	description, err := RenderDescription(body)
	if err != nil {
		return Manifest{}, err
	}

	priority := env.Priority
	if priority == 0 {
		priority = providers.DefaultPriority
	}

	return Manifest{
		Info: providers.Info{
			Slug:     normalized,
			Name:     name,
			Icon:     strings.TrimSpace(env.Icon),
			Type:     strings.TrimSpace(env.Type),
			Version:  strings.TrimSpace(env.Version),
			Priority: priority,
		},
		Driver:        strings.ToLower(strings.TrimSpace(env.Driver)),
		APIBaseURL:    strings.TrimRight(strings.TrimSpace(env.APIBaseURL), "/"),
		DocsURL:       strings.TrimSpace(env.DocsURL),
		AccountSchema: account,
		Description:   description,
	}, nil
}

// normalizeMap converts the map[any]any values produced by the YAML decoder
// into map[string]any so the result can be encoded as JSON.
func normalizeMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch typed := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalizeValue(v)
		}
		return out
	case map[string]any:
		return normalizeMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, v := range typed {
			out[i] = normalizeValue(v)
		}
		return out
	default:
		return value
	}
}
