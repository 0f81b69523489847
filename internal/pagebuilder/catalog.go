package pagebuilder

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed modules/*.json
var moduleFS embed.FS

// OptionSource supplies select options at render time. Fields whose type
// names a registered source are rendered as selects.
type OptionSource func(ctx context.Context) ([]Option, error)

// Catalog holds the modal definitions of the known modules.
type Catalog struct {
	modules map[string]ModalContent
	sources map[string]OptionSource
}

// DefaultCatalog loads the built-in modules.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(moduleFS, "modules")
}

// LoadCatalog reads every *.json file in dir. The module name is the file
// name without extension.
func LoadCatalog(fsys fs.FS, dir string) (*Catalog, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	c := &Catalog{modules: map[string]ModalContent{}, sources: map[string]OptionSource{}}
	for _, file := range matches {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, err
		}
		var content ModalContent
		if err := json.Unmarshal(raw, &content); err != nil {
			return nil, fmt.Errorf("pagebuilder: %s: %w", file, err)
		}
		if err := content.Validate(); err != nil {
			return nil, fmt.Errorf("pagebuilder: %s: %w", file, err)
		}
		c.modules[strings.TrimSuffix(path.Base(file), ".json")] = content
	}
	return c, nil
}

// RegisterSource binds an option source to a field type.
func (c *Catalog) RegisterSource(fieldType string, source OptionSource) {
	c.sources[fieldType] = source
}

// Modules lists module names in order.
func (c *Catalog) Modules() []string {
	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Module returns the definition of name.
func (c *Catalog) Module(name string) (ModalContent, bool) {
	m, ok := c.modules[name]
	return m, ok
}

// RenderModule renders the modal of name with option sources resolved.
// The second return value is false for unknown modules.
func (c *Catalog) RenderModule(ctx context.Context, name string) (string, bool, error) {
	m, ok := c.modules[name]
	if !ok {
		return "", false, nil
	}
	fields := make([]Field, len(m.Fields))
	for i, field := range m.Fields {
		if source, ok := c.sources[field.Type]; ok {
			options, err := source(ctx)
			if err != nil {
				return "", true, err
			}
			field.Type = "select"
			field.Options = append(append([]Option(nil), field.Options...), options...)
		}
		fields[i] = field
	}
	m.Fields = fields
	html, err := Render(m)
	return html, true, err
}
