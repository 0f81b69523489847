package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
)

// LoadDir parses every *.md file directly under dir. A missing directory
// yields no manifests. Duplicate slugs are rejected.
func LoadDir(ctx context.Context, fsys fs.FS, dir string) ([]Manifest, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("manifest loader read %s: %w", dir, err)
	}

	var (
		out  []Manifest
		seen = map[string]string{}
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" {
			continue
		}
		file := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("manifest loader read %s: %w", file, err)
		}
		m, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("manifest loader %s: %w", file, err)
		}
		if prev, ok := seen[m.Info.Slug]; ok {
			return nil, fmt.Errorf("manifest loader: slug %q declared by %s and %s", m.Info.Slug, prev, file)
		}
		seen[m.Info.Slug] = file
		m.Path = file
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Info.Priority != out[j].Info.Priority {
			return out[i].Info.Priority < out[j].Info.Priority
		}
		return out[i].Info.Slug < out[j].Info.Slug
	})
	return out, nil
}
