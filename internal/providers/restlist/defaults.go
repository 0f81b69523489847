package restlist

import (
	_ "embed"

	"github.com/goliatone/go-formbridge/internal/manifest"
)

//go:embed default.md
var defaultManifest []byte

// DefaultManifest is used when no manifest directory declares a restlist
// provider.
func DefaultManifest() (manifest.Manifest, error) {
	m, err := manifest.Parse(defaultManifest)
	if err != nil {
		return manifest.Manifest{}, err
	}
	m.Path = "embedded:default.md"
	return m, nil
}
