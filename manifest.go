package emojimaker

import (
	"errors"
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"
)

// ManifestName is the file name of the optional gallery manifest.
const ManifestName = "gallery.yaml"

// Manifest describes the display order and titles of the gallery layers.
type Manifest struct {
	Width      int                         `yaml:"width"`
	Height     int                         `yaml:"height"`
	Categories map[string]ManifestCategory `yaml:"categories"`
}

// ManifestCategory lists the layers of a single category. A bare file
// name is resolved inside the category directory, while paths holding a
// slash are taken relative to the gallery root. URLs are kept untouched.
type ManifestCategory struct {
	Title  string   `yaml:"title"`
	Layers []string `yaml:"layers"`
}

// ReadManifest decodes the manifest found at the root of fsys.
// It returns a nil manifest without error when the file does not exist.
func ReadManifest(fsys fs.FS) (*Manifest, error) {
	b, err := fs.ReadFile(fsys, ManifestName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read the gallery manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("could not decode the gallery manifest: %w", err)
	}
	for key := range m.Categories {
		if _, err := ParseCategory(key); err != nil {
			return nil, fmt.Errorf("invalid gallery manifest: %w", err)
		}
	}
	if m.Width < 0 || m.Height < 0 {
		return nil, fmt.Errorf("invalid gallery manifest: negative canvas size %dx%d", m.Width, m.Height)
	}
	return &m, nil
}
