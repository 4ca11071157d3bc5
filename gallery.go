package emojimaker

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/esimov/emojimaker/utils"
)

// ErrEmptyGallery is returned when no layer could be found for any category.
var ErrEmptyGallery = errors.New("gallery contains no layers")

// SupportedExtensions lists the file extensions accepted as layer images.
var SupportedExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

// Layer is a reference to a selectable image of a category.
type Layer struct {
	Category Category
	// Name is the file name without its extension.
	Name string
	// Path is either a slash separated path inside the gallery file system
	// or an absolute http(s) URL.
	Path string
}

// Remote reports whether the layer has to be fetched over the network.
func (l Layer) Remote() bool {
	return utils.IsValidUrl(l.Path)
}

// Ext returns the lower cased file extension of the layer.
func (l Layer) Ext() string {
	p := l.Path
	if i := strings.IndexAny(p, "?#"); i >= 0 && l.Remote() {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}

// Gallery is the read-only catalog of layers, one ordered list per category.
// A Gallery is safe for concurrent use since it is never modified after
// construction.
type Gallery struct {
	fsys   fs.FS
	layers [NumCategories][]Layer
	titles [NumCategories]string
	width  int
	height int
}

// NewGallery builds a gallery from explicit per category paths.
// The paths keep the given order and are resolved against fsys,
// which can be nil if every path is a remote URL.
func NewGallery(fsys fs.FS, paths map[Category][]string) (*Gallery, error) {
	g := &Gallery{fsys: fsys}
	total := 0
	for c, list := range paths {
		if !c.Valid() {
			return nil, fmt.Errorf("invalid category %d", int(c))
		}
		for _, p := range list {
			g.layers[c] = append(g.layers[c], newLayer(c, p))
		}
		total += len(list)
	}
	if total == 0 {
		return nil, ErrEmptyGallery
	}
	return g, nil
}

// LoadGallery enumerates the images of fsys grouped by the name of the
// directory holding them. Every category has its own directory named after
// the category key (head, eyes, eyebrows, mouth, details). When the root of
// fsys contains a gallery.yaml manifest, the listed categories take the
// manifest order instead of the lexical file order.
func LoadGallery(fsys fs.FS) (*Gallery, error) {
	g := &Gallery{fsys: fsys}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !utils.Contains(SupportedExtensions, strings.ToLower(path.Ext(p))) {
			return nil
		}
		if c, ok := categoryOf(p); ok {
			g.layers[c] = append(g.layers[c], newLayer(c, p))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not enumerate the gallery: %w", err)
	}

	for _, c := range Categories {
		sort.SliceStable(g.layers[c], func(i, j int) bool {
			return g.layers[c][i].Path < g.layers[c][j].Path
		})
	}

	m, err := ReadManifest(fsys)
	if err != nil {
		return nil, err
	}
	if m != nil {
		g.apply(m)
	}

	if g.total() == 0 {
		return nil, ErrEmptyGallery
	}
	return g, nil
}

// apply overrides the enumerated layers with the ones listed by the manifest.
func (g *Gallery) apply(m *Manifest) {
	g.width, g.height = m.Width, m.Height
	for key, mc := range m.Categories {
		c, err := ParseCategory(key)
		if err != nil {
			continue
		}
		if mc.Title != "" {
			g.titles[c] = mc.Title
		}
		if len(mc.Layers) == 0 {
			continue
		}
		layers := make([]Layer, 0, len(mc.Layers))
		for _, p := range mc.Layers {
			if !utils.IsValidUrl(p) && !strings.Contains(p, "/") {
				p = path.Join(c.Key(), p)
			}
			layers = append(layers, newLayer(c, p))
		}
		g.layers[c] = layers
	}
}

// categoryOf returns the category of the closest parent directory named
// after a category key.
func categoryOf(p string) (Category, bool) {
	dirs := strings.Split(path.Dir(p), "/")
	for i := len(dirs) - 1; i >= 0; i-- {
		if c, err := ParseCategory(dirs[i]); err == nil {
			return c, true
		}
	}
	return 0, false
}

func newLayer(c Category, p string) Layer {
	name := p
	if utils.IsValidUrl(p) {
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
	}
	name = path.Base(name)
	return Layer{
		Category: c,
		Name:     strings.TrimSuffix(name, path.Ext(name)),
		Path:     p,
	}
}

func (g *Gallery) total() int {
	n := 0
	for _, c := range Categories {
		n += len(g.layers[c])
	}
	return n
}

// FS returns the file system the local layer paths are resolved against.
func (g *Gallery) FS() fs.FS {
	if g == nil {
		return nil
	}
	return g.fsys
}

// Len returns the number of layers available for the category.
func (g *Gallery) Len(c Category) int {
	if g == nil || !c.Valid() {
		return 0
	}
	return len(g.layers[c])
}

// Lengths returns the gallery length of every category.
func (g *Gallery) Lengths() [NumCategories]int {
	var n [NumCategories]int
	for _, c := range Categories {
		n[c] = g.Len(c)
	}
	return n
}

// Layer returns the layer at index idx of the category.
// The second return value is false for None or an out of range index.
func (g *Gallery) Layer(c Category, idx int) (Layer, bool) {
	if idx < 0 || idx >= g.Len(c) {
		return Layer{}, false
	}
	return g.layers[c][idx], true
}

// Layers returns a copy of the ordered layers of the category.
func (g *Gallery) Layers(c Category) []Layer {
	if g.Len(c) == 0 {
		return nil
	}
	return append([]Layer(nil), g.layers[c]...)
}

// Title returns the display title of the category,
// taking the manifest override into account.
func (g *Gallery) Title(c Category) string {
	if g != nil && c.Valid() && g.titles[c] != "" {
		return g.titles[c]
	}
	return c.Title()
}

// CanvasSize returns the canvas dimension requested by the manifest,
// or zero values if the manifest does not define one.
func (g *Gallery) CanvasSize() (int, int) {
	if g == nil {
		return 0, 0
	}
	return g.width, g.height
}
