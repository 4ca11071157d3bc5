package emojimaker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log"
	"sync"

	"github.com/esimov/emojimaker/imop"
)

// DefaultSize is the width and height of the canvas when none is provided.
const DefaultSize = 512

// ErrInvalidSize is returned when the canvas has no area.
var ErrInvalidSize = errors.New("the canvas width and height should be greater than zero")

// Compositor flattens the selected layers of a gallery into a single image.
type Compositor struct {
	Width  int
	Height int
	// Background fills the canvas before the first layer is painted.
	// A nil color leaves the canvas transparent.
	Background color.Color
	// Op is the composition operation used to paint every layer over the
	// canvas. The zero value is source-over.
	Op imop.Op
	// Blend mixes the layer colors with the canvas. The zero value is
	// the normal mode.
	Blend imop.Mode
	// Source resolves the layer content. When nil the layers are read
	// from the gallery file system, or downloaded in case of remote layers.
	Source Source
	// Logger receives the reason of every skipped layer, when Debug is set.
	Logger *log.Logger
	Debug  bool
}

// NewCompositor returns a compositor painting over a w x h transparent canvas.
func NewCompositor(w, h int) *Compositor {
	return &Compositor{
		Width:  w,
		Height: h,
	}
}

// Compose clears the canvas, then paints the selected layer of every
// category in paint order. The layers are resolved first and painted only
// once all of them are available, so the loading order has no effect on
// the result. A layer which cannot be loaded or decoded is omitted.
// Compose returns an error only for an invalid configuration or a
// cancelled context.
func (c *Compositor) Compose(ctx context.Context, sel Selection, g *Gallery) (*image.NRGBA, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, ErrInvalidSize
	}
	op, blend, err := c.ops()
	if err != nil {
		return nil, err
	}

	layers := c.resolve(ctx, sel, g)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	if c.Background != nil {
		draw.Draw(canvas, canvas.Bounds(), &image.Uniform{c.Background}, image.Point{}, draw.Src)
	}

	bitmap := &imop.Bitmap{Img: canvas}
	for _, cat := range Categories {
		if layers[cat] == nil {
			continue
		}
		op.Draw(bitmap, layers[cat], canvas, blend)
	}
	return canvas, nil
}

// Process composes the selection and encodes the result into w.
func (c *Compositor) Process(ctx context.Context, sel Selection, g *Gallery, w io.Writer, f Format) error {
	img, err := c.Compose(ctx, sel, g)
	if err != nil {
		return err
	}
	return Encode(w, img, f)
}

// Export composes the selection and returns it as a PNG data URL.
func (c *Compositor) Export(ctx context.Context, sel Selection, g *Gallery) (string, error) {
	img, err := c.Compose(ctx, sel, g)
	if err != nil {
		return "", err
	}
	return DataURL(img)
}

// Layer decodes a single gallery layer at the canvas size.
func (c *Compositor) Layer(ctx context.Context, l Layer, g *Gallery) (*image.NRGBA, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, ErrInvalidSize
	}
	return c.load(ctx, c.source(g), l)
}

func (c *Compositor) ops() (*imop.Composite, *imop.Blend, error) {
	op := imop.InitOp()
	if c.Op != "" {
		if err := op.Set(c.Op); err != nil {
			return nil, nil, err
		}
	}

	if c.Blend == "" || c.Blend == imop.Normal {
		return op, nil, nil
	}
	blend := imop.NewBlend()
	if err := blend.Set(c.Blend); err != nil {
		return nil, nil, err
	}
	return op, blend, nil
}

// resolve loads the selected layers concurrently. Every result is stored in
// the slot of its category, leaving nil for the skipped ones.
func (c *Compositor) resolve(ctx context.Context, sel Selection, g *Gallery) [NumCategories]*image.NRGBA {
	var (
		layers [NumCategories]*image.NRGBA
		wg     sync.WaitGroup
	)
	src := c.source(g)

	for _, cat := range Categories {
		l, ok := g.Layer(cat, sel.Get(cat))
		if !ok {
			continue
		}
		wg.Add(1)
		go func(cat Category, l Layer) {
			defer wg.Done()

			img, err := c.load(ctx, src, l)
			if err != nil {
				c.debugf("skipping the %s layer %q: %v", cat, l.Path, err)
				return
			}
			layers[cat] = img
		}(cat, l)
	}
	wg.Wait()

	return layers
}

func (c *Compositor) load(ctx context.Context, src Source, l Layer) (*image.NRGBA, error) {
	rc, err := src.Open(ctx, l)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := decodeLayer(rc, l.Ext(), c.Width, c.Height)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.Path, err)
	}
	return img, nil
}

func (c *Compositor) source(g *Gallery) Source {
	if c.Source != nil {
		return c.Source
	}
	return GallerySource{FS: g.FS()}
}

func (c *Compositor) debugf(format string, args ...any) {
	if !c.Debug {
		return
	}
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}
