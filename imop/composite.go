// Package imop implements the Porter-Duff composition operations
// used for painting a layer over its backdrop.
// The image/draw core package implements only the source-over-destination
// and the source operations; this package covers the whole set,
// optionally mixing the colors with a blend mode first.
package imop

import (
	"fmt"
	"image"
	"math"

	"github.com/esimov/emojimaker/utils"
)

// Op is a Porter-Duff composition operation.
type Op string

// The supported composition operations.
const (
	Clear   Op = "clear"
	Copy    Op = "copy"
	Dst     Op = "dst"
	SrcOver Op = "src_over"
	DstOver Op = "dst_over"
	SrcIn   Op = "src_in"
	DstIn   Op = "dst_in"
	SrcOut  Op = "src_out"
	DstOut  Op = "dst_out"
	SrcAtop Op = "src_atop"
	DstAtop Op = "dst_atop"
	Xor     Op = "xor"
)

// Ops lists every supported composition operation.
var Ops = []Op{Clear, Copy, Dst, SrcOver, DstOver, SrcIn, DstIn, SrcOut, DstOut, SrcAtop, DstAtop, Xor}

// Bitmap is the destination of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// NewBitmap allocates a transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// Composite holds the currently active composition operation.
type Composite struct {
	current Op
}

// InitOp returns a Composite using the source-over operation.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported composition operations.
func (c *Composite) Set(op Op) error {
	if !utils.Contains(Ops, op) {
		return fmt.Errorf("unsupported composite operation: %q", op)
	}
	c.current = op
	return nil
}

// Get returns the active composition operation.
func (c *Composite) Get() Op {
	return c.current
}

// factors returns the Porter-Duff fractions of the source and the backdrop
// for the given source and backdrop alpha values.
func (c *Composite) factors(as, ab float64) (float64, float64) {
	switch c.current {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	// SrcOver
	return 1, 1 - as
}

// Draw composes src over the dst backdrop and writes the result into the
// bitmap. The bitmap image might be the backdrop itself, since every pixel
// is read before it gets written. Only the area shared by the three images
// is processed. A nil blend leaves the source colors untouched.
func (c *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) {
	if bitmap == nil {
		return
	}
	r := bitmap.Img.Bounds().Intersect(src.Bounds()).Intersect(dst.Bounds())

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			bi := bitmap.Img.PixOffset(x, y)

			as := float64(src.Pix[si+3]) / 255
			ab := float64(dst.Pix[di+3]) / 255
			fs, fb := c.factors(as, ab)

			ao := as*fs + ab*fb
			var out [4]uint8
			if ao > 0 {
				for i := 0; i < 3; i++ {
					cs := float64(src.Pix[si+i]) / 255
					cb := float64(dst.Pix[di+i]) / 255
					if blend != nil {
						// The blended color only applies where the backdrop is present.
						cs = (1-ab)*cs + ab*blend.mix(cs, cb)
					}
					co := (as*fs*cs + ab*fb*cb) / ao
					out[i] = toUint8(co)
				}
				out[3] = toUint8(ao)
			}
			copy(bitmap.Img.Pix[bi:bi+4], out[:])
		}
	}
}

func toUint8(v float64) uint8 {
	return uint8(math.Round(utils.Clamp(v, 0, 1) * 255))
}
