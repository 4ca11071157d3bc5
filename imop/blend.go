package imop

import (
	"fmt"
	"math"

	"github.com/esimov/emojimaker/utils"
)

// Mode is a separable blend mode, mixing the color of a layer
// with the color of its backdrop before the composition takes place.
type Mode string

// The supported blend modes. Normal leaves the layer color untouched.
const (
	Normal   Mode = "normal"
	Darken   Mode = "darken"
	Lighten  Mode = "lighten"
	Multiply Mode = "multiply"
	Screen   Mode = "screen"
	Overlay  Mode = "overlay"
)

// Modes lists every supported blend mode.
var Modes = []Mode{Normal, Darken, Lighten, Multiply, Screen, Overlay}

// Blend holds the currently active blend mode.
type Blend struct {
	mode Mode
}

// NewBlend initializes a new Blend using the normal mode.
func NewBlend() *Blend {
	return &Blend{mode: Normal}
}

// Set activates one of the supported blend modes.
func (b *Blend) Set(mode Mode) error {
	if !utils.Contains(Modes, mode) {
		return fmt.Errorf("unsupported blend mode: %q", mode)
	}
	b.mode = mode
	return nil
}

// Get returns the currently active blend mode.
func (b *Blend) Get() Mode {
	if b == nil || b.mode == "" {
		return Normal
	}
	return b.mode
}

// mix returns the blended value of the source cs and backdrop cb channels,
// both normalized to the [0, 1] interval.
func (b *Blend) mix(cs, cb float64) float64 {
	switch b.Get() {
	case Darken:
		return math.Min(cs, cb)
	case Lighten:
		return math.Max(cs, cb)
	case Multiply:
		return cs * cb
	case Screen:
		return cs + cb - cs*cb
	case Overlay:
		// Overlay is hard light with the layers swapped.
		if cb <= 0.5 {
			return cs * 2 * cb
		}
		d := 2*cb - 1
		return cs + d - cs*d
	}
	return cs
}
