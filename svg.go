package emojimaker

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

func init() {
	image.RegisterFormat("svg", "<svg", decodeSVG, decodeSVGConfig)
	image.RegisterFormat("svg", "<?xml", decodeSVG, decodeSVGConfig)
}

// decodeSVG rasterizes the document at its intrinsic view box size.
func decodeSVG(r io.Reader) (image.Image, error) {
	return rasterizeSVG(r, 0, 0)
}

func decodeSVGConfig(r io.Reader) (image.Config, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(math.Ceil(icon.ViewBox.W)),
		Height:     int(math.Ceil(icon.ViewBox.H)),
	}, nil
}

// rasterizeSVG renders the SVG document stretched over a w x h surface.
// Zero dimensions fall back to the view box size of the document.
func rasterizeSVG(r io.Reader, w, h int) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(r, oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("could not parse the svg document: %w", err)
	}
	if w <= 0 || h <= 0 {
		w, h = int(math.Ceil(icon.ViewBox.W)), int(math.Ceil(icon.ViewBox.H))
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("the svg document has no dimension")
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)

	return imgToNRGBA(dst), nil
}
