package emojimaker

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/esimov/emojimaker/utils"
	"github.com/jung-kurt/gofpdf/v2"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// sniffLen is the number of leading bytes used to detect the layer content.
const sniffLen = 512

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Format is the encoding of an exported composite.
type Format string

// The supported export formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	BMP  Format = "bmp"
	PDF  Format = "pdf"
)

// FormatFromExt maps a file name extension to its export format.
// An empty extension selects PNG.
func FormatFromExt(ext string) (Format, error) {
	switch strings.ToLower(ext) {
	case "", ".png":
		return PNG, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	case ".bmp":
		return BMP, nil
	case ".pdf":
		return PDF, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// FormatFromPath returns the export format matching the file name.
func FormatFromPath(name string) (Format, error) {
	return FormatFromExt(filepath.Ext(name))
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case JPEG:
		return "image/jpeg"
	case BMP:
		return "image/bmp"
	case PDF:
		return "application/pdf"
	}
	return "image/png"
}

// decodeLayer decodes a layer image and scales it to fill a w x h canvas.
// SVG documents are rasterized directly at the canvas size. They are
// recognized by extension or, for layers without one, by their content.
func decodeLayer(r io.Reader, ext string, w, h int) (*image.NRGBA, error) {
	if ext == ".svg" {
		return rasterizeSVG(r, w, h)
	}

	br := bufio.NewReaderSize(r, sniffLen)
	// A short read returns the whole content along with io.EOF.
	head, _ := br.Peek(sniffLen)
	if utils.DetectContentType(head) == "image/svg+xml" {
		return rasterizeSVG(br, w, h)
	}

	src, _, err := image.Decode(br)
	if err != nil {
		return nil, fmt.Errorf("could not decode the layer image: %w", err)
	}
	if b := src.Bounds(); b.Dx() == w && b.Dy() == h {
		return imgToNRGBA(src), nil
	}
	return imaging.Resize(src, w, h, imaging.Lanczos), nil
}

// Encode encodes the image into w using the requested format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case PNG, "":
		return png.Encode(w, img)
	case JPEG:
		return jpeg.Encode(w, flatten(img, color.White), &jpeg.Options{Quality: 100})
	case BMP:
		return bmp.Encode(w, img)
	case PDF:
		return encodePDF(w, img)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// encodePDF places the image on a single page having the image dimension.
func encodePDF(w io.Writer, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	b := img.Bounds()
	width, height := float64(b.Dx()), float64(b.Dy())

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("composite", opts, &buf)
	pdf.ImageOptions("composite", 0, 0, width, height, false, opts, 0, "")

	return pdf.Output(w)
}

// DataURL encodes the image as a base64 PNG data URL.
func DataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// flatten draws the image over an opaque background, since JPEG has no alpha channel.
func flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	dst := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(dst, img, image.Point{}, 1.0)
}

// imgToNRGBA converts any image type to *image.NRGBA with min-point at (0, 0).
func imgToNRGBA(img image.Image) *image.NRGBA {
	srcBounds := img.Bounds()
	if srcBounds.Min.X == 0 && srcBounds.Min.Y == 0 {
		if src0, ok := img.(*image.NRGBA); ok {
			return src0
		}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y

	dstBounds := srcBounds.Sub(srcBounds.Min)
	dstW := dstBounds.Dx()
	dstH := dstBounds.Dy()
	dst := image.NewNRGBA(dstBounds)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.PixOffset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}
	return dst
}
