package emojimaker

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func TestImage_FormatFromExt(t *testing.T) {
	testCases := []struct {
		path     string
		expected Format
	}{
		{"out.png", PNG},
		{"out", PNG},
		{"OUT.JPG", JPEG},
		{"out.jpeg", JPEG},
		{"out.bmp", BMP},
		{"out.pdf", PDF},
	}
	for _, tc := range testCases {
		f, err := FormatFromPath(tc.path)
		assert.NoError(t, err)
		assert.Equal(t, tc.expected, f, tc.path)
	}

	_, err := FormatFromPath("out.tiff")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, "application/pdf", PDF.ContentType())
	assert.Equal(t, "image/png", PNG.ContentType())
}

func TestImage_EncodeFormats(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	img.SetNRGBA(1, 1, color.NRGBA{R: 200, A: 255})

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img, JPEG))
	dec, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 6, 4), dec.Bounds())

	// Transparent areas turn white since JPEG has no alpha channel.
	r, g, b, _ := dec.At(5, 3).RGBA()
	assert.Greater(t, r>>8, uint32(240))
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))

	buf.Reset()
	require.NoError(t, Encode(&buf, img, BMP))
	dec, err = bmp.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 6, dec.Bounds().Dx())

	buf.Reset()
	require.NoError(t, Encode(&buf, img, PDF))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))

	assert.ErrorIs(t, Encode(&buf, img, Format("tiff")), ErrUnsupportedFormat)
}

func TestImage_DecodeLayerScalesToCanvas(t *testing.T) {
	data := pngLayer(t, image.Rect(0, 0, canvasWidth, canvasHeight), red)

	img, err := decodeLayer(bytes.NewReader(data), ".png", 32, 16)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 16), img.Bounds())
	assert.Equal(t, red, img.NRGBAAt(16, 8))

	_, err = decodeLayer(bytes.NewReader([]byte("junk")), ".png", 32, 16)
	assert.Error(t, err)
}

func TestImage_DecodeLayerSniffsSvg(t *testing.T) {
	docs := []string{
		"\n\t<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 4 4\"><rect width=\"4\" height=\"4\" fill=\"#ff0000\"/></svg>",
		`<?xml version="1.0" encoding="UTF-8"?>
<!-- layer -->
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 4 4"><rect width="4" height="4" fill="#ff0000"/></svg>`,
	}
	for _, doc := range docs {
		img, err := decodeLayer(strings.NewReader(doc), "", canvasWidth, canvasHeight)
		require.NoError(t, err)
		assert.Equal(t, red, img.NRGBAAt(4, 4))
	}

	// Raster layers without extension still go through the image decoders.
	data := pngLayer(t, image.Rect(0, 0, canvasWidth, canvasHeight), blue)
	img, err := decodeLayer(bytes.NewReader(data), "", canvasWidth, canvasHeight)
	require.NoError(t, err)
	assert.Equal(t, blue, img.NRGBAAt(4, 4))
}

func TestImage_ImgToNRGBA(t *testing.T) {
	rect := image.Rect(-1, -1, 15, 15)

	src := image.NewPaletted(rect, palette.Plan9)
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			src.Set(x, y, palette.Plan9[((x+1)*(y+1))%len(palette.Plan9)])
		}
	}
	ycc := image.NewYCbCr(rect, image.YCbCrSubsampleRatio444)
	for i := range ycc.Y {
		ycc.Y[i], ycc.Cb[i], ycc.Cr[i] = uint8(i), uint8(i*3), uint8(i*7)
	}
	nrgba := image.NewNRGBA(rect)
	for i := range nrgba.Pix {
		nrgba.Pix[i] = uint8(i)
	}

	for _, img := range []image.Image{src, ycc, nrgba} {
		dst := imgToNRGBA(img)
		assert.Equal(t, image.Rect(0, 0, 16, 16), dst.Bounds())

		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				want := color.NRGBAModel.Convert(img.At(x+rect.Min.X, y+rect.Min.Y)).(color.NRGBA)
				got := dst.NRGBAAt(x, y)
				assert.InDelta(t, int(want.R), int(got.R), 1)
				assert.InDelta(t, int(want.G), int(got.G), 1)
				assert.InDelta(t, int(want.B), int(got.B), 1)
				assert.Equal(t, want.A, got.A)
			}
		}
	}
}
