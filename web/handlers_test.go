package web

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/esimov/emojimaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canvasSize = 16

func pngFile(t *testing.T, rect image.Rectangle, col color.NRGBA) *fstest.MapFile {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	draw.Draw(img, rect, &image.Uniform{col}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &fstest.MapFile{Data: buf.Bytes()}
}

func testServer(t *testing.T) *Server {
	t.Helper()
	full := image.Rect(0, 0, canvasSize, canvasSize)

	g, err := emojimaker.LoadGallery(fstest.MapFS{
		"head/round.png":  pngFile(t, full, color.NRGBA{R: 255, A: 255}),
		"head/square.png": pngFile(t, full, color.NRGBA{B: 255, A: 255}),
		"eyes/wink.png":   pngFile(t, image.Rect(0, 0, 8, 8), color.NRGBA{G: 255, A: 255}),
	})
	require.NoError(t, err)

	srv, err := NewServer(g, emojimaker.NewCompositor(canvasSize, canvasSize), 1)
	require.NoError(t, err)
	return srv
}

func get(t *testing.T, srv *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHandleIndex(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/?eyes=0&head=1")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "/composite.png?eyes=0&amp;head=1&amp;eyebrows=-1&amp;mouth=-1&amp;details=-1")
	assert.Contains(t, body, "http://example.com/?eyes=0&amp;head=1&amp;eyebrows=-1&amp;mouth=-1&amp;details=-1")
	assert.Contains(t, body, "/layers/eyes/0?size=96")
	assert.Contains(t, body, `title="square"`)
	assert.Contains(t, body, "No layers available.")
	// Every category, the head included, can be cleared.
	assert.Contains(t, body, `href="/?eyes=0&amp;head=-1&amp;eyebrows=-1&amp;mouth=-1&amp;details=-1"`)
	assert.Contains(t, body, `href="/?eyes=-1&amp;head=1&amp;eyebrows=-1&amp;mouth=-1&amp;details=-1"`)

	assert.Equal(t, http.StatusNotFound, get(t, srv, "/missing").Code)
}

func TestHandleComposite(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/composite.png?eyes=0&head=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{G: 255, A: 255}, color.NRGBAModel.Convert(img.At(2, 2)))
	assert.Equal(t, color.NRGBA{B: 255, A: 255}, color.NRGBAModel.Convert(img.At(12, 12)))

	// Malformed and out of range values omit the category.
	rec = get(t, srv, "/composite.png?head=abc&eyes=7")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err = png.Decode(rec.Body)
	require.NoError(t, err)
	_, _, _, a := img.At(2, 2).RGBA()
	assert.Zero(t, a)

	rec = get(t, srv, "/composite.pdf?download")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "emoji.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestHandleExport(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/export?head=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "data:image/png;base64,"))
}

func TestHandleShuffle(t *testing.T) {
	srv := testServer(t)

	for i := 0; i < 10; i++ {
		rec := get(t, srv, "/shuffle")
		require.Equal(t, http.StatusFound, rec.Code)

		loc := rec.Header().Get("Location")
		require.True(t, strings.HasPrefix(loc, "/?eyes="), loc)

		sel := emojimaker.ParseQuery(loc)
		assert.NotEqual(t, emojimaker.None, sel.Get(emojimaker.Head))
		assert.Equal(t, emojimaker.None, sel.Get(emojimaker.Mouth))
	}
}

func TestHandleLayer(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/layers/eyes/0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, layerCacheControl, rec.Header().Get("Cache-Control"))
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, canvasSize, img.Bounds().Dx())

	rec = get(t, srv, "/layers/head/1?size=4")
	require.Equal(t, http.StatusOK, rec.Code)
	img, err = png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())

	for _, target := range []string{"/layers/nose/0", "/layers/eyes/3", "/layers/eyes/x", "/layers/eyes"} {
		assert.Equal(t, http.StatusNotFound, get(t, srv, target).Code, target)
	}
}

func TestHandleHealthAndMethods(t *testing.T) {
	srv := testServer(t)

	rec := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/composite.png", http.NoBody)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
