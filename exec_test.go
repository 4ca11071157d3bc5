package emojimaker

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec_RenderSingleFile(t *testing.T) {
	g := scenarioGallery(t)
	c := NewCompositor(canvasWidth, canvasHeight)

	var stderr bytes.Buffer
	dst := filepath.Join(t.TempDir(), "emoji.png")
	op := &Ops{Dst: dst, PipeName: "-", Stderr: &stderr}

	require.NoError(t, op.Execute(context.Background(), c, g, Selection{1, 0, None, 0, None}))

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, canvasWidth, img.Bounds().Dx())
	assert.Contains(t, stderr.String(), "emoji.png")
	assert.Contains(t, stderr.String(), "?eyes=0&head=1&eyebrows=-1&mouth=0&details=-1")
}

func TestExec_UnsupportedDestination(t *testing.T) {
	g := scenarioGallery(t)
	c := NewCompositor(canvasWidth, canvasHeight)

	var stderr bytes.Buffer
	op := &Ops{Dst: filepath.Join(t.TempDir(), "emoji.tiff"), PipeName: "-", Stderr: &stderr}
	err := op.Execute(context.Background(), c, g, DefaultSelection())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, stderr.String(), "Error rendering the composite")
	assert.Contains(t, stderr.String(), "unsupported image format")
	assert.Equal(t, 1, strings.Count(stderr.String(), "Error rendering the composite"))
}

func TestExec_DataURI(t *testing.T) {
	g := scenarioGallery(t)
	c := NewCompositor(canvasWidth, canvasHeight)

	dst := filepath.Join(t.TempDir(), "emoji.txt")
	op := &Ops{Dst: dst, PipeName: "-", DataURI: true, Stderr: &bytes.Buffer{}}
	require.NoError(t, op.Execute(context.Background(), c, g, DefaultSelection()))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "data:image/png;base64,"))
}

func TestExec_BatchShuffle(t *testing.T) {
	g := scenarioGallery(t)
	c := NewCompositor(canvasWidth, canvasHeight)

	render := func(dir string) map[string][]byte {
		op := &Ops{Dst: dir, PipeName: "-", Count: 5, Workers: 3, Seed: 99, Stderr: &bytes.Buffer{}}
		require.NoError(t, op.Execute(context.Background(), c, g, DefaultSelection()))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)

		files := make(map[string][]byte, len(entries))
		for _, e := range entries {
			data, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)
			files[e.Name()] = data
		}
		return files
	}

	first := render(filepath.Join(t.TempDir(), "first"))
	second := render(filepath.Join(t.TempDir(), "second"))

	assert.Len(t, first, 5)
	assert.Contains(t, first, "emoji-001.png")
	assert.Contains(t, first, "emoji-005.png")
	// The same seed renders the same composites, whatever the worker scheduling.
	assert.Equal(t, first, second)
}

func TestExec_BatchRequiresDirectory(t *testing.T) {
	g := scenarioGallery(t)
	c := NewCompositor(canvasWidth, canvasHeight)

	var stderr bytes.Buffer
	op := &Ops{Dst: "-", PipeName: "-", Count: 2, Stderr: &stderr}
	assert.Error(t, op.Execute(context.Background(), c, g, DefaultSelection()))
	assert.Contains(t, stderr.String(), "a destination directory is required")
}

func TestExec_DataURIFailureIsReported(t *testing.T) {
	g := scenarioGallery(t)
	c := NewCompositor(canvasWidth, canvasHeight)

	var stderr bytes.Buffer
	dst := filepath.Join(t.TempDir(), "missing", "emoji.txt")
	op := &Ops{Dst: dst, PipeName: "-", DataURI: true, Stderr: &stderr}
	assert.Error(t, op.Execute(context.Background(), c, g, DefaultSelection()))
	assert.Contains(t, stderr.String(), "Error rendering the composite")
	assert.Contains(t, stderr.String(), "emoji.txt")
}

func TestExec_BatchFailureIsReported(t *testing.T) {
	g := scenarioGallery(t)
	c := NewCompositor(canvasWidth, canvasHeight)

	var stderr bytes.Buffer
	op := &Ops{Dst: t.TempDir(), PipeName: "-", Count: 3, Format: Format("tiff"), Stderr: &stderr}
	err := op.Execute(context.Background(), c, g, DefaultSelection())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Equal(t, 1, strings.Count(stderr.String(), "Error rendering the composite"))
}
