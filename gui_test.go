package emojimaker

import (
	"testing"

	"gioui.org/io/key"
	"github.com/stretchr/testify/assert"
)

func TestGui_Cycle(t *testing.T) {
	assert.Equal(t, 0, cycle(None, 1, 3))
	assert.Equal(t, 2, cycle(1, 1, 3))
	assert.Equal(t, None, cycle(2, 1, 3))
	assert.Equal(t, 2, cycle(None, -1, 3))
	assert.Equal(t, None, cycle(0, -1, 3))
	assert.Equal(t, None, cycle(0, 1, 0))
}

func TestGui_WindowSize(t *testing.T) {
	w, h := getWindowSize(512, 512)
	assert.Equal(t, 512.0, w)
	assert.Equal(t, 512.0+footerHeight, h)

	w, h = getWindowSize(2000, 1000)
	assert.LessOrEqual(t, w, float64(maxScreenX))
	assert.LessOrEqual(t, h, float64(maxScreenY))
	assert.InDelta(t, 2.0, w/(h-footerHeight), 0.001)
}

func TestGui_HandleKey(t *testing.T) {
	g := scenarioGallery(t)
	gui := NewGUI(NewCompositor(canvasWidth, canvasHeight), g, Selection{1, 7, None, None, None}, 1)

	// Out of range indices are cleared up front.
	assert.Equal(t, Selection{1, None, None, None, None}, gui.proc.sel)

	assert.False(t, gui.handleKey(key.NameDownArrow))
	assert.Equal(t, Eyes, gui.proc.active)

	assert.True(t, gui.handleKey(key.NameRightArrow))
	assert.Equal(t, 0, gui.proc.sel.Get(Eyes))
	assert.True(t, gui.handleKey(key.NameRightArrow))
	assert.Equal(t, None, gui.proc.sel.Get(Eyes))

	assert.False(t, gui.handleKey(key.NameUpArrow))
	assert.True(t, gui.handleKey("N"))
	assert.Equal(t, None, gui.proc.sel.Get(Head))

	assert.True(t, gui.handleKey(key.NameDeleteBackward))
	assert.Equal(t, DefaultSelection(), gui.proc.sel)

	for i := 0; i < 10; i++ {
		gui.handleKey(key.NameSpace)
		assert.NotEqual(t, None, gui.proc.sel.Get(Head))
	}
	assert.Contains(t, gui.status(), "Head: ")
}
