package emojimaker

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

const (
	maxScreenX = 1366
	maxScreenY = 768

	// footerHeight is the room left below the composite for the status line.
	footerHeight = 48
)

var defaultBkgColor = color.NRGBA{R: 0xf3, G: 0xf4, B: 0xf6, A: 0xff}

// frame is a composite rendered for the preview window.
type frame struct {
	img *image.NRGBA
	sel Selection
	err error
}

// Gui is the preview window of the composer. The composites are rendered
// on a separate goroutine and transferred to the window through a channel.
//
// Keyboard shortcuts:
//
//	Space         shuffle every category
//	↑ / ↓         change the active category
//	← / →         select the previous or next layer of the active category
//	N             remove the layer of the active category
//	Backspace, R  reset to the default selection
//	Esc           close the window
type Gui struct {
	cfg struct {
		window struct {
			w     float64
			h     float64
			title string
		}
		background color.NRGBA
	}
	proc struct {
		sel    Selection
		active Category
		img    paint.ImageOp
		hasImg bool
		err    error
	}
	comp     *Compositor
	gallery  *Gallery
	rnd      *rand.Rand
	theme    *material.Theme
	requests chan Selection
	frames   chan frame
}

// NewGUI initializes the preview window of the selection.
func NewGUI(c *Compositor, g *Gallery, sel Selection, seed int64) *Gui {
	gui := &Gui{
		comp:     c,
		gallery:  g,
		rnd:      rand.New(rand.NewSource(seed)),
		theme:    material.NewTheme(gofont.Collection()),
		requests: make(chan Selection, 1),
		frames:   make(chan frame, 1),
	}
	gui.proc.sel = sel.Normalize(g)
	gui.cfg.background = defaultBkgColor
	gui.cfg.window.title = "Emoji maker"
	gui.cfg.window.w, gui.cfg.window.h = getWindowSize(float64(c.Width), float64(c.Height))

	return gui
}

// getWindowSize returns the window dimension fitting the canvas, keeping
// the canvas aspect ratio in case it does not fit on the screen.
func getWindowSize(w, h float64) (float64, float64) {
	if w > maxScreenX || h > maxScreenY-footerHeight {
		r := math.Min(maxScreenX/w, (maxScreenY-footerHeight)/h)
		w, h = w*r, h*r
	}
	return w, h + footerHeight
}

// Run opens the window and processes its events until it gets closed.
// The rendering goroutine stops when Run returns.
func (g *Gui) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := app.NewWindow(
		app.Title(g.cfg.window.title),
		app.Size(unit.Dp(g.cfg.window.w), unit.Dp(g.cfg.window.h)),
	)
	go g.render(ctx)
	g.request(g.proc.sel)

	var ops op.Ops
	for {
		select {
		case <-ctx.Done():
			w.Perform(system.ActionClose)
			return ctx.Err()
		case e := <-w.Events():
			switch e := e.(type) {
			case system.FrameEvent:
				g.draw(layout.NewContext(&ops, e))
				e.Frame(&ops)
			case key.Event:
				if e.State != key.Press {
					break
				}
				if e.Name == key.NameEscape {
					w.Perform(system.ActionClose)
					break
				}
				if g.handleKey(e.Name) {
					g.request(g.proc.sel)
				}
				w.Invalidate()
			case system.DestroyEvent:
				return e.Err
			}
		case f := <-g.frames:
			// Only the latest selection is shown, older frames are superseded.
			if f.sel != g.proc.sel {
				break
			}
			g.proc.err = f.err
			if f.err == nil {
				g.proc.img = paint.NewImageOp(f.img)
				g.proc.hasImg = true
			}
			w.Option(app.Title(fmt.Sprintf("%s ?%s", g.cfg.window.title, f.sel.Encode())))
			w.Invalidate()
		}
	}
}

// handleKey updates the selection from a key press.
// It reports whether the selection has been changed.
func (g *Gui) handleKey(name string) bool {
	sel, active := g.proc.sel, g.proc.active

	switch name {
	case key.NameSpace:
		sel = g.gallery.Shuffle(g.rnd)
	case key.NameDeleteBackward, "R":
		sel = DefaultSelection().Normalize(g.gallery)
	case "N":
		sel = sel.With(active, None)
	case key.NameUpArrow:
		g.proc.active = Category((int(active) + NumCategories - 1) % NumCategories)
	case key.NameDownArrow:
		g.proc.active = Category((int(active) + 1) % NumCategories)
	case key.NameLeftArrow:
		sel = sel.With(active, cycle(sel.Get(active), -1, g.gallery.Len(active)))
	case key.NameRightArrow:
		sel = sel.With(active, cycle(sel.Get(active), 1, g.gallery.Len(active)))
	}

	changed := sel != g.proc.sel
	g.proc.sel = sel
	return changed
}

// cycle moves idx by step over the [None, n) interval, wrapping around.
func cycle(idx, step, n int) int {
	if n == 0 {
		return None
	}
	// Shift by one, so None takes the first slot.
	return (idx+1+step+n+1)%(n+1) - 1
}

// request schedules the rendering of the selection, replacing the pending one.
func (g *Gui) request(sel Selection) {
	select {
	case <-g.requests:
	default:
	}
	g.requests <- sel
}

// render composes the requested selections until the context is done.
func (g *Gui) render(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sel := <-g.requests:
			img, err := g.comp.Compose(ctx, sel, g.gallery)

			// Drop a stale frame which was not picked up yet.
			select {
			case <-g.frames:
			default:
			}
			select {
			case g.frames <- frame{img: img, sel: sel, err: err}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// draw lays out the composite and the status line below it.
func (g *Gui) draw(gtx C) {
	paint.Fill(gtx.Ops, g.cfg.background)

	layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Flexed(1, func(gtx C) D {
			if !g.proc.hasImg {
				return D{Size: gtx.Constraints.Max}
			}
			return layout.Center.Layout(gtx, func(gtx C) D {
				return widget.Image{
					Src:   g.proc.img,
					Fit:   widget.Contain,
					Scale: 1 / gtx.Metric.PxPerDp,
				}.Layout(gtx)
			})
		}),
		layout.Rigid(func(gtx C) D {
			return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx C) D {
				return material.Body1(g.theme, g.status()).Layout(gtx)
			})
		}),
	)
}

// status describes the active category and the current selection.
func (g *Gui) status() string {
	if g.proc.err != nil {
		return fmt.Sprintf("Error: %v", g.proc.err)
	}
	active := g.proc.active
	idx := g.proc.sel.Get(active)

	layer := "none"
	if l, ok := g.gallery.Layer(active, idx); ok {
		layer = l.Name
	}
	return fmt.Sprintf("%s: %s (%d/%d)   ?%s",
		g.gallery.Title(active), layer, idx+1, g.gallery.Len(active), g.proc.sel.Encode())
}
