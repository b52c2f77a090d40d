// Package render draws simulation snapshots onto an RGBA canvas. It is
// a pure consumer of immutable snapshots; the engine never waits on it.
package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"dodger/internal/sim"
)

var (
	backgroundColor = color.RGBA{12, 12, 28, 255}
	wallColor       = color.RGBA{60, 60, 90, 255}
	playerColor     = color.RGBA{80, 220, 120, 255}
	playerDeadColor = color.RGBA{120, 120, 120, 255}
	bulletColor     = color.RGBA{235, 235, 245, 255}
)

// Renderer draws snapshots clipped to a world-space viewport, scaled to
// a fixed pixel canvas. The gg context and the visible-unit buffer are
// reused across frames.
type Renderer struct {
	width, height int
	arena         sim.Rect // inner bounds, drawn as the wall outline
	dc            *gg.Context
	visible       []sim.UnitSnapshot
}

// New creates a renderer with the given canvas size in pixels. arena is
// the world's inner bounds, drawn as the wall outline.
func New(width, height int, arena sim.Rect) *Renderer {
	return &Renderer{
		width:   width,
		height:  height,
		arena:   arena,
		dc:      gg.NewContext(width, height),
		visible: make([]sim.UnitSnapshot, 0, 256),
	}
}

// Frame renders the snapshot's units clipped to the world-space
// viewport and returns the canvas image. The returned image is reused
// on the next call; encode or copy it before rendering again.
//
// Not safe for concurrent use; callers serialize frame requests.
func (r *Renderer) Frame(snap *sim.Snapshot, view sim.Rect) image.Image {
	dc := r.dc

	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()

	// Uniform world-to-pixel scale; the viewport is letterboxed, not
	// stretched.
	scaleX := float64(r.width) / view.Width()
	scaleY := float64(r.height) / view.Height()
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	toPxX := func(x float64) float64 { return (x - view.MinX) * scale }
	toPxY := func(y float64) float64 { return (y - view.MinY) * scale }

	// Arena wall outline, wherever it crosses the viewport.
	if r.arena.Intersects(view) {
		dc.SetColor(wallColor)
		dc.SetLineWidth(2)
		dc.DrawRectangle(toPxX(r.arena.MinX), toPxY(r.arena.MinY),
			r.arena.Width()*scale, r.arena.Height()*scale)
		dc.Stroke()
	}

	r.visible = snap.VisibleUnits(view, r.visible[:0])
	for _, u := range r.visible {
		switch u.Kind {
		case "player":
			if snap.GameOver {
				dc.SetColor(playerDeadColor)
			} else {
				dc.SetColor(playerColor)
			}
		default:
			dc.SetColor(bulletColor)
		}
		dc.DrawCircle(toPxX(u.X), toPxY(u.Y), u.Radius*scale)
		dc.Fill()
	}

	return dc.Image()
}
