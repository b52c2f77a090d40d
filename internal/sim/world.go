package sim

import "math"

// Rect is an axis-aligned rectangle.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// RectAround builds a rectangle centered on (cx, cy) with the given
// half-extents.
func RectAround(cx, cy, halfW, halfH float64) Rect {
	return Rect{MinX: cx - halfW, MinY: cy - halfH, MaxX: cx + halfW, MaxY: cy + halfH}
}

func (r Rect) Width() float64   { return r.MaxX - r.MinX }
func (r Rect) Height() float64  { return r.MaxY - r.MinY }
func (r Rect) CenterX() float64 { return (r.MinX + r.MaxX) / 2 }
func (r Rect) CenterY() float64 { return (r.MinY + r.MaxY) / 2 }

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Intersects reports whether the two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && r.MaxX >= o.MinX && r.MinY <= o.MaxY && r.MaxY >= o.MinY
}

// HalfDiagonal returns half the rectangle's diagonal length. Spawns are
// placed on the circle of this radius (plus the unit radius) around the
// center, just outside the playable area.
func (r Rect) HalfDiagonal() float64 {
	return math.Hypot(r.Width(), r.Height()) / 2
}

// World is the static per-session geometry: the playable inner bounds
// and a larger outer cutoff square beyond which units are culled.
type World struct {
	Inner Rect
	Outer Rect
}

// NewWorld derives the outer cutoff from the inner bounds: a square
// centered on the same origin with half-extent equal to the inner
// half-diagonal plus margin, so a unit spawned anywhere on the spawn
// ring starts inside the cutoff.
func NewWorld(inner Rect, margin float64) World {
	half := inner.HalfDiagonal() + margin
	return World{
		Inner: inner,
		Outer: RectAround(inner.CenterX(), inner.CenterY(), half, half),
	}
}
