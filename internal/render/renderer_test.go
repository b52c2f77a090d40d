package render

import (
	"image"
	"testing"

	"dodger/internal/sim"
)

func testSnapshot() *sim.Snapshot {
	return &sim.Snapshot{
		Tick: 1,
		Units: []sim.UnitSnapshot{
			{ID: 1, Kind: "player", X: 0, Y: 0, Radius: 0.04},
			{ID: 2, Kind: "bullet", X: 0.5, Y: 0.5, Radius: 0.015},
			{ID: 3, Kind: "bullet", X: 50, Y: 50, Radius: 0.015}, // far off-view
		},
	}
}

// TestFrameSize verifies the canvas matches the configured dimensions
func TestFrameSize(t *testing.T) {
	arena := sim.RectAround(0, 0, 1, 1)
	r := New(320, 240, arena)

	img := r.Frame(testSnapshot(), arena)
	if img == nil {
		t.Fatal("Frame returned nil image")
	}
	b := img.Bounds()
	if b.Dx() != 320 || b.Dy() != 240 {
		t.Errorf("Got %dx%d image, want 320x240", b.Dx(), b.Dy())
	}
}

// TestFrameDrawsUnits verifies visible units change pixels against the
// background while off-view units do not blow up the canvas
func TestFrameDrawsUnits(t *testing.T) {
	arena := sim.RectAround(0, 0, 1, 1)
	r := New(200, 200, arena)

	img := r.Frame(testSnapshot(), arena)

	// The player is centered in the viewport: the center pixel must
	// differ from the background.
	rgba, ok := img.(*image.RGBA)
	if !ok {
		t.Fatalf("Expected *image.RGBA, got %T", img)
	}
	center := rgba.RGBAAt(100, 100)
	corner := rgba.RGBAAt(3, 3)
	if center == corner {
		t.Error("Player at the viewport center should be drawn over the background")
	}
}

// TestFrameReuse verifies consecutive frames reuse the context without
// panicking or leaking visible-unit state
func TestFrameReuse(t *testing.T) {
	arena := sim.RectAround(0, 0, 1, 1)
	r := New(64, 64, arena)

	snap := testSnapshot()
	for i := 0; i < 3; i++ {
		if img := r.Frame(snap, arena); img == nil {
			t.Fatalf("Frame %d returned nil", i)
		}
	}
	if len(r.visible) != 2 {
		t.Errorf("Visible buffer should hold the 2 in-view units, got %d", len(r.visible))
	}
}
