package sim

import (
	"math"
	"testing"
)

// quietConfig returns a config with spawning disabled so tests control
// the unit population exactly.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.SpawnRate = 0
	cfg.SpawnGrowthRate = 0
	cfg.Seed = 1
	return cfg
}

// TestNewEngine verifies construction places exactly one player at the
// arena center
func TestNewEngine(t *testing.T) {
	e := NewEngine(quietConfig())

	players := 0
	e.Registry().ForEach(func(u *Unit) {
		if u.Kind == KindPlayer {
			players++
		}
	})
	if players != 1 {
		t.Fatalf("Expected exactly one player unit, got %d", players)
	}

	p := e.Player()
	if p.X != 0 || p.Y != 0 {
		t.Errorf("Player should start at the center, got (%v, %v)", p.X, p.Y)
	}
}

// TestEulerStep verifies position advances by exactly the velocity each
// tick before any clamping applies
func TestEulerStep(t *testing.T) {
	e := NewEngine(quietConfig())
	b := e.Registry().Create(BulletTemplate, 0.1, 0.2, CreateOpts{VX: 0.003, VY: -0.004})

	prevX, prevY := b.X, b.Y
	for i := 0; i < 5; i++ {
		e.Step()
		if b.X != prevX+b.VX || b.Y != prevY+b.VY {
			t.Fatalf("Tick %d: expected (%v, %v), got (%v, %v)",
				i, prevX+b.VX, prevY+b.VY, b.X, b.Y)
		}
		prevX, prevY = b.X, b.Y
	}
}

// TestRepulsionClamp verifies a player pushed past the inner bounds is
// clamped exactly to the wall with velocity unchanged
func TestRepulsionClamp(t *testing.T) {
	e := NewEngine(quietConfig())
	p := e.Player()
	inner := e.World().Inner

	// Teleport next to the right wall and drive into it.
	p.X = inner.MaxX - p.Radius - 0.001
	p.VX = 0.05

	e.Step()

	if p.X != inner.MaxX-p.Radius {
		t.Errorf("Expected clamp to %v, got %v", inner.MaxX-p.Radius, p.X)
	}
	if p.VX != 0.05 {
		t.Errorf("Repulsion must not change velocity, got %v", p.VX)
	}
	if p.Removed {
		t.Error("Repulsion must not remove the unit")
	}
}

// TestOuterCutoff verifies a unit whose center exits the outer bounds is
// removed and absent after compaction
func TestOuterCutoff(t *testing.T) {
	e := NewEngine(quietConfig())
	outer := e.World().Outer

	b := e.Registry().Create(BulletTemplate, outer.MaxX-0.001, 0, CreateOpts{VX: 0.01})
	id := b.ID

	e.Step()

	if !b.Removed {
		t.Fatal("Unit past the outer cutoff should be flagged removed")
	}
	// Compaction ran inside Step; it must be gone from the registry.
	e.Registry().ForEach(func(u *Unit) {
		if u.ID == id {
			t.Error("Removed unit should be absent after compaction")
		}
	})
}

// TestDestroyPolicy verifies a destroy-policy unit is removed once its
// bounding box leaves the inner bounds
func TestDestroyPolicy(t *testing.T) {
	tmpl := &Template{Kind: KindBullet, Radius: 0.02, Mass: 1, Boundary: PolicyDestroy, Collidable: true}

	e := NewEngine(quietConfig())
	inner := e.World().Inner

	inside := e.Registry().Create(tmpl, 0.5, 0, CreateOpts{})
	leaving := e.Registry().Create(tmpl, inner.MaxX+tmpl.Radius+0.001, 0, CreateOpts{VX: 0.01})

	e.Step()

	if inside.Removed {
		t.Error("Destroy-policy unit inside the bounds should survive")
	}
	if !leaving.Removed {
		t.Error("Destroy-policy unit fully outside the bounds should be removed")
	}
}

// TestUnrecognizedPolicy verifies a bad policy value degrades to a no-op
// without aborting the tick
func TestUnrecognizedPolicy(t *testing.T) {
	tmpl := &Template{Kind: KindBullet, Radius: 0.02, Mass: 1, Boundary: BoundaryPolicy(99), Collidable: true}

	e := NewEngine(quietConfig())
	u := e.Registry().Create(tmpl, 0, 0, CreateOpts{VX: 0.001})

	e.Step() // must not panic

	if u.Removed {
		t.Error("Unrecognized policy should behave as a no-op, not remove the unit")
	}
	if u.X != 0.001 {
		t.Error("Integration should still run for units with a bad policy")
	}
}

// TestPlayerDeathEndsRound verifies a bullet overlapping the player ends
// the round: removed flag set, player kept in the registry, snapshot
// reports game over, survived ticks freeze
func TestPlayerDeathEndsRound(t *testing.T) {
	e := NewEngine(quietConfig())
	p := e.Player()

	e.Registry().Create(BulletTemplate, p.X+p.Radius*0.5, p.Y, CreateOpts{})

	e.Step()

	if !p.Removed {
		t.Fatal("Player overlapping a bullet should be flagged removed")
	}

	found := false
	e.Registry().ForEach(func(u *Unit) {
		if u.Kind == KindPlayer {
			found = true
		}
	})
	if !found {
		t.Error("Dead player must remain in the registry")
	}

	snap := e.GetSnapshot()
	if !snap.GameOver {
		t.Error("Snapshot should report game over")
	}

	survived := e.StatsSnapshot().SurvivedTicks
	e.Step()
	if e.StatsSnapshot().SurvivedTicks != survived {
		t.Error("Survived ticks should freeze after death")
	}
}

// TestBulletImpulseViaGrid verifies two approaching bullets resolve
// through the full broadphase path with momentum conserved and no
// duplicate resolutions
func TestBulletImpulseViaGrid(t *testing.T) {
	e := NewEngine(quietConfig())

	u := e.Registry().Create(BulletTemplate, -0.01, 0, CreateOpts{VX: 0.005})
	v := e.Registry().Create(BulletTemplate, 0.01, 0, CreateOpts{VX: -0.005})

	px := u.Mass*u.VX + v.Mass*v.VX

	e.Step()

	if u.VX == 0.005 && v.VX == -0.005 {
		t.Error("Approaching overlapping bullets should exchange impulse")
	}
	px2 := u.Mass*u.VX + v.Mass*v.VX
	if math.Abs(px2-px) > 1e-12 {
		t.Errorf("Momentum changed through grid resolution: %v -> %v", px, px2)
	}
	if e.StatsSnapshot().DuplicatePairs != 0 {
		t.Error("No duplicate pair resolutions expected")
	}
}

// TestSetPlayerInput verifies intent normalization and scaling
func TestSetPlayerInput(t *testing.T) {
	cfg := quietConfig()
	e := NewEngine(cfg)
	p := e.Player()

	tests := []struct {
		name     string
		dx, dy   int
		vx, vy   float64
	}{
		{"idle", 0, 0, 0, 0},
		{"right", 1, 0, cfg.PlayerMaxSpeed, 0},
		{"up-left diagonal", -1, -1, -cfg.PlayerMaxSpeed / math.Sqrt2, -cfg.PlayerMaxSpeed / math.Sqrt2},
		{"out-of-range intent clamps", 5, 0, cfg.PlayerMaxSpeed, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.SetPlayerInput(tt.dx, tt.dy)
			if math.Abs(p.VX-tt.vx) > 1e-15 || math.Abs(p.VY-tt.vy) > 1e-15 {
				t.Errorf("Got velocity (%v, %v), want (%v, %v)", p.VX, p.VY, tt.vx, tt.vy)
			}
		})
	}

	// A dead player no longer steers
	p.Removed = true
	p.VX, p.VY = 0, 0
	e.SetPlayerInput(1, 0)
	if p.VX != 0 {
		t.Error("Input should be ignored after game over")
	}
}

// TestSnapshotContents verifies the published snapshot reflects the
// post-compaction state and counts live bullets
func TestSnapshotContents(t *testing.T) {
	e := NewEngine(quietConfig())
	e.Registry().Create(BulletTemplate, 0.5, 0.5, CreateOpts{})
	e.Registry().Create(BulletTemplate, -0.5, 0.5, CreateOpts{})

	e.Step()

	snap := e.GetSnapshot()
	if snap.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", snap.Tick)
	}
	if snap.BulletCount != 2 {
		t.Errorf("Expected 2 live bullets, got %d", snap.BulletCount)
	}
	if len(snap.Units) != 3 {
		t.Errorf("Expected 3 units in snapshot, got %d", len(snap.Units))
	}
}

// TestVisibleUnits verifies viewport clipping
func TestVisibleUnits(t *testing.T) {
	snap := &Snapshot{Units: []UnitSnapshot{
		{ID: 1, X: 0, Y: 0, Radius: 0.1},
		{ID: 2, X: 5, Y: 5, Radius: 0.1},
		{ID: 3, X: 1.05, Y: 0, Radius: 0.1}, // edge overlaps the view
	}}

	view := Rect{MinX: -1, MinY: -1, MaxX: 1, MaxY: 1}
	visible := snap.VisibleUnits(view, nil)

	if len(visible) != 2 {
		t.Fatalf("Expected 2 visible units, got %d", len(visible))
	}
	if visible[0].ID != 1 || visible[1].ID != 3 {
		t.Errorf("Wrong units visible: %v, %v", visible[0].ID, visible[1].ID)
	}
}

// TestEngineStartStop verifies the ticker loop starts and stops cleanly
func TestEngineStartStop(t *testing.T) {
	e := NewEngine(quietConfig())
	e.Start()
	e.Stop()
	// Double stop must not panic
	e.Stop()
}
