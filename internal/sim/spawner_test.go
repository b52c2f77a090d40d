package sim

import (
	"math"
	"math/rand"
	"testing"
)

// TestSpawnTablePick verifies the cumulative walk and the last-entry floor
func TestSpawnTablePick(t *testing.T) {
	a := &Template{Kind: KindBullet, Radius: 1, Mass: 1}
	b := &Template{Kind: KindBullet, Radius: 2, Mass: 1}
	c := &Template{Kind: KindBullet, Radius: 3, Mass: 1}
	table := SpawnTable{{P: 0.9, Tmpl: a}, {P: 0.09, Tmpl: b}, {P: 0.01, Tmpl: c}}

	tests := []struct {
		name string
		p    float64
		want *Template
	}{
		{"low draw selects first", 0.5, a},
		{"boundary draw selects second", 0.9, b},
		{"high draw selects third", 0.995, c},
		{"unclaimed draw floors to last", 1.5, c},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Pick(tt.p); got != tt.want {
				t.Errorf("Pick(%v) selected radius %v, want %v", tt.p, got.Radius, tt.want.Radius)
			}
		})
	}
}

// TestSpawnTableFrequencies verifies realized frequencies converge to the
// configured masses over many draws
func TestSpawnTableFrequencies(t *testing.T) {
	a := &Template{Kind: KindBullet, Radius: 1, Mass: 1}
	b := &Template{Kind: KindBullet, Radius: 2, Mass: 1}
	c := &Template{Kind: KindBullet, Radius: 3, Mass: 1}
	table := SpawnTable{{P: 0.9, Tmpl: a}, {P: 0.09, Tmpl: b}, {P: 0.01, Tmpl: c}}

	rng := rand.New(rand.NewSource(42))
	const draws = 100000
	counts := map[*Template]int{}
	for i := 0; i < draws; i++ {
		counts[table.Pick(rng.Float64())]++
	}

	for _, tt := range []struct {
		tmpl *Template
		want float64
	}{{a, 0.9}, {b, 0.09}, {c, 0.01}} {
		got := float64(counts[tt.tmpl]) / draws
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("Template frequency %.4f, want %.2f ± 0.01", got, tt.want)
		}
	}
}

// TestSpawnerSchedule verifies the fractional spawn-count loop: with
// rate r per tick, the long-run average spawn count per tick is r
func TestSpawnerSchedule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnRate = 0.25
	cfg.SpawnGrowthRate = 0 // flat schedule for a clean average
	rng := rand.New(rand.NewSource(7))

	sp := NewSpawner(cfg, rng)
	reg := NewRegistry(64)
	world := NewWorld(RectAround(0, 0, 1, 1), 0.1)
	stats := NewStats(cfg.RecencyWeight)

	const ticks = 20000
	total := 0
	for i := uint64(1); i <= ticks; i++ {
		total += sp.Run(i, reg, world, &stats, true)
		// Keep the registry from hitting the cap
		reg.ForEach(func(u *Unit) { u.Removed = true })
		reg.Compact()
	}

	avg := float64(total) / ticks
	if math.Abs(avg-cfg.SpawnRate) > 0.02 {
		t.Errorf("Average spawns per tick %.4f, want %.2f ± 0.02", avg, cfg.SpawnRate)
	}
	if stats.Score != uint64(total) {
		t.Errorf("Score %d should equal spawn count %d while the player lives", stats.Score, total)
	}
}

// TestSpawnerGrowth verifies the exponential schedule spawns multiple
// units per tick once the rate outgrows 1
func TestSpawnerGrowth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnRate = 3.4 // floor 3, probabilistic 4th
	cfg.SpawnGrowthRate = 0
	rng := rand.New(rand.NewSource(1))

	sp := NewSpawner(cfg, rng)
	reg := NewRegistry(64)
	world := NewWorld(RectAround(0, 0, 1, 1), 0.1)
	stats := NewStats(cfg.RecencyWeight)

	n := sp.Run(1, reg, world, &stats, true)
	if n != 3 && n != 4 {
		t.Errorf("With rate 3.4 expected 3 or 4 spawns, got %d", n)
	}
}

// TestSpawnPlacement verifies units spawn on the ring at template
// radius plus the inner half-diagonal, heading roughly inbound
func TestSpawnPlacement(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnRate = 1.999 // at least one spawn per tick
	cfg.SpawnGrowthRate = 0
	rng := rand.New(rand.NewSource(3))

	sp := NewSpawner(cfg, rng)
	reg := NewRegistry(256)
	world := NewWorld(RectAround(0, 0, 1, 1), 0.1)
	stats := NewStats(cfg.RecencyWeight)

	for i := uint64(1); i <= 50; i++ {
		sp.Run(i, reg, world, &stats, true)
	}
	if reg.Len() == 0 {
		t.Fatal("Expected spawns")
	}

	halfDiag := world.Inner.HalfDiagonal()
	reg.ForEach(func(u *Unit) {
		want := u.Tmpl.Radius + halfDiag
		got := math.Hypot(u.X, u.Y)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Unit %d spawned at distance %v, want %v", u.ID, got, want)
		}
		if u.VX == 0 && u.VY == 0 {
			t.Errorf("Unit %d spawned without velocity", u.ID)
		}
	})
}

// TestSpawnerDeadPlayerScore verifies the score freezes once the player
// is gone while spawning continues
func TestSpawnerDeadPlayerScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnRate = 1.5
	cfg.SpawnGrowthRate = 0
	rng := rand.New(rand.NewSource(9))

	sp := NewSpawner(cfg, rng)
	reg := NewRegistry(64)
	world := NewWorld(RectAround(0, 0, 1, 1), 0.1)
	stats := NewStats(cfg.RecencyWeight)

	n := sp.Run(1, reg, world, &stats, false)
	if n == 0 {
		t.Fatal("Expected spawns with rate 1.5")
	}
	if stats.Score != 0 {
		t.Errorf("Score should not grow after game over, got %d", stats.Score)
	}
	if stats.Spawned == 0 {
		t.Error("Spawned counter should still grow after game over")
	}
}

// TestSpawnerUnitCap verifies the registry hard cap stops the loop
func TestSpawnerUnitCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SpawnRate = 100
	cfg.SpawnGrowthRate = 0
	cfg.MaxUnits = 10
	rng := rand.New(rand.NewSource(5))

	sp := NewSpawner(cfg, rng)
	reg := NewRegistry(16)
	world := NewWorld(RectAround(0, 0, 1, 1), 0.1)
	stats := NewStats(cfg.RecencyWeight)

	sp.Run(1, reg, world, &stats, true)
	if reg.Len() > cfg.MaxUnits {
		t.Errorf("Registry grew past the cap: %d > %d", reg.Len(), cfg.MaxUnits)
	}
}
