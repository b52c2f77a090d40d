package sim

import (
	"math"
	"math/rand"
)

// Spawner procedurally creates inbound bullets along a time-growing
// schedule. It owns no units; everything it creates goes straight into
// the registry.
type Spawner struct {
	rate        float64 // expected spawns per tick at tick 0
	growthRate  float64 // exponential growth constant for the rate
	table       SpawnTable
	speed       float64 // base bullet speed, distance per tick
	speedGrowth float64 // exponential growth constant for speed
	devBase     float64 // log-normal speed deviation base
	maxUnits    int

	rng *rand.Rand
}

// NewSpawner builds a spawner from the engine config. A spawn table
// whose masses do not sum to 1 is a configuration fault: it is logged
// here once and degrades to the table's last-entry floor behavior.
func NewSpawner(cfg Config, rng *rand.Rand) *Spawner {
	if !cfg.SpawnTable.Validate() {
		warnSpawnTable(cfg.SpawnTable)
	}
	return &Spawner{
		rate:        cfg.SpawnRate,
		growthRate:  cfg.SpawnGrowthRate,
		table:       cfg.SpawnTable,
		speed:       cfg.BulletSpeed,
		speedGrowth: cfg.BulletSpeedGrowthRate,
		devBase:     cfg.SpeedDeviationBase,
		maxUnits:    cfg.MaxUnits,
		rng:         rng,
	}
}

// Run executes the spawn schedule for one tick. The continuous expected
// count is rate·exp(growth·tick) minus a single fresh uniform draw; the
// draw doubles as the loop's fractional threshold, so floor(n) units
// spawn with a probabilistic +1 from the remainder, making the expected
// count per tick exactly rate·exp(growth·tick).
//
// Returns the number of units spawned.
func (s *Spawner) Run(tick uint64, reg *Registry, world World, stats *Stats, playerAlive bool) int {
	n := s.rate*math.Exp(s.growthRate*float64(tick)) - s.rng.Float64()

	spawned := 0
	for i := 0; float64(i) < n; i++ {
		if reg.Len() >= s.maxUnits {
			break // hard cap; silently drop like any other resource limit
		}
		s.spawnOne(tick, reg, world)
		spawned++
		stats.Spawned++
		if playerAlive {
			// Score grows with spawn volume, not kills: surviving a
			// denser arena is worth more.
			stats.Score++
		}
	}
	return spawned
}

func (s *Spawner) spawnOne(tick uint64, reg *Registry, world World) {
	tmpl := s.table.Pick(s.rng.Float64())

	// Place the unit on the bounding circle just outside the playable
	// area, then aim it back toward the center with log-normal speed
	// jitter and Gaussian angular jitter.
	dist := tmpl.Radius + world.Inner.HalfDiagonal()
	theta := s.rng.Float64() * 2 * math.Pi
	x := world.Inner.CenterX() + dist*math.Cos(theta)
	y := world.Inner.CenterY() + dist*math.Sin(theta)

	speed := s.speed * math.Exp(s.speedGrowth*float64(tick)) * math.Pow(s.devBase, s.rng.NormFloat64())
	dir := theta + math.Pi + s.rng.NormFloat64()

	reg.Create(tmpl, x, y, CreateOpts{
		VX: speed * math.Cos(dir),
		VY: speed * math.Sin(dir),
	})
}
