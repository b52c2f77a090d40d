package sim

// Config holds the immutable simulation tunables, fixed at engine
// construction. Velocities and speeds are expressed in distance per
// tick, so integration needs no separate dt multiplication.
type Config struct {
	TickRate int // ticks per simulated second (host ticker cadence)

	// World geometry. Inner bounds are centered on the origin; the
	// outer cutoff is derived from them (half-diagonal + margin).
	InnerWidth  float64
	InnerHeight float64
	OuterMargin float64

	// Broadphase bin size; should be at least the largest unit
	// diameter so a colliding pair's midpoint bin sees both members.
	BinSize float64

	// Spawn schedule: expected spawns per tick at tick 0 and its
	// exponential growth constant.
	SpawnRate       float64
	SpawnGrowthRate float64
	SpawnTable      SpawnTable

	// Inbound bullet trajectory: base speed, its growth constant, and
	// the multiplicative log-normal deviation base.
	BulletSpeed           float64
	BulletSpeedGrowthRate float64
	SpeedDeviationBase    float64

	PlayerMaxSpeed float64

	// RecencyWeight is the EMA floor weight for smoothed timings.
	RecencyWeight float64

	// MaxUnits is a hard cap on registry size; the spawner silently
	// stops appending at the cap.
	MaxUnits int

	// Seed for the engine's random stream. Zero means derive one from
	// the wall clock.
	Seed int64
}

// DefaultConfig returns the standard arena tuning. Coordinates are
// normalized: the playable area is the [-1, 1] square.
func DefaultConfig() Config {
	return Config{
		TickRate:              60,
		InnerWidth:            2.0,
		InnerHeight:           2.0,
		OuterMargin:           0.1,
		BinSize:               0.1,
		SpawnRate:             0.02,
		SpawnGrowthRate:       0.0002,
		SpawnTable:            SpawnTable{{P: 0.9, Tmpl: BulletTemplate}, {P: 0.1, Tmpl: HeavyBulletTemplate}},
		BulletSpeed:           0.006,
		BulletSpeedGrowthRate: 0.0001,
		SpeedDeviationBase:    1.35,
		PlayerMaxSpeed:        0.012,
		RecencyWeight:         0.05,
		MaxUnits:              4096,
	}
}
