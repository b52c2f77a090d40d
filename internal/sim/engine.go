package sim

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"dodger/internal/sim/spatial"
)

// pairKey identifies an unordered unit pair for the duplicate-resolution
// detector. The product/sum composite is symmetric under argument order;
// it is a diagnostic key only, correctness comes from the grid's
// midpoint ownership rule.
type pairKey struct {
	product uint64
	sum     uint64
}

// Engine is the tick orchestrator. It owns the registry, the broadphase
// grid, the spawner, and the stats, and advances the whole simulation
// one fixed step at a time.
//
// A tick runs to completion with no suspension points: integrate →
// boundary policy → collisions → spawns → compaction → stats. There is
// exactly one mutator; renderers and the API read lock-free snapshots
// published at the end of each tick.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	world   World
	reg     *Registry
	grid    *spatial.Grid
	spawner *Spawner
	stats   Stats

	player *Unit

	// Deterministic RNG: one shared stream for spawner and any future
	// stochastic behavior, seedable for reproducible runs.
	rng *rand.Rand

	// pairSeen detects a pair resolved twice in one tick. Cleared, not
	// reallocated, each tick.
	pairSeen map[pairKey]struct{}

	snapshots *SnapshotPool

	// OnTick, if set, is invoked at the end of every tick with the
	// published snapshot and the tick's wall duration. Used by the host
	// to wire metrics and the state feed without the engine importing
	// them.
	OnTick func(*Snapshot, time.Duration)

	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewEngine creates an engine and places the single player unit at the
// arena center. Exactly one player exists for the life of the
// simulation; its Removed flag alone signals game over.
func NewEngine(cfg Config) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	inner := RectAround(0, 0, cfg.InnerWidth/2, cfg.InnerHeight/2)
	world := NewWorld(inner, cfg.OuterMargin)

	reg := NewRegistry(cfg.MaxUnits)
	player := reg.Create(PlayerTemplate, inner.CenterX(), inner.CenterY(), CreateOpts{})

	grid := spatial.NewGrid(world.Outer.MinX, world.Outer.MinY,
		world.Outer.Width(), world.Outer.Height(), cfg.BinSize)

	return &Engine{
		cfg:       cfg,
		world:     world,
		reg:       reg,
		grid:      grid,
		spawner:   NewSpawner(cfg, rng),
		stats:     NewStats(cfg.RecencyWeight),
		player:    player,
		rng:       rng,
		pairSeen:  make(map[pairKey]struct{}, 64),
		snapshots: NewSnapshotPool(cfg.MaxUnits),
		stopChan:  make(chan struct{}),
	}
}

// Start begins the fixed-step loop at the configured tick rate.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.cfg.TickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.Step()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Simulation started at %d TPS", e.cfg.TickRate)
}

// Stop halts the loop. Safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}
	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	e.stopOnce.Do(func() { close(e.stopChan) })
	log.Println("🛑 Simulation stopped")
}

// Step advances the simulation by one tick. The host may call it
// directly instead of Start when it drives the step cadence itself.
func (e *Engine) Step() {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.stats.TickIndex++

	e.integrate()
	e.collide()
	e.spawner.Run(e.stats.TickIndex, e.reg, e.world, &e.stats, !e.player.Removed)
	e.reg.Compact()

	if !e.player.Removed {
		e.stats.SurvivedTicks++
	}

	elapsed := time.Since(start)
	e.stats.TickTime.Add(elapsed.Seconds())

	snap := e.produceSnapshot()
	if e.OnTick != nil {
		e.OnTick(snap, elapsed)
	}
}

// integrate advances every live unit by its velocity (explicit Euler,
// unit step) and applies the boundary policy, then the unconditional
// outer cutoff.
func (e *Engine) integrate() {
	e.reg.ForEach(func(u *Unit) {
		if u.Removed {
			return
		}
		u.X += u.VX
		u.Y += u.VY

		e.applyBoundary(u)

		// Outer cutoff: pure cleanup, independent of template policy,
		// so no unit survives indefinitely off-arena.
		if !e.world.Outer.Contains(u.X, u.Y) {
			u.Removed = true
		}
	})
}

func (e *Engine) applyBoundary(u *Unit) {
	inner := e.world.Inner
	switch u.Tmpl.Boundary {
	case PolicyRepulsion:
		// Soft containment wall: clamp the unit's edge inside the
		// bounds on each axis independently; velocity unchanged.
		if u.X-u.Radius < inner.MinX {
			u.X = inner.MinX + u.Radius
		} else if u.X+u.Radius > inner.MaxX {
			u.X = inner.MaxX - u.Radius
		}
		if u.Y-u.Radius < inner.MinY {
			u.Y = inner.MinY + u.Radius
		} else if u.Y+u.Radius > inner.MaxY {
			u.Y = inner.MaxY - u.Radius
		}
	case PolicyDestroy:
		box := Rect{
			MinX: u.X - u.Radius, MinY: u.Y - u.Radius,
			MaxX: u.X + u.Radius, MaxY: u.Y + u.Radius,
		}
		if !box.Intersects(inner) {
			u.Removed = true
		}
	case PolicyPass:
		// Exit handled by the outer cutoff.
	default:
		// Configuration fault: degrade to no-op, never abort the tick.
		log.Printf("⚠️ Unit %d has unrecognized boundary policy %d, ignoring", u.ID, u.Tmpl.Boundary)
	}
}

// collide rebuilds the broadphase grid from scratch and resolves every
// candidate pair exactly once.
func (e *Engine) collide() {
	e.grid.Clear()
	clear(e.pairSeen)

	units := e.reg.Units()
	for i, u := range units {
		if u.Removed || !u.Tmpl.Collidable {
			continue
		}
		e.grid.InsertCircle(uint32(i), u.X, u.Y, u.Radius)
	}

	e.grid.ForEachPair(
		func(id uint32) (float64, float64, float64) {
			u := units[id]
			return u.X, u.Y, u.Radius
		},
		func(a, b uint32) {
			u, v := units[a], units[b]
			key := pairKey{product: u.ID * v.ID, sum: u.ID + v.ID}
			if _, dup := e.pairSeen[key]; dup {
				// Invariant violation: the midpoint ownership rule
				// should resolve each pair in exactly one bin.
				e.stats.DuplicatePairs++
				log.Printf("⚠️ Pair (%d, %d) resolved more than once in tick %d", u.ID, v.ID, e.stats.TickIndex)
				return
			}
			e.pairSeen[key] = struct{}{}
			ResolvePair(u, v)
		},
	)
}

// SetPlayerInput sets the player velocity from a directional intent
// vector with per-axis components in {-1, 0, +1}. Diagonal intent is
// normalized to unit length before scaling by the configured max speed.
// A dead player no longer steers.
func (e *Engine) SetPlayerInput(dx, dy int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.player.Removed {
		return
	}

	fx := float64(clampIntent(dx))
	fy := float64(clampIntent(dy))
	if fx != 0 && fy != 0 {
		inv := 1 / math.Sqrt2
		fx *= inv
		fy *= inv
	}
	e.player.VX = fx * e.cfg.PlayerMaxSpeed
	e.player.VY = fy * e.cfg.PlayerMaxSpeed
}

func clampIntent(v int) int {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// ObserveRender folds one render call's wall duration into the smoothed
// render-time average (the aggregation formula is shared with ticks).
func (e *Engine) ObserveRender(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.RenderTime.Add(d.Seconds())
}

// GetSnapshot returns the latest published snapshot. Lock-free; the
// preferred read path for renderers and the API.
func (e *Engine) GetSnapshot() *Snapshot {
	return e.snapshots.AcquireRead()
}

// produceSnapshot copies the post-compaction state into the next write
// buffer and publishes it. Caller holds the engine lock.
func (e *Engine) produceSnapshot() *Snapshot {
	snap := e.snapshots.AcquireWrite()
	snap.Tick = e.stats.TickIndex
	snap.Score = e.stats.Score
	snap.SurvivedTicks = e.stats.SurvivedTicks
	snap.GameOver = e.player.Removed
	snap.Spawned = e.stats.Spawned
	snap.DuplicatePairs = e.stats.DuplicatePairs
	snap.AvgTickSeconds = e.stats.TickTime.Value()
	snap.AvgRenderSeconds = e.stats.RenderTime.Value()

	bullets := 0
	for _, u := range e.reg.Units() {
		if u.Removed {
			continue
		}
		if u.Kind == KindBullet {
			bullets++
		}
		if len(snap.Units) < cap(snap.Units) {
			snap.Units = append(snap.Units, UnitSnapshot{
				ID:     u.ID,
				Kind:   u.Kind.String(),
				X:      u.X,
				Y:      u.Y,
				Radius: u.Radius,
			})
		}
	}
	snap.BulletCount = bullets

	e.snapshots.PublishWrite()
	return snap
}

// World returns the session geometry.
func (e *Engine) World() World {
	return e.world
}

// Player returns the player unit. For tests and host wiring; the unit
// must not be mutated outside the engine.
func (e *Engine) Player() *Unit {
	return e.player
}

// StatsSnapshot returns a copy of the current stats.
func (e *Engine) StatsSnapshot() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Registry exposes the unit registry for tests.
func (e *Engine) Registry() *Registry {
	return e.reg
}
