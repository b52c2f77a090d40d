package sim

import "log"

// Kind identifies a unit's gameplay role.
type Kind uint8

const (
	KindPlayer Kind = iota
	KindBullet
)

// String returns the kind name used in snapshots and logs.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindBullet:
		return "bullet"
	default:
		return "unknown"
	}
}

// BoundaryPolicy selects what happens when a unit crosses the inner bounds.
type BoundaryPolicy uint8

const (
	// PolicyRepulsion clamps the unit's edge inside the inner bounds on
	// each axis independently. Used for the player.
	PolicyRepulsion BoundaryPolicy = iota
	// PolicyDestroy flags the unit as removed once its bounding box has
	// left the inner bounds entirely.
	PolicyDestroy
	// PolicyPass lets the unit fly through; the outer-bounds cutoff
	// handles cleanup. Used for bullets.
	PolicyPass
)

// Template is an immutable shared descriptor of a unit kind.
// Templates are process-wide constants; every unit holds a reference to
// one and templates are never mutated after init.
type Template struct {
	Kind       Kind
	Radius     float64
	Mass       float64
	Boundary   BoundaryPolicy
	Collidable bool
}

// Builtin templates. Units copy radius/mass from these at creation unless
// overridden, so mutating a template at runtime would silently change the
// defaults of future units only; don't.
var (
	PlayerTemplate = &Template{
		Kind:       KindPlayer,
		Radius:     0.04,
		Mass:       1.0,
		Boundary:   PolicyRepulsion,
		Collidable: true,
	}

	BulletTemplate = &Template{
		Kind:       KindBullet,
		Radius:     0.015,
		Mass:       1.0,
		Boundary:   PolicyPass,
		Collidable: true,
	}

	HeavyBulletTemplate = &Template{
		Kind:       KindBullet,
		Radius:     0.03,
		Mass:       4.0,
		Boundary:   PolicyPass,
		Collidable: true,
	}
)

// SpawnEntry pairs a probability mass with the template it selects.
type SpawnEntry struct {
	P    float64
	Tmpl *Template
}

// SpawnTable is a cumulative weighted-selection table. Masses must sum
// to 1; a table that doesn't is a configuration fault (logged, and the
// last entry acts as an implicit floor).
type SpawnTable []SpawnEntry

// Validate checks that the table is non-empty and its masses sum to 1.
func (t SpawnTable) Validate() bool {
	if len(t) == 0 {
		return false
	}
	sum := 0.0
	for _, e := range t {
		sum += e.P
	}
	return sum > 1-1e-6 && sum < 1+1e-6
}

// Pick walks the table subtracting each entry's mass from p until the
// remainder is less than the next entry's mass. If p is not claimed by
// any entry the last entry is selected as a floor.
func (t SpawnTable) Pick(p float64) *Template {
	for _, e := range t {
		if p < e.P {
			return e.Tmpl
		}
		p -= e.P
	}
	return t[len(t)-1].Tmpl
}

// warnSpawnTable logs the configuration fault once per engine.
func warnSpawnTable(t SpawnTable) {
	sum := 0.0
	for _, e := range t {
		sum += e.P
	}
	log.Printf("⚠️ Spawn table masses sum to %.6f, not 1; last entry acts as floor", sum)
}
