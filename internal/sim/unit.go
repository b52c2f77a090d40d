package sim

// Unit is a live circular entity. Units are owned by the Registry and
// mutated in place by the engine each tick; nothing outside the tick
// holds a reference (renderers read immutable snapshots instead).
type Unit struct {
	ID   uint64
	Tmpl *Template
	Kind Kind // copied from Tmpl for fast dispatch

	X, Y   float64
	VX, VY float64
	Radius float64
	Mass   float64

	// Removed marks the unit for the next compaction pass. For the
	// player it is the game-over signal; the player stays in the
	// registry regardless.
	Removed bool
}
