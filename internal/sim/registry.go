package sim

// CreateOpts overrides template defaults at unit creation.
// Zero-value fields fall back to the template (a zero radius or mass is
// never valid, so the zero value is unambiguous).
type CreateOpts struct {
	Radius float64
	Mass   float64
	VX, VY float64
}

// Registry owns all live units: an append-ordered arena slice with a
// monotonic identity counter. Append is O(1), compaction is a single
// in-place filter pass that preserves insertion order.
type Registry struct {
	units  []*Unit
	nextID uint64
}

// NewRegistry creates a registry with capacity preallocated for capHint
// units to keep early ticks allocation-free.
func NewRegistry(capHint int) *Registry {
	if capHint < 16 {
		capHint = 16
	}
	return &Registry{units: make([]*Unit, 0, capHint)}
}

// Create allocates a unit from the template, assigns the next identity
// and appends it at the tail. Identity values are unique and strictly
// increasing for the life of the registry.
func (r *Registry) Create(tmpl *Template, x, y float64, opts CreateOpts) *Unit {
	radius := tmpl.Radius
	if opts.Radius > 0 {
		radius = opts.Radius
	}
	mass := tmpl.Mass
	if opts.Mass > 0 {
		mass = opts.Mass
	}

	r.nextID++
	u := &Unit{
		ID:     r.nextID,
		Tmpl:   tmpl,
		Kind:   tmpl.Kind,
		X:      x,
		Y:      y,
		VX:     opts.VX,
		VY:     opts.VY,
		Radius: radius,
		Mass:   mass,
	}
	r.units = append(r.units, u)
	return u
}

// Compact drops removed units with a zero-allocation in-place filter,
// preserving insertion order. The player unit is exempt: its Removed
// flag alone signals game over and it is never unlinked.
func (r *Registry) Compact() {
	n := 0
	for _, u := range r.units {
		if u.Removed && u.Kind != KindPlayer {
			continue
		}
		r.units[n] = u
		n++
	}
	// Release dropped tail pointers so dead units can be collected.
	for i := n; i < len(r.units); i++ {
		r.units[i] = nil
	}
	r.units = r.units[:n]
}

// ForEach visits every unit in insertion order. It does not allocate;
// the callback must not append or compact while iterating.
func (r *Registry) ForEach(fn func(*Unit)) {
	for _, u := range r.units {
		fn(u)
	}
}

// Units exposes the backing slice for index-based access (spatial grid,
// snapshots). Callers must treat it as read-only and never retain it
// across a Compact.
func (r *Registry) Units() []*Unit {
	return r.units
}

// Len returns the number of units currently in the registry, removed
// but not yet compacted units included.
func (r *Registry) Len() int {
	return len(r.units)
}
