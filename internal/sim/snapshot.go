package sim

import (
	"sync/atomic"
	"time"
)

// UnitSnapshot is an immutable copy of a unit for rendering and the
// state API. Value type to ensure immutability.
type UnitSnapshot struct {
	ID     uint64  `json:"id"`
	Kind   string  `json:"kind"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Snapshot is a complete immutable view of the simulation after one
// tick. The Units slice is preallocated and capped.
type Snapshot struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`

	Units []UnitSnapshot `json:"units"`

	Score          uint64 `json:"score"`
	SurvivedTicks  uint64 `json:"survivedTicks"`
	BulletCount    int    `json:"bulletCount"`
	GameOver       bool   `json:"gameOver"`
	Spawned        uint64 `json:"spawned"`
	DuplicatePairs uint64 `json:"duplicatePairs"`

	AvgTickSeconds   float64 `json:"avgTickSeconds"`
	AvgRenderSeconds float64 `json:"avgRenderSeconds"`
}

// VisibleUnits appends the units whose bounding boxes intersect the
// given viewport to out and returns it. Pass a reused buffer to keep
// render calls allocation-free.
func (s *Snapshot) VisibleUnits(view Rect, out []UnitSnapshot) []UnitSnapshot {
	for _, u := range s.Units {
		if u.X+u.Radius < view.MinX || u.X-u.Radius > view.MaxX ||
			u.Y+u.Radius < view.MinY || u.Y-u.Radius > view.MaxY {
			continue
		}
		out = append(out, u)
	}
	return out
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure.
// Triple buffering gives a lock-free producer/consumer split: the tick
// writes one buffer while readers hold the last published one.
type SnapshotPool struct {
	snapshots [3]Snapshot
	writeIdx  uint32 // atomic - producer index
	readIdx   uint32 // atomic - consumer index
	sequence  uint64 // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with unit slices preallocated to
// maxUnits.
func NewSnapshotPool(maxUnits int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := range pool.snapshots {
		pool.snapshots[i].Units = make([]UnitSnapshot, 0, maxUnits)
	}
	return pool
}

// AcquireWrite gets the next write slot (producer only, called from the
// tick). The returned snapshot has reset slices with preserved capacity.
func (p *SnapshotPool) AcquireWrite() *Snapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]
	snap.Units = snap.Units[:0]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite marks the write complete and advances the read pointer.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest complete snapshot (consumer side).
func (p *SnapshotPool) AcquireRead() *Snapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}
