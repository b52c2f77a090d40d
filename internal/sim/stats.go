package sim

import "math"

// RollingAverage folds samples into a smoothed mean with adaptive
// weight w = max(1/count, recency): an unweighted mean for the first
// 1/recency samples, an exponential moving average thereafter. This
// avoids early-sample noise while bounding memory of the past.
type RollingAverage struct {
	recency float64
	count   uint64
	avg     float64
}

// NewRollingAverage creates an average with the given recency weight.
func NewRollingAverage(recency float64) RollingAverage {
	return RollingAverage{recency: recency}
}

// Add folds one sample into the average.
func (a *RollingAverage) Add(sample float64) {
	a.count++
	w := math.Max(1/float64(a.count), a.recency)
	a.avg += (sample - a.avg) * w
}

// Value returns the current smoothed average.
func (a *RollingAverage) Value() float64 { return a.avg }

// Count returns the number of samples folded so far.
func (a *RollingAverage) Count() uint64 { return a.count }

// Stats holds the simulation's monotone counters and smoothed timing
// aggregates. Only the engine writes them; everyone else reads them
// through snapshots.
type Stats struct {
	Score          uint64
	Spawned        uint64
	TickIndex      uint64
	SurvivedTicks  uint64
	DuplicatePairs uint64 // dedup-invariant violations (bug detector)

	TickTime   RollingAverage
	RenderTime RollingAverage
}

// NewStats creates stats with both timing averages using the same
// recency weight.
func NewStats(recency float64) Stats {
	return Stats{
		TickTime:   NewRollingAverage(recency),
		RenderTime: NewRollingAverage(recency),
	}
}
