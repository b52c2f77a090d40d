package sim

import (
	"math"
	"testing"
)

// TestRollingAverageUnweightedPhase verifies the average is an exact
// mean for the first 1/recency samples
func TestRollingAverageUnweightedPhase(t *testing.T) {
	a := NewRollingAverage(0.1) // unweighted for the first 10 samples

	samples := []float64{4, 8, 6, 2, 10}
	sum := 0.0
	for i, s := range samples {
		a.Add(s)
		sum += s
		want := sum / float64(i+1)
		if math.Abs(a.Value()-want) > 1e-12 {
			t.Fatalf("After %d samples: got %v, want exact mean %v", i+1, a.Value(), want)
		}
	}
}

// TestRollingAverageEMAPhase verifies the recency floor takes over once
// 1/count drops below it
func TestRollingAverageEMAPhase(t *testing.T) {
	a := NewRollingAverage(0.5)

	a.Add(1) // count 1: w = max(1, 0.5) = 1
	a.Add(3) // count 2: w = max(0.5, 0.5) = 0.5 -> 1 + 0.5*(3-1) = 2
	if a.Value() != 2 {
		t.Fatalf("Expected 2, got %v", a.Value())
	}
	a.Add(6) // count 3: w = max(1/3, 0.5) = 0.5 -> 2 + 0.5*4 = 4
	if a.Value() != 4 {
		t.Errorf("Expected EMA weight 0.5 to dominate: got %v, want 4", a.Value())
	}
}

// TestRollingAverageBoundsMemory verifies old samples decay: after many
// constant samples the average converges regardless of history
func TestRollingAverageBoundsMemory(t *testing.T) {
	a := NewRollingAverage(0.05)
	a.Add(1000) // outlier first sample
	for i := 0; i < 500; i++ {
		a.Add(1)
	}
	if math.Abs(a.Value()-1) > 1e-6 {
		t.Errorf("Average should forget the outlier, got %v", a.Value())
	}
}

// TestStatsCounters verifies tick/render samples land in separate
// aggregates
func TestStatsCounters(t *testing.T) {
	s := NewStats(0.05)
	s.TickTime.Add(0.002)
	s.RenderTime.Add(0.010)

	if s.TickTime.Count() != 1 || s.RenderTime.Count() != 1 {
		t.Error("Each aggregate should fold its own samples")
	}
	if s.TickTime.Value() != 0.002 {
		t.Errorf("First tick sample should be taken verbatim, got %v", s.TickTime.Value())
	}
	if s.RenderTime.Value() != 0.010 {
		t.Errorf("First render sample should be taken verbatim, got %v", s.RenderTime.Value())
	}
}
