package sim

import (
	"math"
	"math/rand"
	"testing"
)

func TestPartitionedRNG_SameSeed_SameSequence(t *testing.T) {
	// GIVEN two PartitionedRNGs with the same key
	a := NewPartitionedRNG(NewSimulationKey(42))
	b := NewPartitionedRNG(NewSimulationKey(42))

	// WHEN the same subsystem draws values
	// THEN the sequences are identical
	ra, rb := a.ForSubsystem(SubsystemDurations), b.ForSubsystem(SubsystemDurations)
	for i := 0; i < 100; i++ {
		if va, vb := ra.Float64(), rb.Float64(); va != vb {
			t.Fatalf("draw %d diverged: %v vs %v", i, va, vb)
		}
	}
}

func TestPartitionedRNG_SubsystemsAreIsolated(t *testing.T) {
	// GIVEN one PartitionedRNG
	a := NewPartitionedRNG(NewSimulationKey(7))
	b := NewPartitionedRNG(NewSimulationKey(7))

	// WHEN one instance burns draws on a different subsystem first
	burn := a.ForSubsystem(SubsystemArrivals)
	for i := 0; i < 50; i++ {
		burn.Float64()
	}

	// THEN the durations subsystem is unaffected
	ra, rb := a.ForSubsystem(SubsystemDurations), b.ForSubsystem(SubsystemDurations)
	for i := 0; i < 20; i++ {
		if va, vb := ra.Float64(), rb.Float64(); va != vb {
			t.Fatalf("durations subsystem perturbed by arrivals draws at %d", i)
		}
	}
}

func TestPartitionedRNG_ForSubsystem_CachesInstance(t *testing.T) {
	// GIVEN a PartitionedRNG
	p := NewPartitionedRNG(NewSimulationKey(1))

	// WHEN the same subsystem is requested twice
	// THEN the same *rand.Rand comes back
	if p.ForSubsystem(SubsystemSchedule) != p.ForSubsystem(SubsystemSchedule) {
		t.Error("ForSubsystem returned different instances for the same name")
	}
}

func TestPartitionedRNG_ScheduleUsesMasterSeedDirectly(t *testing.T) {
	// GIVEN a PartitionedRNG and a plain rand with the master seed
	p := NewPartitionedRNG(NewSimulationKey(99))
	plain := rand.New(rand.NewSource(99))

	// WHEN the schedule subsystem draws
	// THEN it matches the plain master-seeded source
	r := p.ForSubsystem(SubsystemSchedule)
	for i := 0; i < 10; i++ {
		if vr, vp := r.Float64(), plain.Float64(); vr != vp {
			t.Fatalf("schedule subsystem not master-seeded at draw %d", i)
		}
	}
}

func TestNormalRandom_NegativeDrawsClampToZero(t *testing.T) {
	// GIVEN a distribution that frequently draws negative
	r := rand.New(rand.NewSource(1))

	// WHEN many values are drawn
	sawZero := false
	for i := 0; i < 1000; i++ {
		v := NormalRandom(r, 1, 100)
		// THEN no value is negative, and clamping actually occurred
		if v < 0 {
			t.Fatalf("NormalRandom returned negative value %v", v)
		}
		if v == 0 {
			sawZero = true
		}
	}
	if !sawZero {
		t.Error("expected at least one clamped zero draw for mean 1, stddev 100")
	}
}

func TestNormalRandom_ZeroStdDev_ReturnsMean(t *testing.T) {
	// GIVEN zero standard deviation
	r := rand.New(rand.NewSource(1))

	// WHEN drawing
	// THEN the mean comes back exactly
	if v := NormalRandom(r, 45, 0); v != 45 {
		t.Errorf("NormalRandom with zero stddev: got %v, want 45", v)
	}
}

func TestExponentialRandom_NonPositiveRate_ReturnsInf(t *testing.T) {
	// GIVEN a non-positive rate
	r := rand.New(rand.NewSource(1))

	// WHEN drawing
	// THEN +Inf comes back, meaning no further arrivals
	if v := ExponentialRandom(r, 0); !math.IsInf(v, 1) {
		t.Errorf("ExponentialRandom(rate=0): got %v, want +Inf", v)
	}
	if v := ExponentialRandom(r, -1); !math.IsInf(v, 1) {
		t.Errorf("ExponentialRandom(rate=-1): got %v, want +Inf", v)
	}
}

func TestExponentialRandom_MeanApproximatesInverseRate(t *testing.T) {
	// GIVEN rate 0.5 (mean inter-arrival 2.0)
	r := rand.New(rand.NewSource(3))

	// WHEN averaging many draws
	sum := 0.0
	n := 20000
	for i := 0; i < n; i++ {
		sum += ExponentialRandom(r, 0.5)
	}
	mean := sum / float64(n)

	// THEN the sample mean is close to 1/rate
	if mean < 1.9 || mean > 2.1 {
		t.Errorf("sample mean %v, want ~2.0", mean)
	}
}

func TestWeightedSelection_Empty_ReturnsNotOK(t *testing.T) {
	// GIVEN an empty weight map
	r := rand.New(rand.NewSource(1))

	// WHEN selecting
	// THEN ok is false
	if _, ok := WeightedSelection(r, map[string]float64{}); ok {
		t.Error("WeightedSelection on empty map: got ok=true")
	}
}

func TestWeightedSelection_AllZeroWeights_ReturnsNotOK(t *testing.T) {
	// GIVEN weights summing to zero
	r := rand.New(rand.NewSource(1))

	// WHEN selecting
	// THEN ok is false
	if _, ok := WeightedSelection(r, map[string]float64{"a": 0, "b": 0}); ok {
		t.Error("WeightedSelection with zero weights: got ok=true")
	}
}

func TestWeightedSelection_SingleWeight_AlwaysSelected(t *testing.T) {
	// GIVEN one positive weight
	r := rand.New(rand.NewSource(1))

	// WHEN selecting repeatedly
	for i := 0; i < 20; i++ {
		got, ok := WeightedSelection(r, map[string]float64{"only": 3.5})
		// THEN the single key always comes back
		if !ok || got != "only" {
			t.Fatalf("WeightedSelection: got (%q, %v), want (only, true)", got, ok)
		}
	}
}

func TestWeightedSelection_SameSeed_SameDraws(t *testing.T) {
	// GIVEN two identically seeded sources and a multi-key distribution
	ra := rand.New(rand.NewSource(11))
	rb := rand.New(rand.NewSource(11))
	weights := map[string]float64{"x": 1, "y": 2, "z": 3}

	// WHEN drawing many times
	// THEN the draw sequences match, regardless of map iteration order
	for i := 0; i < 200; i++ {
		ga, _ := WeightedSelection(ra, weights)
		gb, _ := WeightedSelection(rb, weights)
		if ga != gb {
			t.Fatalf("draw %d diverged: %q vs %q", i, ga, gb)
		}
	}
}
