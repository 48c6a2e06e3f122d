package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccupancySeries_CompactsUnchangedCounts(t *testing.T) {
	s := NewOccupancySeries(2)
	s.Observe(10, 1)
	s.Observe(15, 1) // unchanged, not appended
	s.Observe(20, 2)
	s.Observe(30, 0)
	s.Finalize(40)

	samples := s.Samples()
	require.Len(t, samples, 4, "initial point plus one sample per change")
	assert.Equal(t, OccupancySample{Time: 10, Busy: 1}, samples[1])
	assert.Equal(t, OccupancySample{Time: 20, Busy: 2}, samples[2])
	assert.Equal(t, OccupancySample{Time: 30, Busy: 0}, samples[3])
}

func TestOccupancySeries_MeanAndPeakUtilization(t *testing.T) {
	s := NewOccupancySeries(2)
	s.Observe(10, 1)
	s.Observe(20, 2)
	s.Observe(30, 0)
	s.Finalize(40)

	// busy integral: 0*10 + 1*10 + 2*10 + 0*10 = 30 busy-minutes
	assert.InDelta(t, 30.0/80.0, s.MeanUtilization(40), 1e-9)
	assert.Equal(t, 2, s.Peak())
	assert.InDelta(t, 1.0, s.PeakUtilization(), 1e-9)
}

func TestOccupancySeries_ZeroCapacity_ZeroUtilization(t *testing.T) {
	s := NewOccupancySeries(0)
	s.Finalize(100)
	assert.Zero(t, s.MeanUtilization(100))
	assert.Zero(t, s.PeakUtilization())
}

func TestNewDistribution_SummaryValues(t *testing.T) {
	d := NewDistribution([]float64{40, 10, 30, 20})

	assert.InDelta(t, 25.0, d.Mean, 1e-9)
	assert.InDelta(t, 20.0, d.P50, 1e-9)
	assert.InDelta(t, 40.0, d.P95, 1e-9)
	assert.Equal(t, 10.0, d.Min)
	assert.Equal(t, 40.0, d.Max)
	assert.Equal(t, 4, d.Count)
}

func TestNewDistribution_Empty_IsZeroValue(t *testing.T) {
	assert.Equal(t, Distribution{}, NewDistribution(nil))
}

func TestCostBreakdown_SumIsExact(t *testing.T) {
	c := CostBreakdown{
		OR:            100,
		Pacu1Beds:     20,
		Pacu2Beds:     10,
		Nurse:         30,
		NurseOvertime: 5,
		Ward:          15,
		Cancellation:  500,
	}
	c.Sum()
	assert.Equal(t, 680.0, c.Total)
}

func TestMetrics_PacuBlockedRatio(t *testing.T) {
	m := NewMetrics(1, 1, 1, 1, 1)

	// one of two PACU beds blocked from t=10 to t=30
	m.ObserveBlocked(10, +1)
	m.ObserveBlocked(30, -1)
	m.Finalize(40)

	assert.InDelta(t, 20.0/(2*40), m.PacuBlockedRatio(), 1e-9)
}

func TestMetrics_NoBlocking_ZeroRatio(t *testing.T) {
	m := NewMetrics(1, 1, 1, 1, 1)
	m.Finalize(100)
	assert.Zero(t, m.PacuBlockedRatio())
}
