// Tracks simulation-wide statistics: wait-time samples, compacted occupancy
// time-series, PACU blocking, and cost accrual inputs for final reporting.

package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// OccupancySample is one point of a step-function occupancy series.
type OccupancySample struct {
	Time float64
	Busy int
}

// OccupancySeries is a compacted step function of a resource category's busy
// count: a new sample is appended only when the observed busy count changes,
// not every tick.
type OccupancySeries struct {
	capacity int
	samples  []OccupancySample

	lastBusy int
	lastTime float64
	integral float64 // busy-count x time
	peak     int
}

// NewOccupancySeries starts an empty series at time zero.
func NewOccupancySeries(capacity int) *OccupancySeries {
	return &OccupancySeries{
		capacity: capacity,
		samples:  []OccupancySample{{Time: 0, Busy: 0}},
	}
}

// Observe records the busy count at the given time. Unchanged counts are not
// appended.
func (s *OccupancySeries) Observe(now float64, busy int) {
	if busy == s.lastBusy {
		return
	}
	s.integral += float64(s.lastBusy) * (now - s.lastTime)
	s.lastTime = now
	s.lastBusy = busy
	if busy > s.peak {
		s.peak = busy
	}
	s.samples = append(s.samples, OccupancySample{Time: now, Busy: busy})
}

// Finalize closes the integral at the end of the run.
func (s *OccupancySeries) Finalize(now float64) {
	s.integral += float64(s.lastBusy) * (now - s.lastTime)
	s.lastTime = now
}

// Samples returns the recorded step function.
func (s *OccupancySeries) Samples() []OccupancySample {
	return s.samples
}

// Peak returns the maximum simultaneous busy count observed.
func (s *OccupancySeries) Peak() int {
	return s.peak
}

// MeanUtilization returns the time-weighted mean busy fraction over the
// given horizon.
func (s *OccupancySeries) MeanUtilization(horizon float64) float64 {
	if s.capacity == 0 || horizon <= 0 {
		return 0
	}
	return s.integral / (horizon * float64(s.capacity))
}

// PeakUtilization returns the peak busy fraction.
func (s *OccupancySeries) PeakUtilization() float64 {
	if s.capacity == 0 {
		return 0
	}
	return float64(s.peak) / float64(s.capacity)
}

// Distribution captures a statistical summary of a wait/delay metric.
type Distribution struct {
	Mean  float64
	P50   float64
	P95   float64
	P99   float64
	Min   float64
	Max   float64
	Count int
}

// NewDistribution computes a Distribution from raw values via
// full-sort-then-index. Returns a zero-value Distribution for empty input.
func NewDistribution(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean:  stat.Mean(sorted, nil),
		P50:   stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P95:   stat.Quantile(0.95, stat.Empirical, sorted, nil),
		P99:   stat.Quantile(0.99, stat.Empirical, sorted, nil),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Count: len(sorted),
	}
}

// CostBreakdown is the per-category cost total. Total is the exact sum of
// the other fields.
type CostBreakdown struct {
	OR            float64
	Pacu1Beds     float64
	Pacu2Beds     float64
	Nurse         float64
	NurseOvertime float64
	Ward          float64
	Cancellation  float64
	Total         float64
}

// Sum recomputes Total from the categories.
func (c *CostBreakdown) Sum() {
	c.Total = c.OR + c.Pacu1Beds + c.Pacu2Beds + c.Nurse + c.NurseOvertime + c.Ward + c.Cancellation
}

// Metrics aggregates statistics about the simulation for final reporting.
type Metrics struct {
	ORWaits            []float64
	Pacu1Waits         []float64
	Pacu2Waits         []float64
	WardTransferDelays []float64

	Occupancy map[ResourceKind]*OccupancySeries

	// PACU blocking: beds whose occupants are waiting on a ward bed.
	pacuBeds        int
	blocked         int
	blockedLastTime float64
	blockedIntegral float64

	CancelledCount int
	SimEndedTime   float64
}

// NewMetrics sizes the occupancy series from the configured capacities.
func NewMetrics(orCount, pacu1Beds, pacu2Beds, wardBeds, nurseCapacity int) *Metrics {
	return &Metrics{
		Occupancy: map[ResourceKind]*OccupancySeries{
			ResourceOR:       NewOccupancySeries(orCount),
			ResourcePacu1Bed: NewOccupancySeries(pacu1Beds),
			ResourcePacu2Bed: NewOccupancySeries(pacu2Beds),
			ResourceWardBed:  NewOccupancySeries(wardBeds),
			ResourceNurse:    NewOccupancySeries(nurseCapacity),
		},
		pacuBeds: pacu1Beds + pacu2Beds,
	}
}

// ObserveOccupancy records a busy count for one resource category.
func (m *Metrics) ObserveOccupancy(kind ResourceKind, now float64, busy int) {
	m.Occupancy[kind].Observe(now, busy)
}

// ObserveBlocked adjusts the count of PACU beds blocked on ward transfer.
func (m *Metrics) ObserveBlocked(now float64, delta int) {
	m.blockedIntegral += float64(m.blocked) * (now - m.blockedLastTime)
	m.blockedLastTime = now
	m.blocked += delta
}

// Finalize closes all running integrals at the end of the run.
func (m *Metrics) Finalize(now float64) {
	for _, s := range m.Occupancy {
		s.Finalize(now)
	}
	m.blockedIntegral += float64(m.blocked) * (now - m.blockedLastTime)
	m.blockedLastTime = now
	m.SimEndedTime = now
}

// PacuBlockedRatio returns the time-integrated fraction of PACU beds whose
// occupants were waiting on a ward bed.
func (m *Metrics) PacuBlockedRatio() float64 {
	if m.pacuBeds == 0 || m.SimEndedTime <= 0 {
		return 0
	}
	return m.blockedIntegral / (float64(m.pacuBeds) * m.SimEndedTime)
}
