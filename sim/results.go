// Results collection: turns the engine's terminal state into the stable
// results bundle consumed by the dashboard and the schedule optimizer.

package sim

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pacu-sim/pacu-sim/sim/trace"
)

// UtilizationSummary is the per-resource-category utilization result.
type UtilizationSummary struct {
	Mean      float64 // time-weighted mean busy fraction
	Peak      float64 // peak busy fraction
	PeakCount int     // peak simultaneous busy count
}

// Results is the full output bundle of one simulation run. The shape of this
// struct is a stable boundary: the optimizer repeatedly calls RunSimulation
// with perturbed schedules and compares the resulting scores.
type Results struct {
	RunID string
	Seed  int64

	Completed []*SurgeryCase
	Cancelled []*SurgeryCase

	// ArrivalsProcessed counts arrival events executed; always equals
	// len(Completed) + len(Cancelled).
	ArrivalsProcessed int

	ORWait            Distribution
	Pacu1Wait         Distribution
	Pacu2Wait         Distribution
	WardTransferDelay Distribution

	Utilization map[ResourceKind]UtilizationSummary
	Occupancy   map[ResourceKind][]OccupancySample

	PacuBlockedRatio     float64
	NurseOvertimeMinutes float64
	ShiftCoverage        []ShiftCoverage

	Costs CostBreakdown

	Trace []trace.CaseRecord

	Elapsed time.Duration
}

// Collect builds the Results bundle from the simulator's terminal state.
func (s *Simulator) Collect(elapsed time.Duration) *Results {
	nurseCosts := s.Nurses.Costs()

	costs := CostBreakdown{
		OR:            s.ORs.TotalCost,
		Pacu1Beds:     s.Pacu1.TotalCost,
		Pacu2Beds:     s.Pacu2.TotalCost,
		Nurse:         nurseCosts.Base,
		NurseOvertime: nurseCosts.Overtime,
		Ward:          s.Ward.TotalCost,
		Cancellation:  float64(len(s.Cancelled)) * s.Config.Costs.PerCancellation,
	}
	costs.Sum()

	util := make(map[ResourceKind]UtilizationSummary, len(s.Metrics.Occupancy))
	occupancy := make(map[ResourceKind][]OccupancySample, len(s.Metrics.Occupancy))
	for kind, series := range s.Metrics.Occupancy {
		util[kind] = UtilizationSummary{
			Mean:      series.MeanUtilization(s.Metrics.SimEndedTime),
			Peak:      series.PeakUtilization(),
			PeakCount: series.Peak(),
		}
		occupancy[kind] = series.Samples()
	}

	records := make([]trace.CaseRecord, 0, len(s.Completed)+len(s.Cancelled))
	for _, c := range s.Completed {
		records = append(records, caseRecord(c))
	}
	for _, c := range s.Cancelled {
		records = append(records, caseRecord(c))
	}

	return &Results{
		RunID:                uuid.NewString(),
		Seed:                 int64(s.RNG.Key()),
		Completed:            s.Completed,
		Cancelled:            s.Cancelled,
		ArrivalsProcessed:    s.ArrivalsProcessed,
		ORWait:               NewDistribution(s.Metrics.ORWaits),
		Pacu1Wait:            NewDistribution(s.Metrics.Pacu1Waits),
		Pacu2Wait:            NewDistribution(s.Metrics.Pacu2Waits),
		WardTransferDelay:    NewDistribution(s.Metrics.WardTransferDelays),
		Utilization:          util,
		Occupancy:            occupancy,
		PacuBlockedRatio:     s.Metrics.PacuBlockedRatio(),
		NurseOvertimeMinutes: nurseCosts.OvertimeMinutes,
		ShiftCoverage:        s.Nurses.Coverage(),
		Costs:                costs,
		Trace:                records,
		Elapsed:              elapsed,
	}
}

// caseRecord flattens a SurgeryCase into the pure-data trace form.
func caseRecord(c *SurgeryCase) trace.CaseRecord {
	r := trace.CaseRecord{
		CaseID:            c.ID,
		ClassID:           c.Class.ID,
		Emergency:         c.Emergency,
		State:             string(c.State),
		ScheduledTime:     c.ScheduledTime,
		ArrivalTime:       c.ArrivalTime,
		ORStart:           unsetTime,
		OREnd:             unsetTime,
		Pacu1Start:        unsetTime,
		Pacu1End:          unsetTime,
		Pacu2Start:        unsetTime,
		Pacu2End:          unsetTime,
		ReadyForWard:      c.ReadyForWardTime,
		WardArrival:       unsetTime,
		Discharge:         c.DischargeTime,
		ORWait:            c.ORWait,
		Pacu1Wait:         c.Pacu1Wait,
		Pacu2Wait:         c.Pacu2Wait,
		WardTransferDelay: c.WardTransferDelay,
	}
	if c.OR != nil {
		r.ORStart, r.OREnd = c.OR.Start, c.OR.End
	}
	if c.Pacu1 != nil {
		r.Pacu1Start, r.Pacu1End = c.Pacu1.Start, c.Pacu1.End
	}
	if c.Pacu2 != nil {
		r.Pacu2Start, r.Pacu2End = c.Pacu2.Start, c.Pacu2.End
	}
	if c.Ward != nil {
		r.WardArrival = c.Ward.Start
	}
	return r
}

// RunSimulation is the pure engine entry point consumed by the dashboard and
// the optimizer alike: params in, results out. Each call constructs fresh
// engine state; calls never share mutable state, so concurrent independent
// runs are safe.
func RunSimulation(cfg *SimulationConfig) (*Results, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}

	rng := NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	cases := GenerateCases(cfg, rng)

	s := NewSimulator(cfg, rng)
	s.SeedCases(cases)
	s.Run()

	return s.Collect(time.Since(start)), nil
}

// Print writes a human-readable summary of the run, in the spirit of the
// metrics printout at the end of a CLI invocation.
func (r *Results) Print() {
	fmt.Println("=== Simulation Results ===")
	fmt.Printf("Run                  : %s (seed %d, %s)\n", r.RunID, r.Seed, r.Elapsed.Round(time.Millisecond))
	fmt.Printf("Completed cases      : %d\n", len(r.Completed))
	fmt.Printf("Cancelled cases      : %d\n", len(r.Cancelled))
	fmt.Printf("OR wait              : mean %.1f min, p95 %.1f min\n", r.ORWait.Mean, r.ORWait.P95)
	fmt.Printf("Phase-1 wait         : mean %.1f min, p95 %.1f min\n", r.Pacu1Wait.Mean, r.Pacu1Wait.P95)
	fmt.Printf("Ward transfer delay  : mean %.1f min, p95 %.1f min\n", r.WardTransferDelay.Mean, r.WardTransferDelay.P95)
	for _, kind := range []ResourceKind{ResourceOR, ResourcePacu1Bed, ResourcePacu2Bed, ResourceWardBed, ResourceNurse} {
		u := r.Utilization[kind]
		fmt.Printf("%-20s : mean %.1f%%, peak %.1f%% (%d busy)\n", kind, u.Mean*100, u.Peak*100, u.PeakCount)
	}
	fmt.Printf("PACU blocked ratio   : %.3f\n", r.PacuBlockedRatio)
	fmt.Printf("Nurse overtime       : %.1f min\n", r.NurseOvertimeMinutes)
	fmt.Printf("Total cost           : %.2f (OR %.2f, PACU1 %.2f, PACU2 %.2f, nurse %.2f + OT %.2f, ward %.2f, cancellations %.2f)\n",
		r.Costs.Total, r.Costs.OR, r.Costs.Pacu1Beds, r.Costs.Pacu2Beds,
		r.Costs.Nurse, r.Costs.NurseOvertime, r.Costs.Ward, r.Costs.Cancellation)
}
