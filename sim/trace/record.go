// Package trace provides pathway-trace recording for capacity-planning
// analysis. This package has no dependencies on sim/ — it stores pure data
// types that callers (dashboards, exporters) may serialize as they like.
package trace

// CaseRecord captures one patient's full recorded timeline. Timestamps are
// minutes from simulation start; -1 marks a stage that was never reached.
type CaseRecord struct {
	CaseID    string
	ClassID   string
	Emergency bool
	State     string

	ScheduledTime float64
	ArrivalTime   float64
	ORStart       float64
	OREnd         float64
	Pacu1Start    float64
	Pacu1End      float64
	Pacu2Start    float64
	Pacu2End      float64
	ReadyForWard  float64
	WardArrival   float64
	Discharge     float64

	ORWait            float64
	Pacu1Wait         float64
	Pacu2Wait         float64
	WardTransferDelay float64
}
