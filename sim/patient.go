// Defines the PatientClass reference data and the SurgeryCase struct that
// models an individual patient's progression through OR, recovery, and ward.

package sim

import "fmt"

// ProcessType selects the care pathway variant for a patient class.
type ProcessType string

const (
	// ProcessStandard goes through both recovery phases and then the ward.
	ProcessStandard ProcessType = "standard"
	// ProcessOutpatient is discharged directly after recovery, no ward stay.
	ProcessOutpatient ProcessType = "outpatient"
	// ProcessDirectTransfer skips recovery entirely and goes straight to the ward.
	ProcessDirectTransfer ProcessType = "directTransfer"
)

// CaseState represents the lifecycle state of a surgery case.
type CaseState string

const (
	CaseScheduled    CaseState = "scheduled"
	CaseArrived      CaseState = "arrived"
	CaseWaitingOR    CaseState = "waiting_or"
	CaseInOR         CaseState = "in_or"
	CaseWaitingPacu1 CaseState = "waiting_pacu1"
	CaseInPacu1      CaseState = "in_pacu1"
	CaseWaitingPacu2 CaseState = "waiting_pacu2"
	CaseInPacu2      CaseState = "in_pacu2"
	CaseReadyForWard CaseState = "ready_for_ward"
	CaseWaitingWard  CaseState = "waiting_ward"
	CaseInWard       CaseState = "in_ward"
	CaseDischarged   CaseState = "discharged"
	CaseCancelled    CaseState = "cancelled"
)

// PatientClass is immutable reference data describing a category of surgical
// case. Loaded once per run; cases hold a pointer to their class.
type PatientClass struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Priority is the scheduling priority; lower values are more urgent.
	Priority int `yaml:"priority"`

	SurgeryMean    float64 `yaml:"surgery_mean"`
	SurgeryStdDev  float64 `yaml:"surgery_std_dev"`
	Pacu1Mean      float64 `yaml:"pacu1_mean"`
	Pacu1StdDev    float64 `yaml:"pacu1_std_dev"`
	Pacu2Mean      float64 `yaml:"pacu2_mean"`
	Pacu2StdDev    float64 `yaml:"pacu2_std_dev"`
	WardStayMean   float64 `yaml:"ward_stay_mean"`
	WardStayStdDev float64 `yaml:"ward_stay_std_dev"`

	Process ProcessType `yaml:"process"`

	// CancellationRisk is the probability, rolled once at arrival, that the
	// case is cancelled before OR assignment.
	CancellationRisk float64 `yaml:"cancellation_risk"`

	// TimeOfDayVariability scales durations by start hour; see AdjustedDuration.
	TimeOfDayVariability float64 `yaml:"time_of_day_variability"`
}

// unsetTime marks a timeline timestamp that has not been reached.
const unsetTime = -1

// noResource marks an unassigned resource slot index.
const noResource = -1

// PhaseStamp records the start and end of one occupancy phase.
// End stays unsetTime while the phase is in progress.
type PhaseStamp struct {
	Start float64
	End   float64
}

// SurgeryCase models a single patient instance moving through the pathway.
// Created at arrival-event generation time (from the case list or synthesized
// for an emergency), mutated exclusively by the Simulator as events fire, and
// retained in either the completed or cancelled result list at simulation end.
type SurgeryCase struct {
	ID    string
	Class *PatientClass

	// Room is the OR the schedule assigned this case to, or noResource for
	// emergencies (any free OR).
	Room int

	ScheduledTime   float64 // planned arrival (minutes from simulation start)
	ArrivalTime     float64 // actual arrival; unsetTime until the arrival event fires
	PlannedDuration float64 // surgery duration drawn at schedule time

	// Priority is inherited from the class; emergencies override it with the
	// most urgent level.
	Priority  int
	Emergency bool

	State CaseState

	// Assigned resource slot indices, set while held and cleared on release.
	AssignedOR    int
	AssignedBed   int
	AssignedNurse int

	// heldBedKind tracks which PACU pool AssignedBed belongs to. A patient
	// blocked on a ward bed keeps their recovery bed, so the bed can outlive
	// the recovery phase itself.
	heldBedKind ResourceKind

	// Timeline. Pointers are nil for pathway stages the processType skips.
	OR    *PhaseStamp
	Pacu1 *PhaseStamp
	Pacu2 *PhaseStamp
	Ward  *PhaseStamp

	ReadyForWardTime float64
	DischargeTime    float64

	// Per-stage waits, recorded when the stage is entered.
	ORWait            float64
	Pacu1Wait         float64
	Pacu2Wait         float64
	WardTransferDelay float64
}

// NewSurgeryCase creates a case in the scheduled state with all timeline
// fields unset.
func NewSurgeryCase(id string, class *PatientClass, room int, scheduled, duration float64) *SurgeryCase {
	return &SurgeryCase{
		ID:               id,
		Class:            class,
		Room:             room,
		ScheduledTime:    scheduled,
		ArrivalTime:      unsetTime,
		PlannedDuration:  duration,
		Priority:         class.Priority,
		State:            CaseScheduled,
		AssignedOR:       noResource,
		AssignedBed:      noResource,
		AssignedNurse:    noResource,
		ReadyForWardTime: unsetTime,
		DischargeTime:    unsetTime,
	}
}

func (c *SurgeryCase) String() string {
	return fmt.Sprintf("SurgeryCase{ID: %s, Class: %s, State: %s}", c.ID, c.Class.ID, c.State)
}

// Terminal reports whether the case has reached a terminal state.
func (c *SurgeryCase) Terminal() bool {
	return c.State == CaseDischarged || c.State == CaseCancelled
}
