package sim

// Event defines the interface for all simulation events.
// Each event has a Timestamp (in simulated minutes), a type for logging, and
// an Execute method that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Seq() uint64
	Type() EventType
	Execute(*Simulator)

	// setSeq is assigned by Simulator.Schedule; the per-simulator sequence
	// gives stable FIFO ordering among equal-time events.
	setSeq(uint64)
}

// EventType identifies the kind of a simulation event.
type EventType string

const (
	EventPatientArrival       EventType = "PatientArrival"
	EventSurgeryEnd           EventType = "SurgeryEnd"
	EventPacu1End             EventType = "Pacu1End"
	EventPacu2End             EventType = "Pacu2End"
	EventDischargeCriteriaMet EventType = "DischargeCriteriaMet"
	EventWardDischarge        EventType = "WardDischarge"
	EventEmergencyArrival     EventType = "EmergencyArrival"
	EventNurseShiftStart      EventType = "NurseShiftStart"
	EventNurseShiftEnd        EventType = "NurseShiftEnd"
	EventSimulationEnd        EventType = "SimulationEnd"
)

// BaseEvent provides common event fields.
type BaseEvent struct {
	time      float64
	seq       uint64
	eventType EventType
}

func newBaseEvent(time float64, eventType EventType) BaseEvent {
	return BaseEvent{time: time, eventType: eventType}
}

func (e *BaseEvent) Timestamp() float64 { return e.time }
func (e *BaseEvent) Seq() uint64        { return e.seq }
func (e *BaseEvent) Type() EventType    { return e.eventType }
func (e *BaseEvent) setSeq(s uint64)    { e.seq = s }

// PatientArrivalEvent represents a patient arriving for surgery.
type PatientArrivalEvent struct {
	BaseEvent
	Case *SurgeryCase
}

func NewPatientArrivalEvent(time float64, c *SurgeryCase) *PatientArrivalEvent {
	return &PatientArrivalEvent{BaseEvent: newBaseEvent(time, EventPatientArrival), Case: c}
}

func (e *PatientArrivalEvent) Execute(sim *Simulator) {
	sim.handlePatientArrival(e.time, e.Case)
}

// SurgeryEndEvent fires when a patient's surgery completes, freeing the OR.
type SurgeryEndEvent struct {
	BaseEvent
	Case *SurgeryCase
}

func NewSurgeryEndEvent(time float64, c *SurgeryCase) *SurgeryEndEvent {
	return &SurgeryEndEvent{BaseEvent: newBaseEvent(time, EventSurgeryEnd), Case: c}
}

func (e *SurgeryEndEvent) Execute(sim *Simulator) {
	sim.handleSurgeryEnd(e.time, e.Case)
}

// Pacu1EndEvent fires when phase-1 recovery completes.
type Pacu1EndEvent struct {
	BaseEvent
	Case *SurgeryCase
}

func NewPacu1EndEvent(time float64, c *SurgeryCase) *Pacu1EndEvent {
	return &Pacu1EndEvent{BaseEvent: newBaseEvent(time, EventPacu1End), Case: c}
}

func (e *Pacu1EndEvent) Execute(sim *Simulator) {
	sim.handlePacu1End(e.time, e.Case)
}

// Pacu2EndEvent fires when phase-2 recovery completes.
type Pacu2EndEvent struct {
	BaseEvent
	Case *SurgeryCase
}

func NewPacu2EndEvent(time float64, c *SurgeryCase) *Pacu2EndEvent {
	return &Pacu2EndEvent{BaseEvent: newBaseEvent(time, EventPacu2End), Case: c}
}

func (e *Pacu2EndEvent) Execute(sim *Simulator) {
	sim.handlePacu2End(e.time, e.Case)
}

// DischargeCriteriaMetEvent fires when a patient is medically ready to leave
// the recovery unit (outpatient discharge or ward transfer).
type DischargeCriteriaMetEvent struct {
	BaseEvent
	Case *SurgeryCase
}

func NewDischargeCriteriaMetEvent(time float64, c *SurgeryCase) *DischargeCriteriaMetEvent {
	return &DischargeCriteriaMetEvent{BaseEvent: newBaseEvent(time, EventDischargeCriteriaMet), Case: c}
}

func (e *DischargeCriteriaMetEvent) Execute(sim *Simulator) {
	sim.handleDischargeCriteriaMet(e.time, e.Case)
}

// WardDischargeEvent fires when a patient's ward stay ends, freeing the ward bed.
type WardDischargeEvent struct {
	BaseEvent
	Case *SurgeryCase
}

func NewWardDischargeEvent(time float64, c *SurgeryCase) *WardDischargeEvent {
	return &WardDischargeEvent{BaseEvent: newBaseEvent(time, EventWardDischarge), Case: c}
}

func (e *WardDischargeEvent) Execute(sim *Simulator) {
	sim.handleWardDischarge(e.time, e.Case)
}

// EmergencyArrivalEvent synthesizes an unscheduled case and re-schedules the
// next emergency arrival.
type EmergencyArrivalEvent struct {
	BaseEvent
}

func NewEmergencyArrivalEvent(time float64) *EmergencyArrivalEvent {
	return &EmergencyArrivalEvent{BaseEvent: newBaseEvent(time, EventEmergencyArrival)}
}

func (e *EmergencyArrivalEvent) Execute(sim *Simulator) {
	sim.handleEmergencyArrival(e.time)
}

// NurseShiftStartEvent toggles a shift's nurses on duty (enhanced model only).
type NurseShiftStartEvent struct {
	BaseEvent
	ShiftID string
}

func NewNurseShiftStartEvent(time float64, shiftID string) *NurseShiftStartEvent {
	return &NurseShiftStartEvent{BaseEvent: newBaseEvent(time, EventNurseShiftStart), ShiftID: shiftID}
}

func (e *NurseShiftStartEvent) Execute(sim *Simulator) {
	sim.handleNurseShiftStart(e.time, e.ShiftID)
}

// NurseShiftEndEvent toggles a shift's nurses off duty (enhanced model only).
// A nurse who is busy at shift end keeps working and accrues overtime.
type NurseShiftEndEvent struct {
	BaseEvent
	ShiftID string
}

func NewNurseShiftEndEvent(time float64, shiftID string) *NurseShiftEndEvent {
	return &NurseShiftEndEvent{BaseEvent: newBaseEvent(time, EventNurseShiftEnd), ShiftID: shiftID}
}

func (e *NurseShiftEndEvent) Execute(sim *Simulator) {
	sim.handleNurseShiftEnd(e.time, e.ShiftID)
}

// SimulationEndEvent is the final bookkeeping event at the configured horizon.
// It forces release-and-cost-accrual for any resource still busy so no
// partial occupancy is lost from the statistics.
type SimulationEndEvent struct {
	BaseEvent
}

func NewSimulationEndEvent(time float64) *SimulationEndEvent {
	return &SimulationEndEvent{BaseEvent: newBaseEvent(time, EventSimulationEnd)}
}

func (e *SimulationEndEvent) Execute(sim *Simulator) {
	sim.handleSimulationEnd(e.time)
}
