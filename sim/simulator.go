// sim/simulator.go
//
// The Simulator owns simulated time, the event heap, all resource pools,
// per-patient state, and the waiting queues. It processes events to move
// patients through the care pathway (OR -> phase-1 recovery -> phase-2
// recovery -> ward) and enforces the admission rules: a recovery phase needs
// a bed AND a capable nurse simultaneously, and a patient blocked on a ward
// bed keeps their recovery bed occupied.

package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// EmergencyPriority is the hardcoded priority of emergency arrivals: the
// most urgent level. Scheduled classes conventionally use priorities >= 1.
const EmergencyPriority = 0

// Simulator is the core object that holds simulation time, system state, and
// the event loop. Construct one per run; instances share nothing, so
// independent runs (e.g. parallel optimizer trials) are safe.
type Simulator struct {
	Clock   float64
	Horizon float64
	Config  *SimulationConfig
	RNG     *PartitionedRNG

	events   *EventHeap
	eventSeq uint64
	done     bool

	ORs    *Pool
	Pacu1  *Pool
	Pacu2  *Pool
	Ward   *Pool
	Nurses NursePool

	orQueue    *WaitQueue
	pacu1Queue *WaitQueue
	pacu2Queue *WaitQueue
	wardQueue  *WaitQueue

	// patients holds every case seeded or synthesized this run; cases are
	// never deleted, only moved into Completed or Cancelled.
	patients  []*SurgeryCase
	Completed []*SurgeryCase
	Cancelled []*SurgeryCase

	// ArrivalsProcessed counts arrival events actually executed (scheduled
	// plus emergency-generated).
	ArrivalsProcessed int
	emergencySeq      int

	Metrics *Metrics
}

// NewSimulator builds a fresh engine for the configuration. The config must
// already be validated.
func NewSimulator(cfg *SimulationConfig, rng *PartitionedRNG) *Simulator {
	var nurses NursePool
	if cfg.Staffing.Mode == StaffingSkillShift {
		nurses = NewSkillShiftNursePool(cfg.Staffing.Shifts, cfg.Staffing.Skills,
			cfg.Costs.NursePerMinute, cfg.Costs.NurseOvertimePremium)
	} else {
		nurses = NewLegacyNursePool(cfg.Staffing.NurseCount, cfg.Staffing.NursePatientRatio,
			cfg.Costs.NursePerMinute)
	}

	return &Simulator{
		Horizon:    cfg.HorizonMinutes(),
		Config:     cfg,
		RNG:        rng,
		events:     NewEventHeap(),
		ORs:        NewPool(ResourceOR, cfg.ORCount, cfg.Costs.ORPerMinute),
		Pacu1:      NewPool(ResourcePacu1Bed, cfg.Pacu1Beds, cfg.Costs.Pacu1BedPerMinute),
		Pacu2:      NewPool(ResourcePacu2Bed, cfg.Pacu2Beds, cfg.Costs.Pacu2BedPerMinute),
		Ward:       NewPool(ResourceWardBed, cfg.WardBeds, cfg.Costs.WardBedPerMinute),
		Nurses:     nurses,
		orQueue:    &WaitQueue{},
		pacu1Queue: &WaitQueue{},
		pacu2Queue: &WaitQueue{},
		wardQueue:  &WaitQueue{},
		Metrics:    NewMetrics(cfg.ORCount, cfg.Pacu1Beds, cfg.Pacu2Beds, cfg.WardBeds, nurses.Capacity()),
	}
}

// Schedule pushes an event into the simulator's event heap, stamping it with
// the next sequence number so same-time events process first-in-first-out.
func (s *Simulator) Schedule(ev Event) {
	if ev.Timestamp() < s.Clock {
		logrus.Warnf("event %s scheduled at %.2f, before current time %.2f", ev.Type(), ev.Timestamp(), s.Clock)
	}
	s.eventSeq++
	ev.setSeq(s.eventSeq)
	s.events.Schedule(ev)
}

// SeedCases enqueues arrival events for the generated case list plus the
// recurring machinery events (emergency arrivals, nurse shifts, and the
// end-of-simulation bookkeeping event).
func (s *Simulator) SeedCases(cases []*SurgeryCase) {
	for _, c := range cases {
		if c.Class == nil {
			logrus.Warnf("case %s has no patient class, skipping at seed time", c.ID)
			continue
		}
		s.patients = append(s.patients, c)
		s.Schedule(NewPatientArrivalEvent(c.ScheduledTime, c))
	}

	if s.Config.Emergency.Enabled && s.Config.Emergency.MeanDailyArrivals > 0 {
		r := s.RNG.ForSubsystem(SubsystemArrivals)
		iat := ExponentialRandom(r, s.Config.Emergency.MeanDailyArrivals/minutesPerDay)
		if iat < s.Horizon {
			s.Schedule(NewEmergencyArrivalEvent(iat))
		}
	}

	if s.Config.Staffing.Mode == StaffingSkillShift {
		for day := 0; day < s.Config.HorizonDays; day++ {
			dayBase := float64(day) * minutesPerDay
			for _, shift := range s.Config.Staffing.Shifts {
				start := dayBase + shift.StartMinute
				if start >= s.Horizon {
					continue
				}
				s.Schedule(NewNurseShiftStartEvent(start, shift.ID))
				if end := start + shift.Duration; end < s.Horizon {
					s.Schedule(NewNurseShiftEndEvent(end, shift.ID))
				}
			}
		}
	}

	s.Schedule(NewSimulationEndEvent(s.Horizon))
}

// Run executes the event loop to completion. Events are processed in
// strictly non-decreasing simulated-time order; among same-time events,
// scheduling order decides.
func (s *Simulator) Run() {
	for s.events.Len() > 0 && !s.done {
		ev := s.events.PopNext()
		s.Clock = ev.Timestamp()
		logrus.Debugf("[t=%09.1f] executing %s", s.Clock, ev.Type())
		ev.Execute(s)
	}
	logrus.Infof("[t=%09.1f] simulation ended: %d completed, %d cancelled",
		s.Clock, len(s.Completed), len(s.Cancelled))
}

// === Event handlers ===

func (s *Simulator) handlePatientArrival(now float64, c *SurgeryCase) {
	s.ArrivalsProcessed++
	c.ArrivalTime = now
	c.State = CaseArrived
	logrus.Debugf("<< arrival: %s (%s) at %.1f", c.ID, c.Class.ID, now)

	// cancellation is rolled once per arrival, before OR assignment; a zero
	// risk draws nothing so deterministic-mode runs stay reproducible
	if risk := c.Class.CancellationRisk; risk > 0 &&
		s.RNG.ForSubsystem(SubsystemCancellations).Float64() < risk {
		c.State = CaseCancelled
		s.Cancelled = append(s.Cancelled, c)
		s.Metrics.CancelledCount++
		logrus.Debugf("   %s cancelled before OR assignment", c.ID)
		return
	}

	s.tryStartSurgery(c, now)
}

func (s *Simulator) tryStartSurgery(c *SurgeryCase, now float64) {
	slot := s.ORs.FindAvailable()
	if slot == nil {
		c.State = CaseWaitingOR
		s.orQueue.Enqueue(c)
		return
	}
	s.startSurgery(c, slot, now)
}

func (s *Simulator) startSurgery(c *SurgeryCase, slot *ResourceState, now float64) {
	s.ORs.Acquire(slot, now, c.ID)
	c.AssignedOR = slot.Index
	c.State = CaseInOR
	c.OR = &PhaseStamp{Start: now, End: unsetTime}
	c.ORWait = now - c.ArrivalTime
	s.Metrics.ORWaits = append(s.Metrics.ORWaits, c.ORWait)
	s.Metrics.ObserveOccupancy(ResourceOR, now, s.ORs.BusyCount())

	dur := s.adjustedDuration(c.Class, c.PlannedDuration, now)
	s.Schedule(NewSurgeryEndEvent(now+dur, c))
}

func (s *Simulator) handleSurgeryEnd(now float64, c *SurgeryCase) {
	c.OR.End = now
	s.ORs.Release(s.ORs.Slots[c.AssignedOR], now)
	c.AssignedOR = noResource
	s.Metrics.ObserveOccupancy(ResourceOR, now, s.ORs.BusyCount())

	// pull the highest-priority waiting patient into the freed OR
	s.promoteOR(now)

	if c.Class.Process == ProcessDirectTransfer {
		// skips recovery entirely
		s.Schedule(NewDischargeCriteriaMetEvent(now, c))
		return
	}
	s.tryEnterPhase(c, Phase1, now)
}

func (s *Simulator) handlePacu1End(now float64, c *SurgeryCase) {
	c.Pacu1.End = now
	s.Nurses.Release(c.ID, c.AssignedNurse, now)
	c.AssignedNurse = noResource
	s.Metrics.ObserveOccupancy(ResourceNurse, now, s.Nurses.BusyCount())

	if c.Class.Pacu2Mean <= 0 {
		// phase-2 duration is zero for this class: straight to discharge
		// criteria. The phase-1 bed is kept until the patient leaves the
		// unit, so a full ward can surface as PACU blocking.
		s.promotePacu(now)
		s.Schedule(NewDischargeCriteriaMetEvent(now, c))
		return
	}

	s.releaseHeldBed(c, now)
	s.promotePacu(now)
	s.tryEnterPhase(c, Phase2, now)
}

func (s *Simulator) handlePacu2End(now float64, c *SurgeryCase) {
	c.Pacu2.End = now
	s.Nurses.Release(c.ID, c.AssignedNurse, now)
	c.AssignedNurse = noResource
	s.Metrics.ObserveOccupancy(ResourceNurse, now, s.Nurses.BusyCount())

	// The phase-2 bed is released when the patient actually leaves: at ward
	// admission (or outpatient discharge) in the same-time discharge event,
	// or later if the ward is full and the bed sits blocked.
	s.promotePacu(now)
	s.Schedule(NewDischargeCriteriaMetEvent(now, c))
}

func (s *Simulator) handleDischargeCriteriaMet(now float64, c *SurgeryCase) {
	c.ReadyForWardTime = now
	c.State = CaseReadyForWard

	if c.Class.Process == ProcessOutpatient {
		// outpatients discharge immediately, no ward
		s.releaseHeldBed(c, now)
		s.promotePacu(now)
		s.discharge(c, now)
		return
	}

	bed := s.Ward.FindAvailable()
	if bed == nil {
		c.State = CaseWaitingWard
		s.wardQueue.Enqueue(c)
		if c.heldBedKind != "" {
			s.Metrics.ObserveBlocked(now, +1)
		}
		return
	}
	s.admitWard(c, bed, now)
}

func (s *Simulator) admitWard(c *SurgeryCase, bed *ResourceState, now float64) {
	if c.State == CaseWaitingWard && c.heldBedKind != "" {
		s.Metrics.ObserveBlocked(now, -1)
	}
	s.releaseHeldBed(c, now)
	s.promotePacu(now)

	s.Ward.Acquire(bed, now, c.ID)
	c.AssignedBed = bed.Index
	c.heldBedKind = ResourceWardBed
	c.State = CaseInWard
	c.Ward = &PhaseStamp{Start: now, End: unsetTime}
	c.WardTransferDelay = now - c.ReadyForWardTime
	s.Metrics.WardTransferDelays = append(s.Metrics.WardTransferDelays, c.WardTransferDelay)
	s.Metrics.ObserveOccupancy(ResourceWardBed, now, s.Ward.BusyCount())

	r := s.RNG.ForSubsystem(SubsystemDurations)
	stay := s.adjustedDuration(c.Class, NormalRandom(r, c.Class.WardStayMean, c.Class.WardStayStdDev), now)
	s.Schedule(NewWardDischargeEvent(now+stay, c))
}

func (s *Simulator) handleWardDischarge(now float64, c *SurgeryCase) {
	c.Ward.End = now
	s.releaseHeldBed(c, now)
	s.discharge(c, now)

	for {
		bed := s.Ward.FindAvailable()
		if bed == nil {
			return
		}
		next := s.dequeueWaiting(s.wardQueue, CaseWaitingWard)
		if next == nil {
			return
		}
		s.admitWard(next, bed, now)
	}
}

func (s *Simulator) handleEmergencyArrival(now float64) {
	r := s.RNG.ForSubsystem(SubsystemArrivals)

	dist := knownClassWeights(s.Config, s.Config.Emergency.ClassDistribution)
	if len(dist) == 0 {
		dist = uniformClassWeights(s.Config)
	}
	classID, ok := WeightedSelection(r, dist)
	if ok {
		class := s.Config.ClassByID(classID)
		s.emergencySeq++
		dur := NormalRandom(r, class.SurgeryMean, class.SurgeryStdDev)
		c := NewSurgeryCase(fmt.Sprintf("emergency-%03d", s.emergencySeq), class, noResource, now, dur)
		c.Emergency = true
		c.Priority = EmergencyPriority
		s.patients = append(s.patients, c)
		s.handlePatientArrival(now, c)
	} else {
		logrus.Warnf("emergency class distribution has no positive weights, arrival skipped")
	}

	iat := ExponentialRandom(r, s.Config.Emergency.MeanDailyArrivals/minutesPerDay)
	if next := now + iat; next < s.Horizon && !math.IsInf(iat, 1) {
		s.Schedule(NewEmergencyArrivalEvent(next))
	}
}

func (s *Simulator) handleNurseShiftStart(now float64, shiftID string) {
	dayOfWeek := int(now/minutesPerDay) % 7
	s.Nurses.OnShiftStart(shiftID, now, dayOfWeek)
	// newly staffed nurses may unblock the recovery backlog
	s.promotePacu(now)
}

func (s *Simulator) handleNurseShiftEnd(now float64, shiftID string) {
	s.Nurses.OnShiftEnd(shiftID, now)
}

func (s *Simulator) handleSimulationEnd(now float64) {
	// force release-and-cost-accrual for any resource still busy
	s.ORs.ReleaseAll(now)
	s.Pacu1.ReleaseAll(now)
	s.Pacu2.ReleaseAll(now)
	s.Ward.ReleaseAll(now)
	s.Nurses.ReleaseAll(now)

	// patients still in the pathway are retained in the completed list with
	// their partial timelines so case accounting balances arrivals
	for _, c := range s.patients {
		if c.State == CaseScheduled || c.Terminal() {
			continue
		}
		s.Completed = append(s.Completed, c)
	}

	s.Metrics.Finalize(now)
	s.done = true
}

// === Admission and promotion ===

// tryEnterPhase admits the patient to the recovery phase if a bed AND a
// capable nurse are both available; otherwise the patient joins the phase's
// priority wait queue.
func (s *Simulator) tryEnterPhase(c *SurgeryCase, phase RecoveryPhase, now float64) {
	pool, _, waitState := s.phaseContext(phase)
	bed := pool.FindAvailable()
	if bed == nil {
		s.waitForPhase(c, phase, waitState)
		return
	}
	nurseID, ok := s.Nurses.Acquire(phase, now, c.ID)
	if !ok {
		s.waitForPhase(c, phase, waitState)
		return
	}
	s.admitPhase(c, bed, nurseID, phase, now)
}

func (s *Simulator) waitForPhase(c *SurgeryCase, phase RecoveryPhase, waitState CaseState) {
	_, queue, _ := s.phaseContext(phase)
	c.State = waitState
	queue.Enqueue(c)
}

func (s *Simulator) admitPhase(c *SurgeryCase, bed *ResourceState, nurseID int, phase RecoveryPhase, now float64) {
	pool, _, _ := s.phaseContext(phase)
	pool.Acquire(bed, now, c.ID)
	c.AssignedBed = bed.Index
	c.heldBedKind = pool.Kind
	c.AssignedNurse = nurseID

	r := s.RNG.ForSubsystem(SubsystemDurations)
	if phase == Phase1 {
		c.State = CaseInPacu1
		c.Pacu1 = &PhaseStamp{Start: now, End: unsetTime}
		c.Pacu1Wait = now - c.OR.End
		s.Metrics.Pacu1Waits = append(s.Metrics.Pacu1Waits, c.Pacu1Wait)
		dur := s.adjustedDuration(c.Class, NormalRandom(r, c.Class.Pacu1Mean, c.Class.Pacu1StdDev), now)
		s.Schedule(NewPacu1EndEvent(now+dur, c))
	} else {
		c.State = CaseInPacu2
		c.Pacu2 = &PhaseStamp{Start: now, End: unsetTime}
		c.Pacu2Wait = now - c.Pacu1.End
		s.Metrics.Pacu2Waits = append(s.Metrics.Pacu2Waits, c.Pacu2Wait)
		dur := s.adjustedDuration(c.Class, NormalRandom(r, c.Class.Pacu2Mean, c.Class.Pacu2StdDev), now)
		s.Schedule(NewPacu2EndEvent(now+dur, c))
	}

	s.Metrics.ObserveOccupancy(pool.Kind, now, pool.BusyCount())
	s.Metrics.ObserveOccupancy(ResourceNurse, now, s.Nurses.BusyCount())
}

// promoteOR fills freed ORs from the priority wait queue.
func (s *Simulator) promoteOR(now float64) {
	for {
		slot := s.ORs.FindAvailable()
		if slot == nil {
			return
		}
		next := s.dequeueWaiting(s.orQueue, CaseWaitingOR)
		if next == nil {
			return
		}
		s.startSurgery(next, slot, now)
	}
}

// promotePacu re-drives both recovery wait queues against current bed and
// nurse availability.
func (s *Simulator) promotePacu(now float64) {
	s.promotePhase(Phase1, now)
	s.promotePhase(Phase2, now)
}

func (s *Simulator) promotePhase(phase RecoveryPhase, now float64) {
	pool, queue, waitState := s.phaseContext(phase)
	for {
		bed := pool.FindAvailable()
		if bed == nil {
			return
		}
		cand := s.dequeueWaiting(queue, waitState)
		if cand == nil {
			return
		}
		nurseID, ok := s.Nurses.Acquire(phase, now, cand.ID)
		if !ok {
			queue.Enqueue(cand)
			return
		}
		s.admitPhase(cand, bed, nurseID, phase, now)
	}
}

// dequeueWaiting pops the most urgent case that is still in the expected
// waiting state. A case found in an unexpected state is a consistency
// warning: it is requeued rather than dropped, and the scan moves on.
func (s *Simulator) dequeueWaiting(q *WaitQueue, expected CaseState) *SurgeryCase {
	n := q.Len()
	for i := 0; i < n; i++ {
		c := q.Dequeue()
		if c == nil {
			return nil
		}
		if c.State != expected {
			logrus.Warnf("queue promotion: case %s in state %s, expected %s; requeueing", c.ID, c.State, expected)
			q.Enqueue(c)
			continue
		}
		return c
	}
	return nil
}

func (s *Simulator) phaseContext(phase RecoveryPhase) (*Pool, *WaitQueue, CaseState) {
	if phase == Phase1 {
		return s.Pacu1, s.pacu1Queue, CaseWaitingPacu1
	}
	return s.Pacu2, s.pacu2Queue, CaseWaitingPacu2
}

// releaseHeldBed frees whichever bed the case currently occupies.
func (s *Simulator) releaseHeldBed(c *SurgeryCase, now float64) {
	if c.AssignedBed == noResource || c.heldBedKind == "" {
		return
	}
	pool := s.poolForKind(c.heldBedKind)
	pool.Release(pool.Slots[c.AssignedBed], now)
	s.Metrics.ObserveOccupancy(pool.Kind, now, pool.BusyCount())
	c.AssignedBed = noResource
	c.heldBedKind = ""
}

func (s *Simulator) poolForKind(kind ResourceKind) *Pool {
	switch kind {
	case ResourcePacu1Bed:
		return s.Pacu1
	case ResourcePacu2Bed:
		return s.Pacu2
	case ResourceWardBed:
		return s.Ward
	default:
		return s.ORs
	}
}

func (s *Simulator) discharge(c *SurgeryCase, now float64) {
	c.DischargeTime = now
	c.State = CaseDischarged
	s.Completed = append(s.Completed, c)
	logrus.Debugf(">> discharged: %s at %.1f", c.ID, now)
}

// adjustedDuration applies the time-of-day duration adjustment: starts in
// the 07:00-10:00 hour band scale down by up to half the class's variability
// factor, starts in 15:00-19:00 scale up by up to the full factor, and the
// result is floored at half the base duration.
func (s *Simulator) adjustedDuration(class *PatientClass, base, now float64) float64 {
	adj := base
	if factor := class.TimeOfDayVariability; factor > 0 {
		hour := math.Mod(now, minutesPerDay) / 60
		r := s.RNG.ForSubsystem(SubsystemDurations)
		switch {
		case hour >= 7 && hour <= 10:
			adj = base * (1 - r.Float64()*factor/2)
		case hour >= 15 && hour <= 19:
			adj = base * (1 + r.Float64()*factor)
		}
	}
	if adj < base/2 {
		adj = base / 2
	}
	return adj
}
