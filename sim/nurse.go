// Nurse staffing. Two pool implementations sit behind the NursePool
// interface: the legacy ratio model (fractional capacity, no discrete
// nurses) and the enhanced skill/shift model (discrete nurses with phase
// capabilities, shift windows, and overtime accrual). The two models have
// materially different capacity semantics and are never merged; the engine
// selects one at construction time.

package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// RecoveryPhase identifies which PACU phase a nurse is requested for.
type RecoveryPhase int

const (
	Phase1 RecoveryPhase = 1
	Phase2 RecoveryPhase = 2
)

// NurseSkill is static configuration describing a capability level.
type NurseSkill struct {
	ID        string `yaml:"id"`
	CanPhase1 bool   `yaml:"can_phase1"`
	CanPhase2 bool   `yaml:"can_phase2"`

	// Efficiency is informational; it biases nurse selection order and cost
	// reporting but never changes durations.
	Efficiency float64 `yaml:"efficiency"`
}

// CanHandle reports whether the skill covers the requested phase.
func (s *NurseSkill) CanHandle(phase RecoveryPhase) bool {
	if phase == Phase1 {
		return s.CanPhase1
	}
	return s.CanPhase2
}

// NurseShift is static configuration for one daily shift window.
type NurseShift struct {
	ID          string  `yaml:"id"`
	StartMinute float64 `yaml:"start_minute"` // minute of day
	Duration    float64 `yaml:"duration"`     // minutes

	// Headcount per day-of-week, index 0 = simulation day 0. Shorter slices
	// repeat cyclically; empty means zero staffing.
	Headcount []int `yaml:"headcount"`

	// SkillMix maps skill ID to a relative weight used to apportion the
	// shift's nurses across skills.
	SkillMix map[string]float64 `yaml:"skill_mix"`
}

// HeadcountFor returns the staffed headcount for a day-of-week.
func (s *NurseShift) HeadcountFor(dayOfWeek int) int {
	if len(s.Headcount) == 0 {
		return 0
	}
	return s.Headcount[dayOfWeek%len(s.Headcount)]
}

// MaxHeadcount returns the largest headcount across the week, which is the
// number of nurse records the pool materializes for the shift.
func (s *NurseShift) MaxHeadcount() int {
	maxN := 0
	for _, n := range s.Headcount {
		if n > maxN {
			maxN = n
		}
	}
	return maxN
}

// NurseCosts is the cost accrual of a nurse pool. Overtime premium is
// tracked separately from base cost.
type NurseCosts struct {
	Base            float64
	Overtime        float64
	OvertimeMinutes float64
}

// ShiftCoverage summarizes one shift's staffing over the run.
type ShiftCoverage struct {
	ShiftID          string
	ScheduledMinutes float64
	WorkedMinutes    float64
	OvertimeMinutes  float64
}

// NursePool abstracts nurse capacity behind a common
// acquire/release/capacity contract.
type NursePool interface {
	// Acquire reserves a nurse able to staff the phase. The returned ID is a
	// pool-internal index (noResource under the legacy model, which has no
	// discrete nurses). ok=false means the patient must wait.
	Acquire(phase RecoveryPhase, now float64, patientID string) (int, bool)

	// Release returns the nurse acquired for the patient.
	Release(patientID string, nurseID int, now float64)

	BusyCount() int
	Capacity() int

	// OnShiftStart and OnShiftEnd toggle shift windows; no-ops under the
	// legacy model.
	OnShiftStart(shiftID string, now float64, dayOfWeek int)
	OnShiftEnd(shiftID string, now float64)

	// ReleaseAll force-releases busy nurses at the horizon.
	ReleaseAll(now float64)

	Costs() NurseCosts
	Coverage() []ShiftCoverage
}

// === Legacy ratio model ===

// LegacyNursePool reproduces the original ratio-based capacity check:
// a patient is admitted while assignedLoad + 1/ratio <= totalNurses, where
// each admitted patient consumes 1/ratio of a nurse. There are no discrete
// nurse records, no skills, and no shifts.
type LegacyNursePool struct {
	totalNurses   float64
	ratio         float64 // patients per nurse
	costPerMinute float64

	active map[string]float64 // patientID -> acquire time
	costs  NurseCosts
}

// NewLegacyNursePool creates a ratio-model pool. A non-positive ratio is
// clamped to 1:1.
func NewLegacyNursePool(totalNurses int, ratio, costPerMinute float64) *LegacyNursePool {
	if ratio <= 0 {
		logrus.Warnf("legacy nurse pool: non-positive ratio %.2f clamped to 1", ratio)
		ratio = 1
	}
	return &LegacyNursePool{
		totalNurses:   float64(totalNurses),
		ratio:         ratio,
		costPerMinute: costPerMinute,
		active:        make(map[string]float64),
	}
}

func (p *LegacyNursePool) Acquire(_ RecoveryPhase, now float64, patientID string) (int, bool) {
	load := float64(len(p.active)) / p.ratio
	if load+1/p.ratio > p.totalNurses+1e-9 {
		return noResource, false
	}
	p.active[patientID] = now
	return noResource, true
}

func (p *LegacyNursePool) Release(patientID string, _ int, now float64) {
	since, ok := p.active[patientID]
	if !ok {
		logrus.Warnf("legacy nurse pool: release for unknown patient %s", patientID)
		return
	}
	delete(p.active, patientID)
	// each patient consumes 1/ratio nurse-minutes per minute
	p.costs.Base += (now - since) / p.ratio * p.costPerMinute
}

func (p *LegacyNursePool) BusyCount() int {
	return len(p.active)
}

func (p *LegacyNursePool) Capacity() int {
	return int(math.Round(p.totalNurses * p.ratio))
}

func (p *LegacyNursePool) OnShiftStart(string, float64, int) {}
func (p *LegacyNursePool) OnShiftEnd(string, float64)        {}

func (p *LegacyNursePool) ReleaseAll(now float64) {
	for pid := range p.active {
		p.Release(pid, noResource, now)
	}
}

func (p *LegacyNursePool) Costs() NurseCosts { return p.costs }

func (p *LegacyNursePool) Coverage() []ShiftCoverage { return nil }

// === Enhanced skill/shift model ===

// nurse is one discrete nurse record in the enhanced pool.
type nurse struct {
	state      *ResourceState
	skill      *NurseSkill
	shift      *NurseShift
	onShift    bool
	pendingOff bool // shift ended while busy; goes off duty on release
	shiftEnd   float64
	overtime   float64
}

// SkillShiftNursePool models discrete nurses with capabilities and daily
// shift windows. A nurse busy at shift end keeps working (accruing overtime)
// rather than being forcibly released.
type SkillShiftNursePool struct {
	nurses          []*nurse
	byShift         map[string][]*nurse
	costPerMinute   float64
	overtimePremium float64 // extra cost per overtime minute

	costs    NurseCosts
	coverage map[string]*ShiftCoverage
	order    []string // shift IDs in configuration order
}

// NewSkillShiftNursePool materializes MaxHeadcount nurse records per shift,
// apportioned across skills by the shift's skill mix. Shifts whose mix names
// an unknown skill have that weight skipped (logged, not fatal). A shift with
// no resolvable skills falls back to an all-capable default.
func NewSkillShiftNursePool(shifts []*NurseShift, skills []*NurseSkill, costPerMinute, overtimePremium float64) *SkillShiftNursePool {
	p := &SkillShiftNursePool{
		byShift:         make(map[string][]*nurse),
		costPerMinute:   costPerMinute,
		overtimePremium: overtimePremium,
		coverage:        make(map[string]*ShiftCoverage),
	}

	skillByID := make(map[string]*NurseSkill, len(skills))
	for _, s := range skills {
		skillByID[s.ID] = s
	}
	defaultSkill := &NurseSkill{ID: "general", CanPhase1: true, CanPhase2: true, Efficiency: 1.0}

	idx := 0
	for _, shift := range shifts {
		p.order = append(p.order, shift.ID)
		p.coverage[shift.ID] = &ShiftCoverage{ShiftID: shift.ID}

		assigned := apportionSkills(shift, skillByID, defaultSkill)
		for _, sk := range assigned {
			n := &nurse{
				state: &ResourceState{Kind: ResourceNurse, Index: idx},
				skill: sk,
				shift: shift,
			}
			p.nurses = append(p.nurses, n)
			p.byShift[shift.ID] = append(p.byShift[shift.ID], n)
			idx++
		}
	}
	return p
}

// apportionSkills distributes a shift's nurse records across its skill mix
// using largest-remainder rounding over sorted skill IDs, so the assignment
// is deterministic.
func apportionSkills(shift *NurseShift, skillByID map[string]*NurseSkill, fallback *NurseSkill) []*NurseSkill {
	count := shift.MaxHeadcount()
	if count == 0 {
		return nil
	}

	ids := make([]string, 0, len(shift.SkillMix))
	total := 0.0
	for id, w := range shift.SkillMix {
		if _, ok := skillByID[id]; !ok {
			logrus.Warnf("shift %s: skill mix references unknown skill %q, skipping", shift.ID, id)
			continue
		}
		if w <= 0 {
			continue
		}
		ids = append(ids, id)
		total += w
	}
	sort.Strings(ids)

	if len(ids) == 0 || total <= 0 {
		out := make([]*NurseSkill, count)
		for i := range out {
			out[i] = fallback
		}
		return out
	}

	out := make([]*NurseSkill, 0, count)
	remaining := count
	for i, id := range ids {
		n := int(math.Floor(shift.SkillMix[id] / total * float64(count)))
		if i == len(ids)-1 {
			n = remaining
		}
		if n > remaining {
			n = remaining
		}
		for j := 0; j < n; j++ {
			out = append(out, skillByID[id])
		}
		remaining -= n
	}
	// leftover from floor rounding goes to the first (lexicographically) skills
	for i := 0; remaining > 0; i, remaining = i+1, remaining-1 {
		out = append(out, skillByID[ids[i%len(ids)]])
	}
	return out
}

// Acquire selects among on-shift, free nurses whose skill supports the
// requested phase, preferring a higher efficiency multiplier (selection
// order only; durations are unaffected).
func (p *SkillShiftNursePool) Acquire(phase RecoveryPhase, now float64, patientID string) (int, bool) {
	var best *nurse
	for _, n := range p.nurses {
		if n.state.Busy || !n.onShift || !n.skill.CanHandle(phase) {
			continue
		}
		if best == nil || n.skill.Efficiency > best.skill.Efficiency {
			best = n
		}
	}
	if best == nil {
		return noResource, false
	}
	best.state.Busy = true
	best.state.BusySince = now
	best.state.PatientID = patientID
	return best.state.Index, true
}

func (p *SkillShiftNursePool) Release(patientID string, nurseID int, now float64) {
	if nurseID < 0 || nurseID >= len(p.nurses) {
		logrus.Warnf("nurse pool: release with invalid nurse id %d (patient %s)", nurseID, patientID)
		return
	}
	n := p.nurses[nurseID]
	if !n.state.Busy {
		logrus.Warnf("nurse pool: nurse %d released while free (patient %s)", nurseID, patientID)
		return
	}

	dur := now - n.state.BusySince
	n.state.Busy = false
	n.state.PatientID = ""
	n.state.TotalBusyTime += dur
	p.costs.Base += dur * p.costPerMinute
	p.coverage[n.shift.ID].WorkedMinutes += dur

	if n.pendingOff {
		ot := now - math.Max(n.state.BusySince, n.shiftEnd)
		if ot > 0 {
			n.overtime += ot
			p.costs.Overtime += ot * p.overtimePremium
			p.costs.OvertimeMinutes += ot
			p.coverage[n.shift.ID].OvertimeMinutes += ot
		}
		n.pendingOff = false
		n.onShift = false
	}
}

func (p *SkillShiftNursePool) BusyCount() int {
	busy := 0
	for _, n := range p.nurses {
		if n.state.Busy {
			busy++
		}
	}
	return busy
}

func (p *SkillShiftNursePool) Capacity() int {
	return len(p.nurses)
}

// OnShiftStart puts the day's headcount for the shift on duty and records
// scheduled coverage minutes.
func (p *SkillShiftNursePool) OnShiftStart(shiftID string, now float64, dayOfWeek int) {
	group := p.byShift[shiftID]
	if len(group) == 0 {
		return
	}
	shift := group[0].shift
	head := shift.HeadcountFor(dayOfWeek)
	for i, n := range group {
		if i >= head {
			break
		}
		n.onShift = true
		n.pendingOff = false
		n.shiftEnd = now + shift.Duration
	}
	if head > 0 {
		p.coverage[shiftID].ScheduledMinutes += float64(head) * shift.Duration
	}
}

// OnShiftEnd takes free nurses off duty; busy nurses keep working and accrue
// overtime from the shift end until their release.
func (p *SkillShiftNursePool) OnShiftEnd(shiftID string, now float64) {
	for _, n := range p.byShift[shiftID] {
		if !n.onShift || n.shiftEnd > now {
			continue
		}
		if n.state.Busy {
			n.pendingOff = true
			continue
		}
		n.onShift = false
	}
}

func (p *SkillShiftNursePool) ReleaseAll(now float64) {
	for _, n := range p.nurses {
		if n.state.Busy {
			p.Release(n.state.PatientID, n.state.Index, now)
		}
	}
}

func (p *SkillShiftNursePool) Costs() NurseCosts { return p.costs }

// Coverage returns per-shift staffing summaries in configuration order.
func (p *SkillShiftNursePool) Coverage() []ShiftCoverage {
	out := make([]ShiftCoverage, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.coverage[id])
	}
	return out
}
