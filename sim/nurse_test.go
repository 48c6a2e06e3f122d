package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegacyNursePool_RatioCapacity(t *testing.T) {
	// 2 nurses at 1:2 cover 4 simultaneous patients
	p := NewLegacyNursePool(2, 2, 1.0)
	assert.Equal(t, 4, p.Capacity())

	for i := 0; i < 4; i++ {
		_, ok := p.Acquire(Phase1, 0, string(rune('a'+i)))
		require.True(t, ok, "patient %d should be admitted", i)
	}
	_, ok := p.Acquire(Phase1, 0, "fifth")
	assert.False(t, ok, "fifth patient exceeds ratio capacity")
	assert.Equal(t, 4, p.BusyCount())
}

func TestLegacyNursePool_CostIsFractionalPerPatient(t *testing.T) {
	// each patient consumes 1/ratio of a nurse
	p := NewLegacyNursePool(2, 2, 1.0)
	_, ok := p.Acquire(Phase1, 0, "a")
	require.True(t, ok)

	p.Release("a", noResource, 10)

	// 10 minutes at half a nurse
	assert.InDelta(t, 5.0, p.Costs().Base, 1e-9)
	assert.Equal(t, 0, p.BusyCount())
}

func TestLegacyNursePool_ReleaseUnknownPatient_NoOp(t *testing.T) {
	p := NewLegacyNursePool(1, 1, 1.0)
	p.Release("ghost", noResource, 10)
	assert.Zero(t, p.Costs().Base)
}

func testShiftPool(headcount int) *SkillShiftNursePool {
	shifts := []*NurseShift{{
		ID:          "day",
		StartMinute: 0,
		Duration:    480,
		Headcount:   []int{headcount},
		SkillMix:    map[string]float64{"rn": 1},
	}}
	skills := []*NurseSkill{{ID: "rn", CanPhase1: true, CanPhase2: true, Efficiency: 1}}
	return NewSkillShiftNursePool(shifts, skills, 1.0, 0.5)
}

func TestSkillShiftNursePool_OffShiftNursesUnavailable(t *testing.T) {
	p := testShiftPool(2)

	_, ok := p.Acquire(Phase1, 10, "early")
	assert.False(t, ok, "no nurse is on duty before the shift starts")

	p.OnShiftStart("day", 0, 0)
	_, ok = p.Acquire(Phase1, 10, "a")
	assert.True(t, ok)
	_, ok = p.Acquire(Phase1, 10, "b")
	assert.True(t, ok)
	_, ok = p.Acquire(Phase1, 10, "c")
	assert.False(t, ok, "third patient exceeds the staffed headcount")
}

func TestSkillShiftNursePool_OvertimeAccruesPastShiftEnd(t *testing.T) {
	p := testShiftPool(1)
	p.OnShiftStart("day", 0, 0)

	id, ok := p.Acquire(Phase1, 400, "late")
	require.True(t, ok)

	// shift ends while the nurse is busy; work continues
	p.OnShiftEnd("day", 480)
	assert.Equal(t, 1, p.BusyCount())

	p.Release("late", id, 500)

	costs := p.Costs()
	assert.InDelta(t, 20.0, costs.OvertimeMinutes, 1e-9)
	assert.InDelta(t, 10.0, costs.Overtime, 1e-9, "20 overtime minutes at 0.5 premium")
	assert.InDelta(t, 100.0, costs.Base, 1e-9, "full 100 busy minutes at base rate")

	// the nurse went off duty at release
	_, ok = p.Acquire(Phase1, 510, "next")
	assert.False(t, ok)
}

func TestSkillShiftNursePool_SkillCapabilityAndEfficiencyPreference(t *testing.T) {
	shifts := []*NurseShift{{
		ID:          "day",
		StartMinute: 0,
		Duration:    480,
		Headcount:   []int{2},
		SkillMix:    map[string]float64{"junior": 0.5, "senior": 0.5},
	}}
	skills := []*NurseSkill{
		{ID: "junior", CanPhase1: false, CanPhase2: true, Efficiency: 1},
		{ID: "senior", CanPhase1: true, CanPhase2: true, Efficiency: 2},
	}
	p := NewSkillShiftNursePool(shifts, skills, 1.0, 0.5)
	p.OnShiftStart("day", 0, 0)
	require.Equal(t, 2, p.Capacity())

	// only the senior nurse can staff phase 1
	seniorID, ok := p.Acquire(Phase1, 0, "p1")
	require.True(t, ok)
	_, ok = p.Acquire(Phase1, 0, "p1b")
	assert.False(t, ok, "the junior nurse cannot staff phase 1")

	p.Release("p1", seniorID, 10)

	// with both free, phase 2 prefers the higher efficiency
	gotID, ok := p.Acquire(Phase2, 20, "p2")
	require.True(t, ok)
	assert.Equal(t, seniorID, gotID, "selection prefers the higher efficiency multiplier")
}

func TestSkillShiftNursePool_HeadcountVariesByDayOfWeek(t *testing.T) {
	shifts := []*NurseShift{{
		ID:          "day",
		StartMinute: 0,
		Duration:    480,
		Headcount:   []int{2, 0}, // staffed on even days, empty on odd
		SkillMix:    map[string]float64{"rn": 1},
	}}
	skills := []*NurseSkill{{ID: "rn", CanPhase1: true, CanPhase2: true, Efficiency: 1}}
	p := NewSkillShiftNursePool(shifts, skills, 1.0, 0)

	p.OnShiftStart("day", 1440, 1)
	_, ok := p.Acquire(Phase1, 1450, "a")
	assert.False(t, ok, "day-of-week 1 staffs zero nurses")

	p.OnShiftStart("day", 2880, 2)
	_, ok = p.Acquire(Phase1, 2890, "b")
	assert.True(t, ok)
}

func TestSkillShiftNursePool_CoverageBreakdown(t *testing.T) {
	p := testShiftPool(2)
	p.OnShiftStart("day", 0, 0)

	id, ok := p.Acquire(Phase1, 0, "a")
	require.True(t, ok)
	p.Release("a", id, 60)

	cov := p.Coverage()
	require.Len(t, cov, 1)
	assert.Equal(t, "day", cov[0].ShiftID)
	assert.InDelta(t, 960.0, cov[0].ScheduledMinutes, 1e-9, "2 nurses x 480 minutes")
	assert.InDelta(t, 60.0, cov[0].WorkedMinutes, 1e-9)
	assert.Zero(t, cov[0].OvertimeMinutes)
}

func TestSkillShiftNursePool_UnknownSkillMixFallsBack(t *testing.T) {
	shifts := []*NurseShift{{
		ID:          "night",
		StartMinute: 1200,
		Duration:    480,
		Headcount:   []int{1},
		SkillMix:    map[string]float64{"no-such-skill": 1},
	}}
	p := NewSkillShiftNursePool(shifts, nil, 1.0, 0)
	p.OnShiftStart("night", 1200, 0)

	// the fallback skill covers both phases
	_, ok := p.Acquire(Phase2, 1210, "a")
	assert.True(t, ok)
}
