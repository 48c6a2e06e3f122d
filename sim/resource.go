// Fixed-size pools of interchangeable resources (ORs, recovery beds, ward
// beds). Each slot tracks busy state and cumulative busy time; releases
// accrue cost at the pool's per-minute rate.

package sim

import "github.com/sirupsen/logrus"

// ResourceKind tags a pool's resource category. Set at pool-creation time and
// never inferred from slot naming.
type ResourceKind string

const (
	ResourceOR       ResourceKind = "or"
	ResourcePacu1Bed ResourceKind = "pacu1_bed"
	ResourcePacu2Bed ResourceKind = "pacu2_bed"
	ResourceWardBed  ResourceKind = "ward_bed"
	ResourceNurse    ResourceKind = "nurse"
)

// ResourceState is one pool slot.
type ResourceState struct {
	Kind  ResourceKind
	Index int

	Busy      bool
	BusySince float64

	// TotalBusyTime only increases, by exactly the wall-clock duration the
	// slot was marked busy.
	TotalBusyTime float64

	// PatientID of the current occupant, empty when free.
	PatientID string
}

// Pool is a fixed set of identically-typed resource slots created at
// configuration time. Pools never resize during a run.
type Pool struct {
	Kind          ResourceKind
	Slots         []*ResourceState
	CostPerMinute float64

	// TotalCost accumulates busy-minutes x CostPerMinute across releases.
	TotalCost float64
}

// NewPool creates a pool of n free slots.
func NewPool(kind ResourceKind, n int, costPerMinute float64) *Pool {
	p := &Pool{
		Kind:          kind,
		Slots:         make([]*ResourceState, n),
		CostPerMinute: costPerMinute,
	}
	for i := range p.Slots {
		p.Slots[i] = &ResourceState{Kind: kind, Index: i}
	}
	return p
}

// Size returns the configured slot count.
func (p *Pool) Size() int {
	return len(p.Slots)
}

// BusyCount returns the number of currently occupied slots.
func (p *Pool) BusyCount() int {
	n := 0
	for _, s := range p.Slots {
		if s.Busy {
			n++
		}
	}
	return n
}

// FindAvailable returns any free slot, or nil when the pool is exhausted.
// Policy: first free found; slots carry no numbered preference.
func (p *Pool) FindAvailable() *ResourceState {
	for _, s := range p.Slots {
		if !s.Busy {
			return s
		}
	}
	return nil
}

// Acquire marks the slot busy for the given patient and records the start
// time for cost accrual.
func (p *Pool) Acquire(slot *ResourceState, now float64, patientID string) {
	if slot.Busy {
		logrus.Warnf("%s slot %d acquired while busy (occupant %s, requester %s)",
			p.Kind, slot.Index, slot.PatientID, patientID)
	}
	slot.Busy = true
	slot.BusySince = now
	slot.PatientID = patientID
}

// Release marks the slot free, adds the occupancy duration to the slot's
// cumulative busy time, and accrues its cost. Returns the occupancy duration.
func (p *Pool) Release(slot *ResourceState, now float64) float64 {
	if !slot.Busy {
		logrus.Warnf("%s slot %d released while free", p.Kind, slot.Index)
		return 0
	}
	dur := now - slot.BusySince
	slot.Busy = false
	slot.PatientID = ""
	slot.TotalBusyTime += dur
	p.TotalCost += dur * p.CostPerMinute
	return dur
}

// ReleaseAll force-releases every busy slot, accruing cost up to now. Used by
// the end-of-simulation bookkeeping so no partial occupancy escapes the
// statistics.
func (p *Pool) ReleaseAll(now float64) {
	for _, s := range p.Slots {
		if s.Busy {
			p.Release(s, now)
		}
	}
}

// TotalBusyTime sums cumulative busy time across all slots.
func (p *Pool) TotalBusyTime() float64 {
	total := 0.0
	for _, s := range p.Slots {
		total += s.TotalBusyTime
	}
	return total
}
