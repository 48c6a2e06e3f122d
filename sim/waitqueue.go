// Implements the WaitQueue, which holds patients waiting for a contended
// resource (OR, recovery bed + nurse, ward bed). Patients are ordered by
// ascending priority value (lower = more urgent), first-come-first-served
// among equal priorities.

package sim

import (
	"fmt"
	"strings"
)

// WaitQueue is a priority-ordered queue of surgery cases. Insertion keeps the
// queue sorted by priority with stable FIFO ordering among ties, so the queue
// is always ready for interleaved enqueue/dequeue while the engine runs.
type WaitQueue struct {
	queue []*SurgeryCase
}

// Enqueue inserts a case before the first existing entry with a strictly
// larger priority value. Equal priorities keep insertion order.
func (wq *WaitQueue) Enqueue(c *SurgeryCase) {
	i := len(wq.queue)
	for j, existing := range wq.queue {
		if existing.Priority > c.Priority {
			i = j
			break
		}
	}
	wq.queue = append(wq.queue, nil)
	copy(wq.queue[i+1:], wq.queue[i:])
	wq.queue[i] = c
}

// Dequeue removes and returns the most urgent case, or nil if empty.
func (wq *WaitQueue) Dequeue() *SurgeryCase {
	if len(wq.queue) == 0 {
		return nil
	}
	c := wq.queue[0]
	wq.queue = wq.queue[1:]
	return c
}

// Peek returns the most urgent case without removing it.
// Returns nil if the queue is empty.
func (wq *WaitQueue) Peek() *SurgeryCase {
	if len(wq.queue) == 0 {
		return nil
	}
	return wq.queue[0]
}

// Len returns the number of waiting cases.
func (wq *WaitQueue) Len() int {
	return len(wq.queue)
}

func (wq *WaitQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, val := range wq.queue {
		sb.WriteString(fmt.Sprint(val))
		if i < len(wq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
