package tracing

import (
	"sync"

	"github.com/sarchlab/periphsim/sim"
)

// BusyTimeTracer measures the time a domain spends with at least one task in
// flight. Overlapping tasks are counted once: a busy stretch opens when a
// task starts while none is in flight and closes when the last inflight task
// ends.
type BusyTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock         sync.Mutex
	inflight     map[string]struct{}
	stretchStart sim.VTimeInSec
	busyTime     sim.VTimeInSec
}

// NewBusyTimeTracer creates a new BusyTimeTracer.
func NewBusyTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *BusyTimeTracer {
	return &BusyTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		inflight:   make(map[string]struct{}),
	}
}

// BusyTime returns the accumulated time of all closed busy stretches.
func (t *BusyTimeTracer) BusyTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.busyTime
}

// TerminateAllTasks ends every inflight task at the given time, closing the
// open busy stretch. Call it before reading BusyTime at the end of a run, as
// time spent on tasks that never ended is otherwise not counted.
func (t *BusyTimeTracer) TerminateAllTasks(now sim.VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflight) == 0 {
		return
	}

	t.busyTime += now - t.stretchStart
	t.inflight = make(map[string]struct{})
}

// StartTask records the start of a task, opening a busy stretch if no other
// task is in flight.
func (t *BusyTimeTracer) StartTask(task Task) {
	now := t.timeTeller.CurrentTime()

	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.inflight) == 0 {
		t.stretchStart = now
	}

	t.inflight[task.ID] = struct{}{}
}

// StepTask does nothing
func (t *BusyTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of a task, closing the busy stretch if it was the
// last one in flight. Tasks this tracer did not see start are ignored.
func (t *BusyTimeTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.inflight[task.ID]; !ok {
		return
	}

	delete(t.inflight, task.ID)

	if len(t.inflight) == 0 {
		t.busyTime += now - t.stretchStart
	}
}
