package tracing

import (
	"sync"

	"github.com/sarchlab/periphsim/sim"
)

// TotalTimeTracer sums the durations of the tasks that completed on a
// domain. Unlike BusyTimeTracer, overlapping tasks are each counted in full.
type TotalTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock      sync.Mutex
	startTime map[string]sim.VTimeInSec
	totalTime sim.VTimeInSec
}

// NewTotalTimeTracer creates a new TotalTimeTracer.
func NewTotalTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *TotalTimeTracer {
	return &TotalTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		startTime:  make(map[string]sim.VTimeInSec),
	}
}

// TotalTime returns the summed duration of the completed tasks.
func (t *TotalTimeTracer) TotalTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.totalTime
}

// StartTask records the task start time
func (t *TotalTimeTracer) StartTask(task Task) {
	now := t.timeTeller.CurrentTime()

	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.startTime[task.ID] = now
	t.lock.Unlock()
}

// StepTask does nothing
func (t *TotalTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of the task
func (t *TotalTimeTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.startTime[task.ID]
	if !ok {
		return
	}

	delete(t.startTime, task.ID)

	t.totalTime += now - start
}
