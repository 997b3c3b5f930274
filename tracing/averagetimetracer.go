package tracing

import (
	"sync"

	"github.com/sarchlab/periphsim/sim"
)

// AverageTimeTracer reports the average duration of the tasks that completed
// on a domain. Inflight tasks do not contribute until they end.
type AverageTimeTracer struct {
	timeTeller sim.TimeTeller
	filter     TaskFilter

	lock      sync.Mutex
	startTime map[string]sim.VTimeInSec
	totalTime sim.VTimeInSec
	taskCount uint64
}

// NewAverageTimeTracer creates a new AverageTimeTracer.
func NewAverageTimeTracer(
	timeTeller sim.TimeTeller,
	filter TaskFilter,
) *AverageTimeTracer {
	return &AverageTimeTracer{
		timeTeller: timeTeller,
		filter:     filter,
		startTime:  make(map[string]sim.VTimeInSec),
	}
}

// AverageTime returns the average duration of the completed tasks. It is 0
// before the first task completes.
func (t *AverageTimeTracer) AverageTime() sim.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.taskCount == 0 {
		return 0
	}

	return t.totalTime / sim.VTimeInSec(t.taskCount)
}

// TotalCount returns the number of completed tasks.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount
}

// StartTask records the task start time
func (t *AverageTimeTracer) StartTask(task Task) {
	now := t.timeTeller.CurrentTime()

	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.startTime[task.ID] = now
	t.lock.Unlock()
}

// StepTask does nothing
func (t *AverageTimeTracer) StepTask(_ Task) {
	// Do nothing
}

// EndTask records the end of the task
func (t *AverageTimeTracer) EndTask(task Task) {
	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	start, ok := t.startTime[task.ID]
	if !ok {
		return
	}

	delete(t.startTime, task.ID)

	t.totalTime += now - start
	t.taskCount++
}
