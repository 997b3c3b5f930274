package tracing

import (
	"sync"
)

// StepCountTracer counts the milestones recorded while processing tasks,
// grouped by the milestone name. It also counts how many distinct tasks
// reached each milestone at least once.
type StepCountTracer struct {
	filter TaskFilter

	lock      sync.Mutex
	taskSteps map[string]map[string]bool
	stepNames []string
	stepCount map[string]uint64
	taskCount map[string]uint64
}

// NewStepCountTracer creates a new StepCountTracer.
func NewStepCountTracer(filter TaskFilter) *StepCountTracer {
	return &StepCountTracer{
		filter:    filter,
		taskSteps: make(map[string]map[string]bool),
		stepCount: make(map[string]uint64),
		taskCount: make(map[string]uint64),
	}
}

// GetStepNames returns the recorded step names in the order they first
// appeared.
func (t *StepCountTracer) GetStepNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stepNames
}

// GetStepCount returns how often a step with the given name was recorded.
func (t *StepCountTracer) GetStepCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.stepCount[stepName]
}

// GetTaskCount returns how many tasks recorded a step with the given name at
// least once.
func (t *StepCountTracer) GetTaskCount(stepName string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.taskCount[stepName]
}

// StartTask registers the task so that its steps can be counted.
func (t *StepCountTracer) StartTask(task Task) {
	if t.filter != nil && !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.taskSteps[task.ID] = make(map[string]bool)
	t.lock.Unlock()
}

// StepTask counts the steps of the task. Steps of tasks this tracer did not
// see start are ignored.
func (t *StepCountTracer) StepTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	seen, ok := t.taskSteps[task.ID]
	if !ok {
		return
	}

	for _, step := range task.Steps {
		if _, known := t.stepCount[step.What]; !known {
			t.stepNames = append(t.stepNames, step.What)
		}
		t.stepCount[step.What]++

		if !seen[step.What] {
			seen[step.What] = true
			t.taskCount[step.What]++
		}
	}
}

// EndTask removes the task from the inflight task list.
func (t *StepCountTracer) EndTask(task Task) {
	t.lock.Lock()
	delete(t.taskSteps, task.ID)
	t.lock.Unlock()
}
