package tracing

import (
	"sync"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/periphsim/datarecording"
	"github.com/sarchlab/periphsim/sim"
)

type taskTableEntry struct {
	TaskID    string  `json:"task_id" periphsim_data:"index"`
	ParentID  string  `json:"parent_id" periphsim_data:"index"`
	Kind      string  `json:"kind" periphsim_data:"index"`
	What      string  `json:"what" periphsim_data:"index"`
	Location  string  `json:"location" periphsim_data:"index"`
	StartTime float64 `json:"start_time" periphsim_data:"index"`
	EndTime   float64 `json:"end_time" periphsim_data:"index"`
}

type taskStepTableEntry struct {
	TaskID string  `json:"task_id" periphsim_data:"index"`
	Time   float64 `json:"time" periphsim_data:"index"`
	What   string  `json:"what"`
}

// DBTracer is a tracer that can store tasks into a database. DBTracers can
// connect with different backends so that the tasks can be stored in
// different types of databases.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sim.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sim.VTimeInSec

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller sim.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable("trace", taskTableEntry{})
	dataRecorder.CreateTable("trace_steps", taskStepTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange sets the time range of the tracer. Tasks that end before the
// range starts or start after the range ends are not recorded.
func (t *DBTracer) SetTimeRange(startTime, endTime sim.VTimeInSec) {
	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startingTaskMustBeValid(task)

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

func (t *DBTracer) startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.What == "" {
		panic("task what must be set")
	}

	if task.Where == "" {
		panic("task location must be set")
	}
}

// StepTask records a step of an inflight task.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	now := t.timeTeller.CurrentTime()
	for _, step := range task.Steps {
		t.backend.InsertData("trace_steps", taskStepTableEntry{
			TaskID: task.ID,
			Time:   float64(now),
			What:   step.What,
		})
	}
}

// EndTask marks the end of a task.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task.EndTime = t.timeTeller.CurrentTime()

	if t.startTime > 0 && task.EndTime < t.startTime {
		delete(t.tracingTasks, task.ID)
		return
	}

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	originalTask.EndTime = task.EndTime
	t.writeTaskToDB(originalTask)

	delete(t.tracingTasks, task.ID)
}

// Terminate flushes the recorded tasks. Tasks that are still inflight are
// discarded.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.tracingTasks = nil
	t.backend.Flush()
}

func (t *DBTracer) writeTaskToDB(task Task) {
	t.backend.InsertData("trace", taskTableEntry{
		TaskID:    task.ID,
		ParentID:  task.ParentID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Where,
		StartTime: float64(task.StartTime),
		EndTime:   float64(task.EndTime),
	})
}
