package tracing

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/periphsim/datarecording"
	"github.com/sarchlab/periphsim/sim"
)

// Simple test time teller implementation
type testTimeTeller struct {
	currentTime sim.VTimeInSec
}

func (t *testTimeTeller) CurrentTime() sim.VTimeInSec {
	return t.currentTime
}

var _ = Describe("DBTracer", func() {
	var (
		dbPath       string
		timeTeller   *testTimeTeller
		dataRecorder datarecording.DataRecorder
		tracer       *DBTracer
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "trace_test")

		timeTeller = &testTimeTeller{}
		dataRecorder = datarecording.NewDataRecorder(dbPath)
		tracer = NewDBTracer(timeTeller, dataRecorder)
	})

	AfterEach(func() {
		dataRecorder.Close()
	})

	It("should record completed tasks with their steps", func() {
		timeTeller.currentTime = 1.0
		tracer.StartTask(Task{
			ID:    "t1",
			Kind:  "transaction",
			What:  "transfer",
			Where: "Sim.I2C",
		})

		timeTeller.currentTime = 2.0
		tracer.StepTask(Task{
			ID:    "t1",
			Steps: []TaskStep{{What: "consume 0x1a5"}},
		})

		timeTeller.currentTime = 3.0
		tracer.EndTask(Task{ID: "t1"})

		dataRecorder.Flush()

		reader := NewDataRecorderTraceReader(dbPath + ".sqlite3")
		defer reader.Close()

		Expect(reader.ListComponents()).To(Equal([]string{"Sim.I2C"}))

		tasks := reader.ListTasks(TaskQuery{Kind: "transaction"})
		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].ID).To(Equal("t1"))
		Expect(tasks[0].What).To(Equal("transfer"))
		Expect(tasks[0].Where).To(Equal("Sim.I2C"))
		Expect(tasks[0].StartTime).To(Equal(sim.VTimeInSec(1.0)))
		Expect(tasks[0].EndTime).To(Equal(sim.VTimeInSec(3.0)))

		steps := reader.ListTaskSteps("t1")
		Expect(steps).To(HaveLen(1))
		Expect(steps[0].Time).To(Equal(sim.VTimeInSec(2.0)))
		Expect(steps[0].What).To(Equal("consume 0x1a5"))
	})

	It("should join the parent task on request", func() {
		timeTeller.currentTime = 1.0
		tracer.StartTask(Task{
			ID:    "p",
			Kind:  "transaction",
			What:  "transfer",
			Where: "Sim.I2C",
		})

		timeTeller.currentTime = 2.0
		tracer.StartTask(Task{
			ID:       "c",
			ParentID: "p",
			Kind:     "read",
			What:     "burst",
			Where:    "Sim.Flash",
		})

		timeTeller.currentTime = 3.0
		tracer.EndTask(Task{ID: "c"})

		timeTeller.currentTime = 4.0
		tracer.EndTask(Task{ID: "p"})

		dataRecorder.Flush()

		reader := NewDataRecorderTraceReader(dbPath + ".sqlite3")
		defer reader.Close()

		tasks := reader.ListTasks(TaskQuery{ID: "c", EnableParentTask: true})
		Expect(tasks).To(HaveLen(1))
		Expect(tasks[0].ParentTask).NotTo(BeNil())
		Expect(tasks[0].ParentTask.ID).To(Equal("p"))
		Expect(tasks[0].ParentTask.EndTime).To(Equal(sim.VTimeInSec(4.0)))
	})

	It("should drop tasks outside the time range", func() {
		tracer.SetTimeRange(10, 20)

		timeTeller.currentTime = 1.0
		tracer.StartTask(Task{
			ID: "early", Kind: "k", What: "w", Where: "l",
		})
		timeTeller.currentTime = 2.0
		tracer.EndTask(Task{ID: "early"})

		timeTeller.currentTime = 25.0
		tracer.StartTask(Task{
			ID: "late", Kind: "k", What: "w", Where: "l",
		})
		timeTeller.currentTime = 30.0
		tracer.EndTask(Task{ID: "late"})

		dataRecorder.Flush()

		reader := NewDataRecorderTraceReader(dbPath + ".sqlite3")
		defer reader.Close()

		Expect(reader.ListTasks(TaskQuery{})).To(BeEmpty())
	})

	It("should reject a task without a location", func() {
		Expect(func() {
			tracer.StartTask(Task{ID: "t1", Kind: "k", What: "w"})
		}).To(Panic())
	})
})
