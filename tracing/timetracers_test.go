package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/periphsim/sim"
)

var _ = Describe("TotalTimeTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		t          *TotalTimeTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)

		t = NewTotalTimeTracer(timeTeller, nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should sum the time of sequential tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		t.StartTask(Task{ID: "2"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(5))
		t.EndTask(Task{ID: "2"})

		Expect(t.TotalTime()).To(Equal(sim.VTimeInSec(3.0)))
	})

	It("should double count overlapping tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1.5))
		t.StartTask(Task{ID: "2"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2.5))
		t.EndTask(Task{ID: "2"})

		Expect(t.TotalTime()).To(Equal(sim.VTimeInSec(2.0)))
	})

	It("should ignore the end of an unknown task", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.EndTask(Task{ID: "1"})

		Expect(t.TotalTime()).To(Equal(sim.VTimeInSec(0.0)))
	})

	It("should honor the filter", func() {
		t = NewTotalTimeTracer(timeTeller, func(task Task) bool {
			return task.Kind == "read"
		})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1", Kind: "write"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1", Kind: "write"})

		Expect(t.TotalTime()).To(Equal(sim.VTimeInSec(0.0)))
	})
})

var _ = Describe("AverageTimeTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		t          *AverageTimeTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)

		t = NewAverageTimeTracer(timeTeller, nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should average the time of completed tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		t.StartTask(Task{ID: "2"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(6))
		t.EndTask(Task{ID: "2"})

		Expect(t.AverageTime()).To(Equal(sim.VTimeInSec(2.0)))
		Expect(t.TotalCount()).To(Equal(uint64(2)))
	})

	It("should not count inflight tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})

		Expect(t.AverageTime()).To(Equal(sim.VTimeInSec(0.0)))
		Expect(t.TotalCount()).To(Equal(uint64(0)))
	})
})

var _ = Describe("StepCountTracer", func() {
	var t *StepCountTracer

	BeforeEach(func() {
		t = NewStepCountTracer(nil)
	})

	It("should count steps and tasks per step name", func() {
		t.StartTask(Task{ID: "1"})
		t.StartTask(Task{ID: "2"})

		t.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "consume"}}})
		t.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "consume"}}})
		t.StepTask(Task{ID: "2", Steps: []TaskStep{{What: "consume"}}})
		t.StepTask(Task{ID: "2", Steps: []TaskStep{{What: "publish"}}})

		t.EndTask(Task{ID: "1"})
		t.EndTask(Task{ID: "2"})

		Expect(t.GetStepNames()).To(Equal([]string{"consume", "publish"}))
		Expect(t.GetStepCount("consume")).To(Equal(uint64(3)))
		Expect(t.GetStepCount("publish")).To(Equal(uint64(1)))
		Expect(t.GetTaskCount("consume")).To(Equal(uint64(2)))
		Expect(t.GetTaskCount("publish")).To(Equal(uint64(1)))
	})
})
