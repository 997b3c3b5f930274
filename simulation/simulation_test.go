package simulation

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/periphsim/sim"
)

var _ = Describe("Simulation", func() {
	var (
		mockCtrl *gomock.Controller
		s        *Simulation
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())

		s = MakeBuilder().
			WithoutMonitoring().
			WithOutputFileName(filepath.Join(GinkgoT().TempDir(), "sim")).
			Build()
	})

	AfterEach(func() {
		s.Terminate()
		mockCtrl.Finish()
	})

	newModel := func(name string, signals ...*sim.Signal) *MockModel {
		m := NewMockModel(mockCtrl)
		m.EXPECT().Name().Return(name).AnyTimes()
		m.EXPECT().Signals().Return(signals).AnyTimes()
		m.EXPECT().Hooks().Return(nil).AnyTimes()
		m.EXPECT().AcceptHook(gomock.Any()).AnyTimes()
		return m
	}

	It("should generate a unique ID", func() {
		Expect(s.ID()).NotTo(BeEmpty())
	})

	It("should provide the engine, data recorder and tracer", func() {
		Expect(s.GetEngine()).NotTo(BeNil())
		Expect(s.GetDataRecorder()).NotTo(BeNil())
		Expect(s.GetVisTracer()).NotTo(BeNil())
	})

	It("should not have a monitor when monitoring is disabled", func() {
		Expect(s.GetMonitor()).To(BeNil())
	})

	It("should register models and their signals", func() {
		sda := sim.NewSignal("I2C.SDA", 1)
		model := newModel("I2C", sda)

		s.RegisterModel(model)

		Expect(s.Models()).To(HaveLen(1))
		Expect(s.GetModelByName("I2C")).To(BeIdenticalTo(model))
		Expect(s.GetSignalByName("I2C.SDA")).To(BeIdenticalTo(sda))
	})

	It("should return nil when looking up unknown names", func() {
		Expect(s.GetModelByName("UART")).To(BeNil())
		Expect(s.GetSignalByName("UART.TX")).To(BeNil())
	})

	It("should panic when a model name is registered twice", func() {
		s.RegisterModel(newModel("I2C"))

		Expect(func() {
			s.RegisterModel(newModel("I2C"))
		}).To(Panic())
	})

	It("should register externally created signals", func() {
		scl := sim.NewSignal("SCL", 1)

		s.RegisterSignal(scl)

		Expect(s.GetSignalByName("SCL")).To(BeIdenticalTo(scl))
		Expect(func() { s.RegisterSignal(scl) }).To(Panic())
	})
})

var _ = Describe("Builder", func() {
	It("should panic when a monitor port is set without monitoring", func() {
		Expect(func() {
			MakeBuilder().
				WithoutMonitoring().
				WithMonitorPort(8080).
				Build()
		}).To(Panic())
	})
})
