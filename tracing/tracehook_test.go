package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/periphsim/sim"
)

type hookedDomain struct {
	sim.HookableBase
	name string
}

func (d *hookedDomain) Name() string {
	return d.name
}

type recordingTracer struct {
	started, stepped, ended []Task
}

func (t *recordingTracer) StartTask(task Task) {
	t.started = append(t.started, task)
}

func (t *recordingTracer) StepTask(task Task) {
	t.stepped = append(t.stepped, task)
}

func (t *recordingTracer) EndTask(task Task) {
	t.ended = append(t.ended, task)
}

var _ = Describe("CollectTrace", func() {
	var (
		domain *hookedDomain
		tracer *recordingTracer
	)

	BeforeEach(func() {
		domain = &hookedDomain{name: "Comp"}
		tracer = &recordingTracer{}

		CollectTrace(domain, tracer)
	})

	It("should deliver task events to the tracer", func() {
		StartTask("id", "", domain, "kind", "what", nil)
		AddTaskStep("id", domain, "milestone")
		EndTask("id", domain)

		Expect(tracer.started).To(HaveLen(1))
		Expect(tracer.started[0].ID).To(Equal("id"))
		Expect(tracer.started[0].Where).To(Equal("Comp"))

		Expect(tracer.stepped).To(HaveLen(1))
		Expect(tracer.stepped[0].Steps[0].What).To(Equal("milestone"))

		Expect(tracer.ended).To(HaveLen(1))
		Expect(tracer.ended[0].ID).To(Equal("id"))
	})

	It("should refuse to attach the same tracer twice", func() {
		Expect(func() {
			CollectTrace(domain, tracer)
		}).To(Panic())
	})

	It("should allow a second tracer on the same domain", func() {
		other := &recordingTracer{}
		CollectTrace(domain, other)

		StartTask("id", "", domain, "kind", "what", nil)

		Expect(tracer.started).To(HaveLen(1))
		Expect(other.started).To(HaveLen(1))
	})
})
