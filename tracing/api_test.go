package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/periphsim/sim"
)

var _ = Describe("Api", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
		domain.EXPECT().NumHooks().Return(1).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should deliver the task to the domain hooks", func() {
		domain.EXPECT().Name().Return("Comp").AnyTimes()

		var invoked sim.HookCtx
		domain.EXPECT().
			InvokeHook(gomock.Any()).
			Do(func(ctx sim.HookCtx) { invoked = ctx })

		StartTask("id", "parent", domain, "kind", "what", 42)

		Expect(invoked.Pos).To(BeIdenticalTo(HookPosTaskStart))
		task := invoked.Item.(Task)
		Expect(task.ID).To(Equal("id"))
		Expect(task.ParentID).To(Equal("parent"))
		Expect(task.Kind).To(Equal("kind"))
		Expect(task.What).To(Equal("what"))
		Expect(task.Where).To(Equal("Comp"))
		Expect(task.Detail).To(Equal(42))
	})

	It("should skip entirely when the domain has no hooks", func() {
		silent := NewMockNamedHookable(mockCtrl)
		silent.EXPECT().NumHooks().Return(0).AnyTimes()
		silent.EXPECT().Name().Return("Comp").AnyTimes()

		StartTask("id", "", silent, "kind", "what", nil)
		AddTaskStep("id", silent, "step")
		EndTask("id", silent)
	})

	It("should panic if ID is not given", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		Expect(func() {
			StartTask("", "123", domain, "kind", "what", nil)
		}).Should(Panic())
	})

	It("should be panic if domain's name is empty.", func() {
		domain.EXPECT().Name().Return("").AnyTimes()
		Expect(func() {
			StartTask("id", "123", domain, "kind", "what", nil)
		}).Should(Panic())
	})

	It("should be panic if kind is empty.", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		Expect(func() {
			StartTask("id", "123", domain, "", "what", nil)
		}).Should(Panic())
	})

	It("should be panic if what is empty.", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		Expect(func() {
			StartTask("id", "123", domain, "kind", "", nil)
		}).Should(Panic())
	})
})
