package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/periphsim/sim"
)

// A traceHook forwards the task hooks of one domain to one tracer.
type traceHook struct {
	t Tracer
}

// Func translates task hook positions into Tracer calls. Hooks carrying
// anything other than a task are ignored.
func (h *traceHook) Func(ctx sim.HookCtx) {
	task, ok := ctx.Item.(Task)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosTaskStart:
		h.t.StartTask(task)
	case HookPosTaskStep:
		h.t.StepTask(task)
	case HookPosTaskEnd:
		h.t.EndTask(task)
	}
}

// CollectTrace attaches a tracer to a domain, so that every task the domain
// reports flows into the tracer. Attaching the same tracer to the same
// domain twice panics.
func CollectTrace(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		if h, ok := hook.(*traceHook); ok && h.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}
