package sim

import (
	"log"
)

// A SignalLogger prints every committed signal change it observes, one line
// per change, with the commit time, the signal name and both values.
type SignalLogger struct {
	logger     *log.Logger
	timeTeller TimeTeller
}

// NewSignalLogger returns a SignalLogger writing into the given logger.
func NewSignalLogger(logger *log.Logger, timeTeller TimeTeller) *SignalLogger {
	return &SignalLogger{
		logger:     logger,
		timeTeller: timeTeller,
	}
}

// Func writes the signal change into the logger.
func (h *SignalLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosSignalChange {
		return
	}

	s, ok := ctx.Domain.(*Signal)
	if !ok {
		return
	}

	h.logger.Printf("%.10f, %s, %#x -> %#x",
		h.timeTeller.CurrentTime(), s.Name(), ctx.Detail, ctx.Item)
}
