package analysis

import (
	"math"

	"github.com/sarchlab/periphsim/sim"
	"github.com/tebeka/atexit"
)

// SignalAnalyzer is a hook that counts how often a signal changes its
// committed value.
type SignalAnalyzer struct {
	PerfLogger
	sim.TimeTeller

	usePeriod bool
	period    sim.VTimeInSec
	signal    *sim.Signal

	lastTime sim.VTimeInSec
	toggles  int64
}

// Func counts one committed value change of the signal.
func (h *SignalAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosSignalChange {
		return
	}

	now := h.CurrentTime()

	if h.usePeriod {
		lastPeriodEndTime := h.periodEndTime(h.lastTime)
		if now > lastPeriodEndTime {
			h.summarize()
		}
	}

	h.toggles++
	h.lastTime = now
}

func (h *SignalAnalyzer) summarize() {
	now := h.CurrentTime()

	startTime := sim.VTimeInSec(0)
	endTime := now

	if h.usePeriod {
		startTime = h.periodStartTime(h.lastTime)
		endTime = h.periodEndTime(h.lastTime)

		if endTime > now {
			endTime = now
		}
	}

	if h.toggles == 0 {
		return
	}

	h.PerfLogger.AddDataEntry(PerfAnalyzerEntry{
		Start:     startTime,
		End:       endTime,
		Where:     h.signal.Name(),
		What:      "Activity",
		EntryType: "Signal",
		Value:     float64(h.toggles),
		Unit:      "Toggle",
	})

	h.toggles = 0
}

func (h *SignalAnalyzer) periodStartTime(t sim.VTimeInSec) sim.VTimeInSec {
	return sim.VTimeInSec(math.Floor(float64(t/h.period))) * h.period
}

func (h *SignalAnalyzer) periodEndTime(t sim.VTimeInSec) sim.VTimeInSec {
	return h.periodStartTime(t) + h.period
}

// SignalAnalyzerBuilder can build a SignalAnalyzer.
type SignalAnalyzerBuilder struct {
	perfLogger PerfLogger
	timeTeller sim.TimeTeller
	usePeriod  bool
	period     sim.VTimeInSec
	signal     *sim.Signal
}

// MakeSignalAnalyzerBuilder creates a SignalAnalyzerBuilder.
func MakeSignalAnalyzerBuilder() SignalAnalyzerBuilder {
	return SignalAnalyzerBuilder{}
}

// WithPerfLogger sets the logger to be used by the SignalAnalyzer.
func (b SignalAnalyzerBuilder) WithPerfLogger(
	l PerfLogger,
) SignalAnalyzerBuilder {
	b.perfLogger = l
	return b
}

// WithTimeTeller sets the TimeTeller to be used by the SignalAnalyzer.
func (b SignalAnalyzerBuilder) WithTimeTeller(
	t sim.TimeTeller,
) SignalAnalyzerBuilder {
	b.timeTeller = t
	return b
}

// WithPeriod sets the period to be used by the SignalAnalyzer.
func (b SignalAnalyzerBuilder) WithPeriod(
	p sim.VTimeInSec,
) SignalAnalyzerBuilder {
	b.usePeriod = true
	b.period = p

	return b
}

// WithSignal sets the signal to be watched by the SignalAnalyzer.
func (b SignalAnalyzerBuilder) WithSignal(s *sim.Signal) SignalAnalyzerBuilder {
	b.signal = s
	return b
}

// Build creates a SignalAnalyzer.
func (b SignalAnalyzerBuilder) Build() *SignalAnalyzer {
	if b.perfLogger == nil {
		panic("SignalAnalyzer requires a PerfLogger")
	}

	if b.timeTeller == nil {
		panic("SignalAnalyzer requires a TimeTeller")
	}

	if b.signal == nil {
		panic("SignalAnalyzer requires a Signal")
	}

	a := &SignalAnalyzer{
		PerfLogger: b.perfLogger,
		TimeTeller: b.timeTeller,
		usePeriod:  b.usePeriod,
		period:     b.period,
		signal:     b.signal,
	}

	atexit.Register(func() { a.summarize() })

	return a
}
