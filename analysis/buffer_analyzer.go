package analysis

import (
	"math"

	"github.com/sarchlab/periphsim/sim"
	"github.com/tebeka/atexit"
)

// BufferAnalyzer reports the average occupancy of one buffer, either over
// the whole run or periodized. It integrates the occupancy over time as
// push and pop hooks arrive, so quiet stretches between hooks are weighted
// by their duration.
type BufferAnalyzer struct {
	PerfLogger
	sim.TimeTeller

	buf       sim.Buffer
	usePeriod bool
	period    sim.VTimeInSec

	lastTime sim.VTimeInSec
	level    int
	integral float64
}

// Func updates the occupancy integral on a push or pop hook.
func (b *BufferAnalyzer) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBufPush && ctx.Pos != sim.HookPosBufPop {
		return
	}

	now := b.CurrentTime()

	b.advance(now)
	b.level = b.buf.Size()
}

// advance integrates the occupancy up to now, reporting every period
// boundary it crosses.
func (b *BufferAnalyzer) advance(now sim.VTimeInSec) {
	if !b.usePeriod {
		b.integral += float64(b.level) * float64(now-b.lastTime)
		b.lastTime = now
		return
	}

	for {
		boundary := b.periodEndTime(b.lastTime)
		if now < boundary {
			b.integral += float64(b.level) * float64(now-b.lastTime)
			b.lastTime = now
			return
		}

		b.integral += float64(b.level) * float64(boundary-b.lastTime)
		b.report(b.periodStartTime(b.lastTime), boundary)
		b.integral = 0
		b.lastTime = boundary
	}
}

// summarize reports the window that is still open. It runs at exit, so the
// tail of the run is not lost.
func (b *BufferAnalyzer) summarize() {
	now := b.CurrentTime()
	b.advance(now)

	if !b.usePeriod {
		b.report(0, now)
		return
	}

	b.report(b.periodStartTime(now), now)
}

// report emits the average occupancy of the window. Windows with an average
// of zero are skipped, so idle buffers do not flood the output.
func (b *BufferAnalyzer) report(start, end sim.VTimeInSec) {
	if end <= start {
		return
	}

	avgLevel := b.integral / float64(end-start)
	if avgLevel == 0 {
		return
	}

	b.PerfLogger.AddDataEntry(PerfAnalyzerEntry{
		Start:     start,
		End:       end,
		Where:     b.buf.Name(),
		What:      "Level",
		EntryType: "Buffer",
		Value:     avgLevel,
		Unit:      "",
	})
}

func (b *BufferAnalyzer) periodStartTime(t sim.VTimeInSec) sim.VTimeInSec {
	return sim.VTimeInSec(math.Floor(float64(t/b.period))) * b.period
}

func (b *BufferAnalyzer) periodEndTime(t sim.VTimeInSec) sim.VTimeInSec {
	return b.periodStartTime(t) + b.period
}

// BufferAnalyzerBuilder can build a BufferAnalyzer.
type BufferAnalyzerBuilder struct {
	perfLogger PerfLogger
	timeTeller sim.TimeTeller
	usePeriod  bool
	period     sim.VTimeInSec
	buffer     sim.Buffer
}

// MakeBufferAnalyzerBuilder creates a BufferAnalyzerBuilder.
func MakeBufferAnalyzerBuilder() BufferAnalyzerBuilder {
	return BufferAnalyzerBuilder{}
}

// WithPerfLogger sets the PerfLogger to use.
func (b BufferAnalyzerBuilder) WithPerfLogger(
	perfLogger PerfLogger,
) BufferAnalyzerBuilder {
	b.perfLogger = perfLogger
	return b
}

// WithTimeTeller sets the TimeTeller to use.
func (b BufferAnalyzerBuilder) WithTimeTeller(
	timeTeller sim.TimeTeller,
) BufferAnalyzerBuilder {
	b.timeTeller = timeTeller
	return b
}

// WithPeriod sets the period to use.
func (b BufferAnalyzerBuilder) WithPeriod(
	period sim.VTimeInSec,
) BufferAnalyzerBuilder {
	b.usePeriod = true
	b.period = period
	return b
}

// WithBuffer sets the buffer to watch.
func (b BufferAnalyzerBuilder) WithBuffer(
	buffer sim.Buffer,
) BufferAnalyzerBuilder {
	b.buffer = buffer
	return b
}

// Build creates a BufferAnalyzer.
func (b BufferAnalyzerBuilder) Build() *BufferAnalyzer {
	if b.perfLogger == nil {
		panic("perfLogger is not set")
	}

	if b.timeTeller == nil {
		panic("timeTeller is not set")
	}

	if b.buffer == nil {
		panic("buffer is not set")
	}

	analyzer := &BufferAnalyzer{
		PerfLogger: b.perfLogger,
		TimeTeller: b.timeTeller,
		buf:        b.buffer,
		usePeriod:  b.usePeriod,
		period:     b.period,
	}

	atexit.Register(func() {
		analyzer.summarize()
	})

	return analyzer
}
