package sim

import (
	"log"
	"sync"
)

// A SerialEngine drives all registered models on a single goroutine, one
// clock half-cycle at a time. Within a half-cycle, every model evaluates
// against the state committed before the edge, an optional re-evaluation
// pass verifies that the evaluations converged, and only then are the
// scheduled writes committed.
type SerialEngine struct {
	HookableBase

	freq Freq
	clk  *Signal

	models  []Model
	signals []*Signal

	cycleLock sync.RWMutex
	cycle     uint64

	faultLock sync.RWMutex
	fault     error

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex

	settleCheck bool

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates a SerialEngine that runs the clock at the given
// frequency.
func NewSerialEngine(freq Freq) *SerialEngine {
	if freq <= 0 {
		log.Panic("engine frequency must be positive")
	}

	e := new(SerialEngine)
	e.freq = freq
	e.clk = NewSignal("Clk", 1)
	e.settleCheck = true

	return e
}

// DisableSettleCheck turns off the re-evaluation pass that verifies
// convergence. Non-convergent models then go undetected, so this should only
// be used to trade safety for speed on long runs of trusted models.
func (e *SerialEngine) DisableSettleCheck() {
	e.settleCheck = false
}

// Clock returns the clock signal the engine toggles.
func (e *SerialEngine) Clock() *Signal {
	return e.clk
}

// RegisterModel adds a model to be driven by the engine. Models are
// evaluated in registration order. The model must have created all its
// signals before it is registered.
func (e *SerialEngine) RegisterModel(m Model) {
	e.models = append(e.models, m)
	e.signals = append(e.signals, m.Signals()...)
}

// Reset drives the clock low, resets all registered models, clears any
// latched fault and rewinds the cycle count to 0.
func (e *SerialEngine) Reset() {
	e.clk.Set(0)
	e.latchFault(nil)
	e.writeCycle(0)

	for _, m := range e.models {
		m.Reset()

		e.InvokeHook(HookCtx{
			Domain: e,
			Pos:    HookPosReset,
			Item:   m,
		})
	}
}

func (e *SerialEngine) readCycle() uint64 {
	e.cycleLock.RLock()
	c := e.cycle
	e.cycleLock.RUnlock()
	return c
}

func (e *SerialEngine) writeCycle(c uint64) {
	e.cycleLock.Lock()
	e.cycle = c
	e.cycleLock.Unlock()
}

func (e *SerialEngine) latchFault(err error) {
	e.faultLock.Lock()
	e.fault = err
	e.faultLock.Unlock()
}

// Faulted returns the fault that stopped the engine, or nil.
func (e *SerialEngine) Faulted() error {
	e.faultLock.RLock()
	err := e.fault
	e.faultLock.RUnlock()
	return err
}

// Step advances the simulation by one full clock cycle, raising the clock
// and then lowering it, with every model evaluated and committed on both
// half-cycles. Once a fault is latched, Step keeps returning it without
// advancing until Reset is called.
func (e *SerialEngine) Step() error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	return e.step()
}

// Run advances the simulation by the given number of clock cycles, stopping
// early if the models fail to converge.
func (e *SerialEngine) Run(cycles uint64) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for i := uint64(0); i < cycles; i++ {
		if err := e.step(); err != nil {
			return err
		}
	}

	return nil
}

func (e *SerialEngine) step() error {
	if err := e.Faulted(); err != nil {
		return err
	}

	e.pauseLock.Lock()
	defer e.pauseLock.Unlock()

	if err := e.halfCycle(true); err != nil {
		e.latchFault(err)
		return err
	}

	if err := e.halfCycle(false); err != nil {
		e.latchFault(err)
		return err
	}

	e.writeCycle(e.readCycle() + 1)

	return nil
}

func (e *SerialEngine) halfCycle(level bool) error {
	e.clk.SetBool(level)

	for _, m := range e.models {
		hookCtx := HookCtx{
			Domain: e,
			Pos:    HookPosBeforeEval,
			Item:   m,
		}
		e.InvokeHook(hookCtx)

		m.Eval()

		hookCtx.Pos = HookPosAfterEval
		e.InvokeHook(hookCtx)
	}

	if e.settleCheck {
		if err := e.settle(); err != nil {
			return err
		}
	}

	for _, m := range e.models {
		changed := m.Commit()

		e.InvokeHook(HookCtx{
			Domain: e,
			Pos:    HookPosAfterCommit,
			Item:   m,
			Detail: changed,
		})
	}

	return nil
}

// settle evaluates every model a second time before anything commits and
// compares the values scheduled by the two passes. A well-formed model sees
// no clock edge in the second pass and schedules nothing new, so any
// difference reveals an evaluation that is not a pure function of committed
// state.
func (e *SerialEngine) settle() error {
	scheduled := make([]uint64, len(e.signals))
	for i, s := range e.signals {
		scheduled[i] = s.NextValue()
	}

	for _, m := range e.models {
		m.Eval()
	}

	for i, s := range e.signals {
		if v := s.NextValue(); v != scheduled[i] {
			return &NonConvergenceError{
				Cycle:  e.readCycle(),
				Signal: s.Name(),
				First:  scheduled[i],
				Second: v,
			}
		}
	}

	return nil
}

// Pause prevents the SerialEngine from advancing past the current cycle.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to advance again.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

// CurrentCycle returns the number of full clock cycles completed so far.
func (e *SerialEngine) CurrentCycle() uint64 {
	return e.readCycle()
}

// CurrentTime returns the simulated time corresponding to the current cycle.
func (e *SerialEngine) CurrentTime() VTimeInSec {
	return VTimeInSec(float64(e.readCycle())) * e.freq.Period()
}

// RegisterSimulationEndHandler registers a handler to be called when the
// simulation ends.
func (e *SerialEngine) RegisterSimulationEndHandler(
	handler SimulationEndHandler,
) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished should be called after the simulation ends. This function
// calls all the registered SimulationEndHandler.
func (e *SerialEngine) Finished() {
	now := e.CurrentTime()
	for _, h := range e.simulationEndHandlers {
		h.Handle(now)
	}
}
