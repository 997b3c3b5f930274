package sim

import "fmt"

// HookPosReset is a hook position that triggers after a model has been
// reset. The hook item is the model.
var HookPosReset = &HookPos{Name: "Reset"}

// HookPosBeforeEval is a hook position that triggers before a model
// evaluates. The hook item is the model.
var HookPosBeforeEval = &HookPos{Name: "BeforeEval"}

// HookPosAfterEval is a hook position that triggers after a model evaluates.
// The hook item is the model.
var HookPosAfterEval = &HookPos{Name: "AfterEval"}

// HookPosAfterCommit is a hook position that triggers after a model commits.
// The hook item is the model and the detail reports whether any of the
// model's signals changed.
var HookPosAfterCommit = &HookPos{Name: "AfterCommit"}

// A TimeTeller can tell the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// A CycleTeller can tell the number of full clock cycles completed so far.
type CycleTeller interface {
	CurrentCycle() uint64
}

// A NonConvergenceError reports that re-evaluating the models before commit
// produced a different pending value for a signal than the first evaluation
// did. It indicates a model whose evaluation is not a pure function of
// committed state.
type NonConvergenceError struct {
	Cycle  uint64
	Signal string
	First  uint64
	Second uint64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf(
		"signal %s did not converge in cycle %d: evaluation scheduled %#x, re-evaluation scheduled %#x",
		e.Signal, e.Cycle, e.First, e.Second)
}

// A SimulationEndHandler is called when the simulation ends.
type SimulationEndHandler interface {
	// Handle performs the end-of-simulation action.
	Handle(now VTimeInSec)
}

// An Engine owns the clock and drives all registered models through their
// reset, evaluate and commit operations.
type Engine interface {
	Hookable
	TimeTeller
	CycleTeller

	// Clock returns the clock signal the engine toggles. Models sample it to
	// detect edges.
	Clock() *Signal

	// RegisterModel adds a model to be driven by the engine.
	RegisterModel(m Model)

	// Reset resets the clock and all registered models.
	Reset()

	// Step advances the simulation by one full clock cycle. It returns a
	// non-nil error if the models failed to converge.
	Step() error

	// Run advances the simulation by the given number of clock cycles,
	// stopping early on a fault.
	Run(cycles uint64) error

	// Pause prevents the engine from advancing until Continue is called.
	Pause()

	// Continue allows a paused engine to advance again.
	Continue()

	// Faulted returns the fault that stopped the engine, if any.
	Faulted() error

	// RegisterSimulationEndHandler registers a handler to be called when the
	// simulation ends.
	RegisterSimulationEndHandler(handler SimulationEndHandler)

	// Finished is called after the simulation ends. It calls all the
	// registered SimulationEndHandler.
	Finished()
}
