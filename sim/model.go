package sim

// A Model is a cycle-accurate behavioral model of a hardware block. The
// engine advances it by calling Eval once per clock half-cycle and Commit
// afterward, so that every evaluation observes only state committed before
// the current edge.
type Model interface {
	Named
	Hookable

	// Reset establishes the defined initial outputs and internal state.
	Reset()

	// Eval computes the model's next state from committed signal values. It
	// must only schedule pending writes and must never make a write visible
	// within the same evaluation.
	Eval()

	// Commit applies all scheduled writes and reports whether any signal
	// changed.
	Commit() bool

	// Signals returns the signals that hold the model's committed state.
	Signals() []*Signal
}

// ModelBase provides the common bookkeeping shared by all models. It keeps
// the model name and the registry of signals that Commit applies.
type ModelBase struct {
	HookableBase

	name    string
	signals []*Signal
}

// NewModelBase creates a new ModelBase.
func NewModelBase(name string) *ModelBase {
	NameMustBeValid(name)

	b := new(ModelBase)
	b.name = name

	return b
}

// Name returns the name of the model.
func (b *ModelBase) Name() string {
	return b.name
}

// AddSignal registers a signal as part of the model's committed state and
// returns it.
func (b *ModelBase) AddSignal(s *Signal) *Signal {
	b.signals = append(b.signals, s)
	return s
}

// NewSignal creates a signal named under the model and registers it.
func (b *ModelBase) NewSignal(elemName string, width int) *Signal {
	return b.AddSignal(NewSignal(BuildName(b.name, elemName), width))
}

// Signals returns the signals registered on the model.
func (b *ModelBase) Signals() []*Signal {
	return b.signals
}

// CommitSignals commits every registered signal and reports whether any of
// them changed.
func (b *ModelBase) CommitSignals() bool {
	changed := false

	for _, s := range b.signals {
		if s.Commit() {
			changed = true
		}
	}

	return changed
}
