package sim

import "log"

// HookPosSignalChange is a hook position that triggers when a committed
// signal value differs from the value before the commit.
var HookPosSignalChange = &HookPos{Name: "Signal Change"}

// A Signal models a fixed-width hardware wire or register. It carries a
// current value, which is what models observe while they evaluate, and a
// pending value scheduled to replace the current one at the next commit.
//
// Writes made during evaluation go to the pending value through Assign and
// are never visible through Read until Commit applies them. Drivers that sit
// outside the evaluate/commit cycle, such as testbench code between engine
// steps, use Set to update the current value in place.
type Signal struct {
	HookableBase

	name    string
	width   int
	mask    uint64
	current uint64
	pending uint64
	dirty   bool
}

// NewSignal creates a signal with the given hierarchical name and width in
// bits. Width must be in the range of 1 to 64.
func NewSignal(name string, width int) *Signal {
	NameMustBeValid(name)

	if width < 1 || width > 64 {
		log.Panic("signal width must be in the range of 1 to 64")
	}

	return &Signal{
		name:  name,
		width: width,
		mask:  ^uint64(0) >> (64 - width),
	}
}

// Name returns the name of the signal.
func (s *Signal) Name() string {
	return s.name
}

// Width returns the width of the signal in bits.
func (s *Signal) Width() int {
	return s.width
}

// Read returns the current committed value.
func (s *Signal) Read() uint64 {
	return s.current
}

// ReadBool returns true if the current committed value is non-zero.
func (s *Signal) ReadBool() bool {
	return s.current != 0
}

// Assign schedules a value to become current at the next commit. Assigning
// again before the commit overwrites the previously scheduled value.
func (s *Signal) Assign(v uint64) {
	s.pending = v & s.mask
	s.dirty = true
}

// AssignBool schedules a 0 or 1 value to become current at the next commit.
func (s *Signal) AssignBool(b bool) {
	if b {
		s.Assign(1)
	} else {
		s.Assign(0)
	}
}

// Set updates the current value immediately, discarding any scheduled value.
// It is meant for drivers acting between evaluate/commit cycles and must not
// be called from model evaluation.
func (s *Signal) Set(v uint64) {
	s.current = v & s.mask
	s.pending = s.current
	s.dirty = false
}

// SetBool updates the current value immediately to 0 or 1.
func (s *Signal) SetBool(b bool) {
	if b {
		s.Set(1)
	} else {
		s.Set(0)
	}
}

// NextValue returns the value the signal will hold after the next commit,
// which is the scheduled value if one exists and the current value otherwise.
func (s *Signal) NextValue() uint64 {
	if s.dirty {
		return s.pending
	}

	return s.current
}

// Dirty returns true if a value has been scheduled since the last commit.
func (s *Signal) Dirty() bool {
	return s.dirty
}

// Commit applies the scheduled value, if any, and reports whether the
// current value changed. Hooks registered on the signal are invoked on every
// committed change, with the new value as the item and the old value as the
// detail.
func (s *Signal) Commit() bool {
	if !s.dirty {
		return false
	}

	s.dirty = false

	if s.pending == s.current {
		return false
	}

	old := s.current
	s.current = s.pending

	if s.NumHooks() > 0 {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosSignalChange,
			Item:   s.current,
			Detail: old,
		})
	}

	return true
}
