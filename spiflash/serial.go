package spiflash

import (
	"github.com/sarchlab/periphsim/sim"
	"github.com/sarchlab/periphsim/tracing"
)

// Opcodes recognized by the Serial model.
//
// OpcodeReleasePowerDown wakes the device from power-down. OpcodeRead starts
// a sequential read at a 24-bit address.
const (
	OpcodeReleasePowerDown = 0xAB
	OpcodeRead             = 0x03
)

// Frame lengths, in clock edges, after which the Serial model inspects the
// accumulated shift register for an opcode.
const (
	WakeFrameEdges = 8
	ReadFrameEdges = 32
)

const (
	serialStateIdle = iota
	serialStateSelectedPowerDown
	serialStatePoweringUpNeedsDeselect
	serialStateDeselectedPoweredUp
	serialStateSelectedPoweredUp
	serialStateReading
)

// A Serial models the bit-serial wire protocol of a SPI-NOR flash device:
// chip-select, serial data in and serial data out, one bit per clock edge.
//
// The device wakes up when it accumulates the release-power-down opcode over
// exactly one wake frame while selected, and it must then be deselected once
// before it accepts a command. A read command carries the opcode and a
// 24-bit address over one command frame; from the edge the command completes
// the device streams the addressed bytes most-significant bit first for as
// long as it stays selected. Deselecting during a read returns the device to
// power-down. Deselecting at any other point resets frame progress but keeps
// the power state.
type Serial struct {
	*sim.ModelBase

	image *Image

	edge sim.EdgeDetector

	// Inputs, created by the driver.
	Clk  *sim.Signal
	Cs   *sim.Signal
	Copi *sim.Signal

	// Output.
	Cipo *sim.Signal

	state    int
	sr       uint32
	edges    uint8
	address  uint32
	bitIndex uint8

	taskID string
}

// Reset returns the device to power-down with the output line low.
func (s *Serial) Reset() {
	s.state = serialStateIdle
	s.sr = 0
	s.edges = 0
	s.address = 0
	s.bitIndex = 0
	s.taskID = ""

	s.Cipo.Set(0)

	s.edge.Reset(s.Clk.ReadBool())
}

// Eval advances the protocol by one clock edge.
func (s *Serial) Eval() {
	if !s.edge.Rising(s.Clk.ReadBool()) {
		return
	}

	s.Cipo.AssignBool(false)

	cs := s.Cs.ReadBool()
	srnext := (s.sr&0x7fffffff)<<1 | uint32(s.Copi.Read()&1)

	switch s.state {
	case serialStateIdle:
		if cs {
			s.state = serialStateSelectedPowerDown
		}
	case serialStateSelectedPowerDown:
		if s.edges == WakeFrameEdges-1 &&
			srnext&0xff == OpcodeReleasePowerDown {
			s.state = serialStatePoweringUpNeedsDeselect
		}
	case serialStatePoweringUpNeedsDeselect:
		if !cs {
			s.state = serialStateDeselectedPoweredUp
		}
	case serialStateDeselectedPoweredUp:
		if cs {
			s.state = serialStateSelectedPoweredUp
		}
	case serialStateSelectedPoweredUp:
		if s.edges == ReadFrameEdges-1 && srnext>>24 == OpcodeRead {
			s.address = srnext & 0x00ffffff
			s.bitIndex = 0
			s.state = serialStateReading

			s.taskID = sim.GetIDGenerator().Generate()
			tracing.StartTask(s.taskID, "", s, "read", "session", s.address)

			// The command-completing edge already outputs the first bit.
			s.evalReading(cs)
		}
	case serialStateReading:
		s.evalReading(cs)
	}

	if cs {
		s.sr = srnext
		s.edges++
	} else {
		s.edges = 0
	}
}

func (s *Serial) evalReading(cs bool) {
	if s.image.Contains(s.address) {
		b := s.image.Byte(s.address) >> (7 - s.bitIndex) & 1
		s.Cipo.Assign(uint64(b))

		s.bitIndex++
		if s.bitIndex == 8 {
			s.bitIndex = 0
			s.address++
		}
	}

	if !cs {
		s.state = serialStateIdle

		tracing.EndTask(s.taskID, s)
	}
}

// Commit applies the output scheduled by Eval.
func (s *Serial) Commit() bool {
	return s.CommitSignals()
}
