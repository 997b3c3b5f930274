package spiflash

import (
	"github.com/sarchlab/periphsim/sim"
	"github.com/sarchlab/periphsim/tracing"
)

// Signal widths of the flash models.
const (
	AddrWidth = 24
	LenWidth  = 16
	DataWidth = 8
)

// DefaultInterByteDelay is the number of ticks between consecutive bytes
// emitted by the Reader, counted from the accepting edge to the first byte
// and from each byte to the next.
const DefaultInterByteDelay = 2

const (
	readerStateIdle = iota
	readerStateRead
)

// A ReadBurst describes an accepted read request. It is attached as the
// detail of the tracing task that covers the burst.
type ReadBurst struct {
	Addr uint32
	Len  uint16
}

// A Reader models the byte-oriented read path of a SPI-NOR flash device. A
// request is presented as a strobe together with an address and a byte
// count. If the address lies in the image window the reader asserts busy and
// emits one byte every few ticks, each marked by a one-tick valid pulse.
// Requests for addresses outside the window are dropped without any
// response. Individual bytes that fall outside the window during a burst
// read as the image fill byte.
type Reader struct {
	*sim.ModelBase

	image          *Image
	interByteDelay int

	edge sim.EdgeDetector

	// Inputs, created by the driver.
	Clk  *sim.Signal
	Stb  *sim.Signal
	Addr *sim.Signal
	Len  *sim.Signal

	// Outputs.
	Busy  *sim.Signal
	Data  *sim.Signal
	Valid *sim.Signal

	state     int
	address   uint32
	remaining uint16
	countdown int

	taskID string
}

// Reset returns the reader to the idle state with all outputs deasserted.
func (r *Reader) Reset() {
	r.state = readerStateIdle
	r.address = 0
	r.remaining = 0
	r.countdown = 0
	r.taskID = ""

	r.Busy.Set(0)
	r.Data.Set(0)
	r.Valid.Set(0)

	r.edge.Reset(r.Clk.ReadBool())
}

// Eval advances the reader by one clock edge.
func (r *Reader) Eval() {
	if !r.edge.Rising(r.Clk.ReadBool()) {
		return
	}

	r.Valid.AssignBool(false)

	switch r.state {
	case readerStateIdle:
		r.evalIdle()
	case readerStateRead:
		r.evalRead()
	}
}

func (r *Reader) evalIdle() {
	if !r.Stb.ReadBool() {
		return
	}

	r.address = uint32(r.Addr.Read())
	r.remaining = uint16(r.Len.Read())

	if !r.image.Contains(r.address) {
		return
	}

	r.Busy.AssignBool(true)
	r.state = readerStateRead
	r.countdown = r.interByteDelay

	r.taskID = sim.GetIDGenerator().Generate()
	tracing.StartTask(r.taskID, "", r, "read", "burst",
		ReadBurst{Addr: r.address, Len: r.remaining})
}

func (r *Reader) evalRead() {
	r.countdown--
	if r.countdown != 0 {
		return
	}

	if r.remaining == 0 {
		r.Busy.AssignBool(false)
		r.state = readerStateIdle

		tracing.EndTask(r.taskID, r)
		return
	}

	r.countdown = r.interByteDelay
	r.Data.Assign(uint64(r.image.Byte(r.address)))
	r.Valid.AssignBool(true)

	r.address++
	r.remaining--
}

// Commit applies the outputs scheduled by Eval.
func (r *Reader) Commit() bool {
	return r.CommitSignals()
}
