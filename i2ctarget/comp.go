// Package i2ctarget models an I2C target controller at the
// transaction/FIFO-handshake level. The bit protocol on the wire is not
// modeled; the controller exchanges whole words with its host through
// depth-1 slots.
package i2ctarget

import (
	"fmt"
	"log"

	"github.com/sarchlab/periphsim/sim"
	"github.com/sarchlab/periphsim/tracing"
)

// Signal widths of the controller.
const (
	// InDataWidth covers 8 data bits plus the last-byte marker bit.
	InDataWidth = 9
	DataWidth   = 8
)

// DefaultTransactionTimeout is the number of ticks without inbound data after
// which a transaction completes. There is no explicit end-of-transaction
// signal: the surrounding system must deliver each inbound word within this
// window or the transaction ends early.
const DefaultTransactionTimeout = 5

const (
	compStateIdle = iota
	compStateBusy
)

// A Comp models the target side of an I2C controller. A transaction begins
// on a start strobe and stays busy as long as inbound words keep arriving
// before the countdown expires. Device-bound words pass through the inbound
// slot; readback bytes published by the host wait in the outbound slot until
// consumed. The acknowledgement input is retimed by one cycle.
type Comp struct {
	*sim.ModelBase

	timeout    int
	sharedSlot bool
	logger     *log.Logger

	edge sim.EdgeDetector

	inSlot  sim.Buffer
	outSlot sim.Buffer

	// Inputs, created by the driver.
	Clk     *sim.Signal
	Stb     *sim.Signal
	InWEn   *sim.Signal
	InWData *sim.Signal
	OutREn  *sim.Signal
	OutStb  *sim.Signal
	OutData *sim.Signal
	AckIn   *sim.Signal

	// Outputs.
	Busy     *sim.Signal
	Ack      *sim.Signal
	InWRdy   *sim.Signal
	OutRRdy  *sim.Signal
	OutRData *sim.Signal

	state          int
	ticksUntilDone int

	taskID string
}

// Reset empties the slots and returns the controller to the idle state.
func (c *Comp) Reset() {
	c.state = compStateIdle
	c.ticksUntilDone = 0
	c.taskID = ""

	c.inSlot.Clear()
	c.outSlot.Clear()

	c.Busy.Set(0)
	c.Ack.Set(1)
	c.InWRdy.Set(1)
	c.OutRRdy.Set(0)
	c.OutRData.Set(0)

	c.edge.Reset(c.Clk.ReadBool())
}

// Eval advances the controller by one clock edge. Inbound capture runs after
// the transaction step, so a consume and a capture on the same edge hand the
// slot over without a dead cycle.
func (c *Comp) Eval() {
	if !c.edge.Rising(c.Clk.ReadBool()) {
		return
	}

	c.Ack.Assign(c.AckIn.Read())

	c.evalOutConsume()
	c.evalOutPublish()

	switch c.state {
	case compStateIdle:
		c.evalStart()
	case compStateBusy:
		c.evalBusy()
	}

	c.evalInCapture()
}

func (c *Comp) evalOutConsume() {
	if !c.OutREn.ReadBool() || c.outSlot.Size() == 0 {
		return
	}

	v := c.outSlot.Pop().(uint16)
	c.OutRRdy.AssignBool(false)

	if c.sharedSlot {
		c.InWRdy.AssignBool(true)
	}

	c.logf("fifo draining %#x", v)
}

func (c *Comp) evalOutPublish() {
	if !c.OutStb.ReadBool() {
		return
	}

	v := uint16(c.OutData.Read())

	// A publish while full replaces the waiting byte.
	if c.outSlot.Size() > 0 {
		c.outSlot.Pop()
	}
	c.outSlot.Push(v)

	c.OutRRdy.AssignBool(true)
	c.OutRData.Assign(uint64(v))

	if c.sharedSlot {
		c.InWRdy.AssignBool(false)
	}

	c.logf("fifo publishing %#x", v)
}

func (c *Comp) evalStart() {
	if !c.Stb.ReadBool() {
		return
	}

	c.Busy.AssignBool(true)
	c.state = compStateBusy
	c.ticksUntilDone = c.timeout

	c.taskID = sim.GetIDGenerator().Generate()
	tracing.StartTask(c.taskID, "", c, "transaction", "transfer", nil)

	c.logf("transaction start")
}

func (c *Comp) evalBusy() {
	if c.inSlot.Size() > 0 {
		v := c.inSlot.Pop().(uint16)

		c.ticksUntilDone = c.timeout
		c.InWRdy.AssignBool(true)

		if c.sharedSlot {
			c.OutRRdy.AssignBool(false)
		}

		tracing.AddTaskStep(c.taskID, c, fmt.Sprintf("consume %#x", v))

		c.logf("fifo reading %#x", v)
	}

	c.ticksUntilDone--
	if c.ticksUntilDone != 0 {
		return
	}

	c.Busy.AssignBool(false)
	c.state = compStateIdle

	tracing.EndTask(c.taskID, c)

	c.logf("transaction done")
}

func (c *Comp) evalInCapture() {
	if c.inSlot.Size() > 0 || !c.InWEn.ReadBool() {
		return
	}

	v := uint16(c.InWData.Read())
	c.inSlot.Push(v)
	c.InWRdy.AssignBool(false)

	if c.sharedSlot {
		c.OutRRdy.AssignBool(true)
		c.OutRData.Assign(uint64(v) & 0xff)
	}

	c.logf("fifo loading %#x", v)
}

// Commit applies the outputs scheduled by Eval.
func (c *Comp) Commit() bool {
	return c.CommitSignals()
}

// Buffers returns the controller's FIFO slots.
func (c *Comp) Buffers() []sim.Buffer {
	if c.sharedSlot {
		return []sim.Buffer{c.inSlot}
	}

	return []sim.Buffer{c.inSlot, c.outSlot}
}

func (c *Comp) logf(format string, args ...any) {
	if c.logger == nil {
		return
	}

	c.logger.Printf(c.Name()+": "+format, args...)
}
