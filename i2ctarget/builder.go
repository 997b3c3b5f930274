package i2ctarget

import (
	"log"

	"github.com/sarchlab/periphsim/sim"
)

// A Builder can build I2C target controllers.
type Builder struct {
	timeout    int
	sharedSlot bool
	logger     *log.Logger

	clk     *sim.Signal
	stb     *sim.Signal
	inWEn   *sim.Signal
	inWData *sim.Signal
	outREn  *sim.Signal
	outStb  *sim.Signal
	outData *sim.Signal
	ackIn   *sim.Signal
}

// MakeBuilder returns a new Builder with the default transaction timeout.
func MakeBuilder() Builder {
	return Builder{
		timeout: DefaultTransactionTimeout,
	}
}

// WithTimeout sets the number of ticks without inbound data after which a
// transaction completes.
func (b Builder) WithTimeout(ticks int) Builder {
	b.timeout = ticks
	return b
}

// WithSharedFIFO makes the controller pass both directions through one
// shared slot instead of independent inbound and outbound slots.
func (b Builder) WithSharedFIFO() Builder {
	b.sharedSlot = true
	return b
}

// WithLogger enables diagnostic logging of slot activity and transaction
// boundaries. A nil logger keeps the controller silent.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithClock sets the clock signal the controller samples for edges.
func (b Builder) WithClock(clk *sim.Signal) Builder {
	b.clk = clk
	return b
}

// WithStrobe sets the transaction start strobe input.
func (b Builder) WithStrobe(stb *sim.Signal) Builder {
	b.stb = stb
	return b
}

// WithInWEn sets the inbound write enable input.
func (b Builder) WithInWEn(inWEn *sim.Signal) Builder {
	b.inWEn = inWEn
	return b
}

// WithInWData sets the inbound write data input.
func (b Builder) WithInWData(inWData *sim.Signal) Builder {
	b.inWData = inWData
	return b
}

// WithOutREn sets the outbound read enable input.
func (b Builder) WithOutREn(outREn *sim.Signal) Builder {
	b.outREn = outREn
	return b
}

// WithOutStb sets the outbound publish strobe input.
func (b Builder) WithOutStb(outStb *sim.Signal) Builder {
	b.outStb = outStb
	return b
}

// WithOutData sets the outbound publish data input.
func (b Builder) WithOutData(outData *sim.Signal) Builder {
	b.outData = outData
	return b
}

// WithAckIn sets the externally supplied acknowledgement input.
func (b Builder) WithAckIn(ackIn *sim.Signal) Builder {
	b.ackIn = ackIn
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.clk == nil || b.stb == nil {
		log.Panic("controller requires clock and start strobe inputs")
	}

	if b.inWEn == nil || b.inWData == nil {
		log.Panic("controller requires inbound write enable and data inputs")
	}

	if b.outREn == nil || b.outStb == nil || b.outData == nil {
		log.Panic(
			"controller requires outbound read enable, publish strobe and data inputs")
	}

	if b.ackIn == nil {
		log.Panic("controller requires an acknowledgement input")
	}

	if b.timeout < 1 {
		log.Panic("transaction timeout must be at least 1 tick")
	}
}

// Build creates a Comp with the given name.
func (b Builder) Build(name string) *Comp {
	b.parametersMustBeValid()

	c := &Comp{
		ModelBase:  sim.NewModelBase(name),
		timeout:    b.timeout,
		sharedSlot: b.sharedSlot,
		logger:     b.logger,
		Clk:        b.clk,
		Stb:        b.stb,
		InWEn:      b.inWEn,
		InWData:    b.inWData,
		OutREn:     b.outREn,
		OutStb:     b.outStb,
		OutData:    b.outData,
		AckIn:      b.ackIn,
	}

	if b.sharedSlot {
		slot := sim.NewBuffer(sim.BuildName(name, "Slot"), 1)
		c.inSlot = slot
		c.outSlot = slot
	} else {
		c.inSlot = sim.NewBuffer(sim.BuildName(name, "InSlot"), 1)
		c.outSlot = sim.NewBuffer(sim.BuildName(name, "OutSlot"), 1)
	}

	c.Busy = c.NewSignal("Busy", 1)
	c.Ack = c.NewSignal("Ack", 1)
	c.InWRdy = c.NewSignal("InWRdy", 1)
	c.OutRRdy = c.NewSignal("OutRRdy", 1)
	c.OutRData = c.NewSignal("OutRData", DataWidth)

	return c
}
