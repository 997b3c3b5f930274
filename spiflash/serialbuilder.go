package spiflash

import (
	"log"

	"github.com/sarchlab/periphsim/sim"
)

// SerialBuilder can build bit-serial flash models.
type SerialBuilder struct {
	image *Image
	clk   *sim.Signal
	cs    *sim.Signal
	copi  *sim.Signal
}

// MakeSerialBuilder returns a new SerialBuilder.
func MakeSerialBuilder() SerialBuilder {
	return SerialBuilder{}
}

// WithImage sets the flash image the device serves.
func (b SerialBuilder) WithImage(image *Image) SerialBuilder {
	b.image = image
	return b
}

// WithClock sets the clock signal the device samples for edges.
func (b SerialBuilder) WithClock(clk *sim.Signal) SerialBuilder {
	b.clk = clk
	return b
}

// WithChipSelect sets the chip-select input.
func (b SerialBuilder) WithChipSelect(cs *sim.Signal) SerialBuilder {
	b.cs = cs
	return b
}

// WithSerialIn sets the serial data input.
func (b SerialBuilder) WithSerialIn(copi *sim.Signal) SerialBuilder {
	b.copi = copi
	return b
}

func (b SerialBuilder) parametersMustBeValid() {
	if b.image == nil {
		log.Panic("serial flash requires a flash image")
	}

	if b.clk == nil || b.cs == nil || b.copi == nil {
		log.Panic("serial flash requires clock, chip-select and serial-in inputs")
	}
}

// Build creates a Serial with the given name.
func (b SerialBuilder) Build(name string) *Serial {
	b.parametersMustBeValid()

	s := &Serial{
		ModelBase: sim.NewModelBase(name),
		image:     b.image,
		Clk:       b.clk,
		Cs:        b.cs,
		Copi:      b.copi,
	}

	s.Cipo = s.NewSignal("Cipo", 1)

	return s
}
