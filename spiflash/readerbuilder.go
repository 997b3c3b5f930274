package spiflash

import (
	"log"

	"github.com/sarchlab/periphsim/sim"
)

// ReaderBuilder can build byte-oriented flash readers.
type ReaderBuilder struct {
	image          *Image
	interByteDelay int
	clk            *sim.Signal
	stb            *sim.Signal
	addr           *sim.Signal
	length         *sim.Signal
}

// MakeReaderBuilder returns a new ReaderBuilder.
func MakeReaderBuilder() ReaderBuilder {
	return ReaderBuilder{
		interByteDelay: DefaultInterByteDelay,
	}
}

// WithImage sets the flash image the reader serves.
func (b ReaderBuilder) WithImage(image *Image) ReaderBuilder {
	b.image = image
	return b
}

// WithInterByteDelay sets the number of ticks between emitted bytes.
func (b ReaderBuilder) WithInterByteDelay(ticks int) ReaderBuilder {
	b.interByteDelay = ticks
	return b
}

// WithClock sets the clock signal the reader samples for edges.
func (b ReaderBuilder) WithClock(clk *sim.Signal) ReaderBuilder {
	b.clk = clk
	return b
}

// WithStrobe sets the request strobe input.
func (b ReaderBuilder) WithStrobe(stb *sim.Signal) ReaderBuilder {
	b.stb = stb
	return b
}

// WithAddr sets the request address input.
func (b ReaderBuilder) WithAddr(addr *sim.Signal) ReaderBuilder {
	b.addr = addr
	return b
}

// WithLen sets the request byte-count input.
func (b ReaderBuilder) WithLen(length *sim.Signal) ReaderBuilder {
	b.length = length
	return b
}

func (b ReaderBuilder) parametersMustBeValid() {
	if b.image == nil {
		log.Panic("reader requires a flash image")
	}

	if b.clk == nil || b.stb == nil || b.addr == nil || b.length == nil {
		log.Panic("reader requires clock, strobe, address and length inputs")
	}

	if b.interByteDelay < 1 {
		log.Panic("inter-byte delay must be at least 1 tick")
	}
}

// Build creates a Reader with the given name.
func (b ReaderBuilder) Build(name string) *Reader {
	b.parametersMustBeValid()

	r := &Reader{
		ModelBase:      sim.NewModelBase(name),
		image:          b.image,
		interByteDelay: b.interByteDelay,
		Clk:            b.clk,
		Stb:            b.stb,
		Addr:           b.addr,
		Len:            b.length,
	}

	r.Busy = r.NewSignal("Busy", 1)
	r.Data = r.NewSignal("Data", DataWidth)
	r.Valid = r.NewSignal("Valid", 1)

	return r
}
