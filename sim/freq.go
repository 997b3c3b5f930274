package sim

import (
	"log"
	"math"
)

// VTimeInSec is simulated time in seconds.
type VTimeInSec float64

// Freq is a clock frequency in Hz.
type Freq float64

// Frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the duration of one clock cycle.
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// Cycle converts a time to a number of cycles, rounding to the nearest
// cycle boundary.
func (f Freq) Cycle(time VTimeInSec) uint64 {
	if math.IsNaN(float64(time)) || time < 0 {
		log.Panic("invalid time")
	}

	return uint64(math.Round(float64(time) * float64(f)))
}
