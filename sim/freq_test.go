package sim

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		Expect((1 * GHz).Period()).To(BeNumerically("==", 1e-9))
		Expect((1 * MHz).Period()).To(BeNumerically("==", 1e-6))
	})

	It("should panic on period of zero frequency", func() {
		var f Freq
		Expect(func() { f.Period() }).To(Panic())
	})

	It("should convert time to cycles", func() {
		f := 1 * MHz
		Expect(f.Cycle(1e-6)).To(Equal(uint64(1)))
		Expect(f.Cycle(1.5e-3)).To(Equal(uint64(1500)))
	})

	It("should absorb rounding error near a cycle boundary", func() {
		f := 1 * GHz
		Expect(f.Cycle(15 * f.Period())).To(Equal(uint64(15)))
	})

	It("should panic on an invalid time", func() {
		f := 1 * MHz
		Expect(func() { f.Cycle(VTimeInSec(math.NaN())) }).To(Panic())
		Expect(func() { f.Cycle(-1) }).To(Panic())
	})
})
