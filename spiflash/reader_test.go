package spiflash

import (
	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/periphsim/sim"
	"github.com/sarchlab/periphsim/tracing"
)

var _ = ginkgo.Describe("Reader", func() {
	var (
		engine *sim.SerialEngine
		img    *Image
		stb    *sim.Signal
		addr   *sim.Signal
		length *sim.Signal
		reader *Reader
	)

	ginkgo.BeforeEach(func() {
		engine = sim.NewSerialEngine(1 * sim.MHz)

		content := make([]byte, 16)
		for i := range content {
			content[i] = byte(i)
		}
		img = NewImage(0x100000, content)

		stb = sim.NewSignal("Stb", 1)
		addr = sim.NewSignal("Addr", AddrWidth)
		length = sim.NewSignal("Len", LenWidth)

		reader = MakeReaderBuilder().
			WithImage(img).
			WithClock(engine.Clock()).
			WithStrobe(stb).
			WithAddr(addr).
			WithLen(length).
			Build("Reader")

		engine.RegisterModel(reader)
		engine.Reset()
	})

	request := func(a uint32, n uint16) {
		addr.Set(uint64(a))
		length.Set(uint64(n))
		stb.SetBool(true)
		ExpectWithOffset(1, engine.Step()).To(Succeed())
		stb.SetBool(false)
	}

	ginkgo.It("should panic without the required inputs", func() {
		Expect(func() {
			MakeReaderBuilder().WithImage(img).Build("Bad")
		}).To(Panic())
	})

	ginkgo.It("should stay idle with no strobe", func() {
		for i := 0; i < 20; i++ {
			Expect(engine.Step()).To(Succeed())
			Expect(reader.Busy.ReadBool()).To(BeFalse())
			Expect(reader.Valid.ReadBool()).To(BeFalse())
			Expect(reader.Data.Read()).To(Equal(uint64(0)))
		}
	})

	ginkgo.It("should emit the requested bytes with fixed pacing", func() {
		request(0x100000, 4)

		Expect(reader.Busy.ReadBool()).To(BeTrue())

		var data []byte
		var pulses []int
		for tick := 1; tick <= 12; tick++ {
			Expect(engine.Step()).To(Succeed())
			if reader.Valid.ReadBool() {
				pulses = append(pulses, tick)
				data = append(data, byte(reader.Data.Read()))
			}
		}

		Expect(data).To(Equal([]byte{0x00, 0x01, 0x02, 0x03}))
		Expect(pulses).To(Equal([]int{2, 4, 6, 8}))
	})

	ginkgo.It("should deassert busy when the re-armed countdown completes", func() {
		request(0x100000, 1)

		// Byte at tick 2, then one full inter-byte delay before busy falls.
		Expect(engine.Step()).To(Succeed())
		Expect(engine.Step()).To(Succeed())
		Expect(reader.Valid.ReadBool()).To(BeTrue())
		Expect(reader.Busy.ReadBool()).To(BeTrue())

		Expect(engine.Step()).To(Succeed())
		Expect(reader.Busy.ReadBool()).To(BeTrue())

		Expect(engine.Step()).To(Succeed())
		Expect(reader.Busy.ReadBool()).To(BeFalse())
	})

	ginkgo.It("should ignore requests outside the window", func() {
		request(0x200000, 4)

		for i := 0; i < 12; i++ {
			Expect(engine.Step()).To(Succeed())
			Expect(reader.Busy.ReadBool()).To(BeFalse())
			Expect(reader.Valid.ReadBool()).To(BeFalse())
		}
	})

	ginkgo.It("should fill bytes past the window end during a burst", func() {
		request(0x10000e, 4)

		var data []byte
		for tick := 1; tick <= 10; tick++ {
			Expect(engine.Step()).To(Succeed())
			if reader.Valid.ReadBool() {
				data = append(data, byte(reader.Data.Read()))
			}
		}

		Expect(data).To(Equal([]byte{0x0e, 0x0f, 0xff, 0xff}))
	})

	ginkgo.It("should complete a zero-length request without a pulse", func() {
		request(0x100000, 0)

		Expect(reader.Busy.ReadBool()).To(BeTrue())

		Expect(engine.Step()).To(Succeed())
		Expect(reader.Valid.ReadBool()).To(BeFalse())

		Expect(engine.Step()).To(Succeed())
		Expect(reader.Valid.ReadBool()).To(BeFalse())
		Expect(reader.Busy.ReadBool()).To(BeFalse())
	})

	ginkgo.It("should honor a custom inter-byte delay", func() {
		stb = sim.NewSignal("Stb", 1)
		r := MakeReaderBuilder().
			WithImage(img).
			WithInterByteDelay(3).
			WithClock(engine.Clock()).
			WithStrobe(stb).
			WithAddr(addr).
			WithLen(length).
			Build("SlowReader")
		engine.RegisterModel(r)
		engine.Reset()

		addr.Set(0x100000)
		length.Set(2)
		stb.SetBool(true)
		Expect(engine.Step()).To(Succeed())
		stb.SetBool(false)

		var pulses []int
		for tick := 1; tick <= 9; tick++ {
			Expect(engine.Step()).To(Succeed())
			if r.Valid.ReadBool() {
				pulses = append(pulses, tick)
			}
		}

		Expect(pulses).To(Equal([]int{3, 6}))
	})

	ginkgo.It("should trace one task per accepted burst", func() {
		r := &hookRecorder{}
		reader.AcceptHook(r)

		request(0x100000, 2)
		for i := 0; i < 8; i++ {
			Expect(engine.Step()).To(Succeed())
		}

		Expect(r.records).To(HaveLen(2))

		Expect(r.records[0].Pos).To(BeIdenticalTo(tracing.HookPosTaskStart))
		start := r.records[0].Item.(tracing.Task)
		Expect(start.Kind).To(Equal("read"))
		Expect(start.What).To(Equal("burst"))
		Expect(start.Detail).To(Equal(ReadBurst{Addr: 0x100000, Len: 2}))

		Expect(r.records[1].Pos).To(BeIdenticalTo(tracing.HookPosTaskEnd))
		end := r.records[1].Item.(tracing.Task)
		Expect(end.ID).To(Equal(start.ID))
	})
})
