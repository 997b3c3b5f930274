package cmd

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/periphsim/analysis"
	"github.com/sarchlab/periphsim/i2ctarget"
	"github.com/sarchlab/periphsim/sim"
	"github.com/sarchlab/periphsim/simulation"
	"github.com/sarchlab/periphsim/spiflash"
	"github.com/sarchlab/periphsim/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scripted exchange against the peripheral models.",
	Long: `Run hosts an I2C target controller, a byte-oriented flash reader ` +
		`and a bit-serial flash device on one clock, drives a power-up, two ` +
		`flash reads and an I2C write transaction against them, then lets ` +
		`the clock free-run for the remaining cycles. Traces go to the ` +
		`output database; busy-time statistics are printed at the end.`,
	Run: func(cmd *cobra.Command, _ []string) {
		r := newRunner(cmd)
		r.run()
		atexit.Exit(0)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("image", "",
		"binary file served as the flash content")
	runCmd.Flags().String("image-base", "0x100000",
		"address of the first image byte")
	runCmd.Flags().Uint64("cycles", 2000,
		"total clock cycles to simulate")
	runCmd.Flags().Float64("freq-mhz", 1,
		"clock frequency of the models in MHz")
	runCmd.Flags().Float64("duration", 0,
		"simulated seconds to cover, overrides --cycles when positive")
	runCmd.Flags().String("trace-db", "",
		"name of the output trace database")
	runCmd.Flags().String("perf-db", "",
		"record signal and buffer activity into this database")
	runCmd.Flags().Float64("perf-period", 0,
		"performance summary period in seconds, 0 summarizes the whole run")
	runCmd.Flags().Bool("monitor", false,
		"serve the monitoring dashboard during the run")
	runCmd.Flags().Int("monitor-port", 0,
		"port of the monitoring dashboard")
	runCmd.Flags().Bool("open-monitor", false,
		"open the monitoring dashboard in a browser")
	runCmd.Flags().Bool("shared-fifo", false,
		"pass both I2C directions through one shared slot")
	runCmd.Flags().Bool("settle-check", true,
		"verify model convergence on every edge")
	runCmd.Flags().Bool("log-signals", false,
		"log every committed signal change to stderr")
	runCmd.Flags().Bool("verbose", false,
		"log I2C slot activity and transaction boundaries")
}

// freeRunChunk is the number of cycles run between progress bar updates.
const freeRunChunk = 1024

type modelStats struct {
	model sim.Model
	busy  *tracing.BusyTimeTracer
	avg   *tracing.AverageTimeTracer
	steps *tracing.StepCountTracer
}

func (st *modelStats) stepTotal() uint64 {
	var total uint64
	for _, name := range st.steps.GetStepNames() {
		total += st.steps.GetStepCount(name)
	}

	return total
}

// A runner owns one scripted simulation run: the simulation, the three
// models, the input signals that drive them and the tracers behind the
// final report.
type runner struct {
	imagePath   string
	imageBase   uint32
	cycles      uint64
	freq        sim.Freq
	traceDB     string
	perfDB      string
	perfPeriod  float64
	monitorOn   bool
	monitorPort int
	openMonitor bool
	sharedFIFO  bool
	settleCheck bool
	logSignals  bool
	verbose     bool

	s      *simulation.Simulation
	engine sim.Engine
	image  *spiflash.Image

	i2c       *i2ctarget.Comp
	i2cStb    *sim.Signal
	i2cInWEn  *sim.Signal
	i2cInWDat *sim.Signal
	i2cOutREn *sim.Signal
	i2cOutStb *sim.Signal
	i2cOutDat *sim.Signal
	i2cAckIn  *sim.Signal

	reader     *spiflash.Reader
	readerStb  *sim.Signal
	readerAddr *sim.Signal
	readerLen  *sim.Signal

	serial     *spiflash.Serial
	serialCs   *sim.Signal
	serialCopi *sim.Signal

	stats []*modelStats
}

func newRunner(cmd *cobra.Command) *runner {
	r := &runner{}
	r.parseFlags(cmd)
	return r
}

func (r *runner) parseFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	r.imagePath, _ = flags.GetString("image")
	r.cycles, _ = flags.GetUint64("cycles")
	r.traceDB, _ = flags.GetString("trace-db")
	r.perfDB, _ = flags.GetString("perf-db")
	r.perfPeriod, _ = flags.GetFloat64("perf-period")
	r.monitorOn, _ = flags.GetBool("monitor")
	r.monitorPort, _ = flags.GetInt("monitor-port")
	r.openMonitor, _ = flags.GetBool("open-monitor")
	r.sharedFIFO, _ = flags.GetBool("shared-fifo")
	r.settleCheck, _ = flags.GetBool("settle-check")
	r.logSignals, _ = flags.GetBool("log-signals")
	r.verbose, _ = flags.GetBool("verbose")

	baseStr, _ := flags.GetString("image-base")
	base, err := strconv.ParseUint(baseStr, 0, spiflash.AddrWidth)
	if err != nil {
		r.fatalf("Error parsing image base %q: %v", baseStr, err)
	}
	r.imageBase = uint32(base)

	freqMHz, _ := flags.GetFloat64("freq-mhz")
	if freqMHz <= 0 {
		r.fatalf("Error: --freq-mhz must be positive")
	}
	r.freq = sim.Freq(freqMHz) * sim.MHz

	if duration, _ := flags.GetFloat64("duration"); duration > 0 {
		r.cycles = r.freq.Cycle(sim.VTimeInSec(duration))
	}

	if r.openMonitor && !r.monitorOn {
		r.fatalf("Error: --open-monitor requires --monitor")
	}
	if r.monitorPort != 0 && !r.monitorOn {
		r.fatalf("Error: --monitor-port requires --monitor")
	}
}

func (r *runner) run() {
	// Sequential task IDs keep repeated runs byte-identical in the trace
	// database.
	sim.UseSequentialIDGenerator()

	r.buildSimulation()
	r.loadImage()
	r.buildModels()
	r.attachSignalLoggers()
	r.attachPerfAnalyzer()
	r.attachStatTracers()

	r.engine.Reset()

	if r.openMonitor {
		r.openDashboard()
	}

	r.drivePowerUpAndRead()
	r.driveBurstRead()
	r.driveI2CTransaction()
	r.freeRun()

	r.printReport()
	r.terminate()
}

func (r *runner) buildSimulation() {
	builder := simulation.MakeBuilder().WithFrequency(r.freq)

	if !r.monitorOn {
		builder = builder.WithoutMonitoring()
	}
	if r.monitorPort > 0 {
		builder = builder.WithMonitorPort(r.monitorPort)
	}
	if r.traceDB != "" {
		builder = builder.WithOutputFileName(r.traceDB)
	}
	if !r.settleCheck {
		builder = builder.WithoutSettleCheck()
	}

	r.s = builder.Build()
	r.engine = r.s.GetEngine()
}

func (r *runner) loadImage() {
	if r.imagePath == "" {
		content := make([]byte, 64)
		for i := range content {
			content[i] = byte(i)
		}
		r.image = spiflash.NewImage(r.imageBase, content)
		return
	}

	img, err := spiflash.LoadImageFile(r.imagePath, r.imageBase)
	if err != nil {
		r.fatalf("Error loading image: %v", err)
	}
	r.image = img
}

func (r *runner) buildModels() {
	clk := r.engine.Clock()

	r.i2cStb = sim.NewSignal("I2C.Stb", 1)
	r.i2cInWEn = sim.NewSignal("I2C.InWEn", 1)
	r.i2cInWDat = sim.NewSignal("I2C.InWData", i2ctarget.InDataWidth)
	r.i2cOutREn = sim.NewSignal("I2C.OutREn", 1)
	r.i2cOutStb = sim.NewSignal("I2C.OutStb", 1)
	r.i2cOutDat = sim.NewSignal("I2C.OutData", i2ctarget.DataWidth)
	r.i2cAckIn = sim.NewSignal("I2C.AckIn", 1)
	r.i2cAckIn.SetBool(true)

	i2cBuilder := i2ctarget.MakeBuilder().
		WithClock(clk).
		WithStrobe(r.i2cStb).
		WithInWEn(r.i2cInWEn).
		WithInWData(r.i2cInWDat).
		WithOutREn(r.i2cOutREn).
		WithOutStb(r.i2cOutStb).
		WithOutData(r.i2cOutDat).
		WithAckIn(r.i2cAckIn)
	if r.sharedFIFO {
		i2cBuilder = i2cBuilder.WithSharedFIFO()
	}
	if r.verbose {
		i2cBuilder = i2cBuilder.WithLogger(log.New(os.Stderr, "", 0))
	}
	r.i2c = i2cBuilder.Build("I2C")

	r.readerStb = sim.NewSignal("FlashReader.Stb", 1)
	r.readerAddr = sim.NewSignal("FlashReader.Addr", spiflash.AddrWidth)
	r.readerLen = sim.NewSignal("FlashReader.Len", spiflash.LenWidth)

	r.reader = spiflash.MakeReaderBuilder().
		WithImage(r.image).
		WithClock(clk).
		WithStrobe(r.readerStb).
		WithAddr(r.readerAddr).
		WithLen(r.readerLen).
		Build("FlashReader")

	r.serialCs = sim.NewSignal("FlashSerial.Cs", 1)
	r.serialCopi = sim.NewSignal("FlashSerial.Copi", 1)

	r.serial = spiflash.MakeSerialBuilder().
		WithImage(r.image).
		WithClock(clk).
		WithChipSelect(r.serialCs).
		WithSerialIn(r.serialCopi).
		Build("FlashSerial")

	r.s.RegisterModel(r.i2c)
	r.s.RegisterModel(r.reader)
	r.s.RegisterModel(r.serial)

	for _, sig := range []*sim.Signal{
		r.i2cStb, r.i2cInWEn, r.i2cInWDat,
		r.i2cOutREn, r.i2cOutStb, r.i2cOutDat, r.i2cAckIn,
		r.readerStb, r.readerAddr, r.readerLen,
		r.serialCs, r.serialCopi,
	} {
		r.s.RegisterSignal(sig)
	}
}

func (r *runner) attachSignalLoggers() {
	if !r.logSignals {
		return
	}

	logger := sim.NewSignalLogger(log.New(os.Stderr, "", 0), r.engine)
	for _, sig := range r.s.Signals() {
		sig.AcceptHook(logger)
	}
}

func (r *runner) attachPerfAnalyzer() {
	if r.perfDB == "" {
		return
	}

	builder := analysis.MakePerfAnalyzerBuilder().
		WithSQLiteBackend().
		WithDBFilename(r.perfDB)
	if r.perfPeriod > 0 {
		builder = builder.WithPeriod(sim.VTimeInSec(r.perfPeriod))
	}

	perfAnalyzer := builder.Build()
	perfAnalyzer.RegisterEngine(r.engine)

	for _, m := range r.s.Models() {
		perfAnalyzer.RegisterModel(m)
	}
}

func (r *runner) attachStatTracers() {
	for _, m := range r.s.Models() {
		st := &modelStats{
			model: m,
			busy:  tracing.NewBusyTimeTracer(r.engine, nil),
			avg:   tracing.NewAverageTimeTracer(r.engine, nil),
			steps: tracing.NewStepCountTracer(nil),
		}

		if hookable, ok := m.(tracing.NamedHookable); ok {
			tracing.CollectTrace(hookable, st.busy)
			tracing.CollectTrace(hookable, st.avg)
			tracing.CollectTrace(hookable, st.steps)
		}

		r.stats = append(r.stats, st)
	}
}

func (r *runner) openDashboard() {
	url := fmt.Sprintf("http://localhost:%d", r.s.GetMonitor().Port())
	if err := browser.OpenURL(url); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
	}
}

// step advances the clock by one cycle and terminates the run on a latched
// engine fault, such as a convergence failure.
func (r *runner) step() {
	if err := r.engine.Step(); err != nil {
		r.fatalf("Simulation stopped: %v", err)
	}
}

func (r *runner) clockSerialBit(selected bool, bit uint64) {
	r.serialCs.SetBool(selected)
	r.serialCopi.Set(bit)
	r.step()
}

func (r *runner) clockSerialByte(selected bool, b byte) {
	for i := 7; i >= 0; i-- {
		r.clockSerialBit(selected, uint64(b>>i&1))
	}
}

// drivePowerUpAndRead wakes the bit-serial flash, deselects it once as the
// power-up sequence requires, then shifts in a read command and collects the
// byte stream. The first output bit rides the edge that completes the
// command.
func (r *runner) drivePowerUpAndRead() {
	const readBytes = 8

	r.clockSerialByte(true, spiflash.OpcodeReleasePowerDown)
	r.clockSerialBit(false, 0)

	r.clockSerialByte(true, spiflash.OpcodeRead)
	r.clockSerialByte(true, byte(r.imageBase>>16))
	r.clockSerialByte(true, byte(r.imageBase>>8))
	r.clockSerialByte(true, byte(r.imageBase))

	var data []byte
	var cur byte
	for i := 0; i < readBytes*8; i++ {
		if i > 0 {
			r.clockSerialBit(true, 0)
		}
		cur = cur<<1 | byte(r.serial.Cipo.Read())
		if i%8 == 7 {
			data = append(data, cur)
			cur = 0
		}
	}
	r.clockSerialBit(false, 0)

	fmt.Fprintf(os.Stderr, "Bit-serial read at %#x: % x\n", r.imageBase, data)
}

// driveBurstRead strobes a read request into the byte-oriented reader and
// collects the valid pulses until the device goes idle.
func (r *runner) driveBurstRead() {
	const readBytes = 8

	r.readerAddr.Set(uint64(r.imageBase))
	r.readerLen.Set(readBytes)
	r.readerStb.SetBool(true)
	r.step()
	r.readerStb.SetBool(false)

	maxTicks := (readBytes + 2) * spiflash.DefaultInterByteDelay

	var data []byte
	for tick := 0; r.reader.Busy.ReadBool(); tick++ {
		if tick > maxTicks {
			r.fatalf("Error: flash reader did not finish in %d ticks", maxTicks)
		}

		r.step()
		if r.reader.Valid.ReadBool() {
			data = append(data, byte(r.reader.Data.Read()))
		}
	}

	fmt.Fprintf(os.Stderr, "Burst read at %#x: % x\n", r.imageBase, data)
}

// driveI2CTransaction starts a transaction, feeds a short device-bound write
// with the last word marked and lets the countdown expire. The readback byte
// is exchanged afterwards; with a shared slot a publish during the
// transaction would be taken for inbound data.
func (r *runner) driveI2CTransaction() {
	payload := []byte{0xa2, 0x00, 0x10}

	r.i2cStb.SetBool(true)
	r.step()
	r.i2cStb.SetBool(false)

	for i, b := range payload {
		word := uint64(b)
		if i == len(payload)-1 {
			// Bit 8 marks the closing byte of the write.
			word |= 1 << 8
		}

		r.i2cInWDat.Set(word)
		r.i2cInWEn.SetBool(true)
		r.step()
		r.i2cInWEn.SetBool(false)
	}

	for tick := 0; r.i2c.Busy.ReadBool(); tick++ {
		if tick > i2ctarget.DefaultTransactionTimeout {
			r.fatalf("Error: I2C transaction did not complete")
		}
		r.step()
	}

	r.i2cOutDat.Set(0x5a)
	r.i2cOutStb.SetBool(true)
	r.step()
	r.i2cOutStb.SetBool(false)

	readback := byte(r.i2c.OutRData.Read())

	r.i2cOutREn.SetBool(true)
	r.step()
	r.i2cOutREn.SetBool(false)

	fmt.Fprintf(os.Stderr,
		"I2C transaction wrote % x, read back %#x\n", payload, readback)
}

// freeRun spends the remaining requested cycles with no stimulus, so idle
// behavior shows up in the traces and the monitor stays responsive.
func (r *runner) freeRun() {
	current := r.engine.CurrentCycle()
	if current >= r.cycles {
		return
	}
	remaining := r.cycles - current

	monitor := r.s.GetMonitor()
	if monitor == nil {
		if err := r.engine.Run(remaining); err != nil {
			r.fatalf("Simulation stopped: %v", err)
		}
		return
	}

	bar := monitor.CreateProgressBar("Free run", remaining)
	for done := uint64(0); done < remaining; {
		n := uint64(freeRunChunk)
		if remaining-done < n {
			n = remaining - done
		}

		bar.IncrementInProgress(n)
		if err := r.engine.Run(n); err != nil {
			r.fatalf("Simulation stopped: %v", err)
		}
		bar.MoveInProgressToFinished(n)

		done += n
	}
	monitor.CompleteProgressBar(bar)
}

func (r *runner) printReport() {
	now := r.engine.CurrentTime()

	fmt.Printf("Simulated %d cycles, %.9f s\n", r.engine.CurrentCycle(), now)
	fmt.Printf("%-14s %16s %7s %7s %7s %16s\n",
		"Model", "BusyTime", "Busy", "Tasks", "Steps", "AvgTask")

	for _, st := range r.stats {
		st.busy.TerminateAllTasks(now)

		busy := st.busy.BusyTime()
		share := 0.0
		if now > 0 {
			share = float64(busy/now) * 100
		}

		fmt.Printf("%-14s %16.9f %6.1f%% %7d %7d %16.9f\n",
			st.model.Name(), float64(busy), share,
			st.avg.TotalCount(), st.stepTotal(), float64(st.avg.AverageTime()))
	}
}

func (r *runner) terminate() {
	r.engine.Finished()
	r.s.GetVisTracer().Terminate()
	r.s.Terminate()
}

// fatalf reports a fatal condition and exits through the registered exit
// handlers, so that recorded data is flushed before the process dies.
func (r *runner) fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	atexit.Exit(1)
}
