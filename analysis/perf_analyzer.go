// Package analysis provides tools that monitor signal activity and buffer
// occupancy during a simulation and report periodized summaries.
package analysis

import (
	"log"

	"github.com/sarchlab/periphsim/sim"
)

// PerfAnalyzerEntry is a single summarized measurement.
type PerfAnalyzerEntry struct {
	Start     sim.VTimeInSec
	End       sim.VTimeInSec
	Where     string
	What      string
	EntryType string
	Value     float64
	Unit      string
}

// PerfLogger is the interface that provides the service that can record
// performance data entries.
type PerfLogger interface {
	AddDataEntry(entry PerfAnalyzerEntry)
}

// A BufferHolder is a model that exposes its internal buffers for
// inspection.
type BufferHolder interface {
	Buffers() []sim.Buffer
}

// PerfAnalyzer attaches analyzers to signals and buffers and forwards their
// summaries to a backend.
type PerfAnalyzer struct {
	backend PerfAnalyzerBackend
	engine  sim.Engine

	usePeriod bool
	period    sim.VTimeInSec
}

// RegisterEngine registers the engine that provides the time for the
// analyzers.
func (p *PerfAnalyzer) RegisterEngine(e sim.Engine) {
	p.engine = e
}

// RegisterModel registers a model to be monitored. All the signals the model
// drives are watched for activity. If the model exposes buffers, their
// levels are watched as well.
func (p *PerfAnalyzer) RegisterModel(m sim.Model) {
	for _, s := range m.Signals() {
		p.RegisterSignal(s)
	}

	holder, ok := m.(BufferHolder)
	if !ok {
		return
	}

	for _, buf := range holder.Buffers() {
		p.RegisterBuffer(buf)
	}
}

// RegisterSignal registers a signal to be monitored for activity.
func (p *PerfAnalyzer) RegisterSignal(s *sim.Signal) {
	signalAnalyzerBuilder := MakeSignalAnalyzerBuilder().
		WithTimeTeller(p.engine).
		WithPerfLogger(p).
		WithSignal(s)

	if p.usePeriod {
		signalAnalyzerBuilder = signalAnalyzerBuilder.WithPeriod(p.period)
	}

	signalAnalyzer := signalAnalyzerBuilder.Build()

	s.AcceptHook(signalAnalyzer)
}

// RegisterBuffer registers a buffer to be monitored for occupancy.
func (p *PerfAnalyzer) RegisterBuffer(buf sim.Buffer) {
	bufferAnalyzerBuilder := MakeBufferAnalyzerBuilder().
		WithTimeTeller(p.engine).
		WithPerfLogger(p).
		WithBuffer(buf)

	if p.usePeriod {
		bufferAnalyzerBuilder = bufferAnalyzerBuilder.WithPeriod(p.period)
	}

	bufferAnalyzer := bufferAnalyzerBuilder.Build()

	buf.AcceptHook(bufferAnalyzer)
}

// AddDataEntry forwards an entry to the backend.
func (p *PerfAnalyzer) AddDataEntry(entry PerfAnalyzerEntry) {
	p.backend.AddDataEntry(entry)
}

// PerfAnalyzerBuilder can build PerfAnalyzers.
type PerfAnalyzerBuilder struct {
	usePeriod   bool
	period      sim.VTimeInSec
	dbFilename  string
	backendType string
}

// MakePerfAnalyzerBuilder creates a PerfAnalyzerBuilder that writes CSV
// files named perf by default.
func MakePerfAnalyzerBuilder() PerfAnalyzerBuilder {
	return PerfAnalyzerBuilder{
		dbFilename:  "perf",
		backendType: "csv",
	}
}

// WithPeriod sets the period of the PerfAnalyzer, so that the analyzer
// reports one summary per period rather than one for the whole run.
func (b PerfAnalyzerBuilder) WithPeriod(
	period sim.VTimeInSec,
) PerfAnalyzerBuilder {
	b.usePeriod = true
	b.period = period
	return b
}

// WithSQLiteBackend sets the backend of the PerfAnalyzer to write to a
// SQLite database instead of a CSV file.
func (b PerfAnalyzerBuilder) WithSQLiteBackend() PerfAnalyzerBuilder {
	b.backendType = "sqlite"
	return b
}

// WithDBFilename sets the filename of the output. The backend appends the
// suffix that matches its format.
func (b PerfAnalyzerBuilder) WithDBFilename(filename string) PerfAnalyzerBuilder {
	b.dbFilename = filename
	return b
}

// Build creates a PerfAnalyzer.
func (b PerfAnalyzerBuilder) Build() *PerfAnalyzer {
	var backend PerfAnalyzerBackend

	switch b.backendType {
	case "csv":
		backend = NewCSVPerfAnalyzerBackend(b.dbFilename)
	case "sqlite":
		backend = NewSQLitePerfAnalyzerBackend(b.dbFilename)
	default:
		log.Panicf("unknown perf analyzer backend %s", b.backendType)
	}

	return &PerfAnalyzer{
		usePeriod: b.usePeriod,
		period:    b.period,
		backend:   backend,
	}
}
