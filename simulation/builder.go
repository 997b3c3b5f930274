// Package simulation assembles the engine, data recorder, tracer and
// monitor of one simulation run and keeps a registry of the participating
// models and signals.
package simulation

import (
	"github.com/rs/xid"
	"github.com/sarchlab/periphsim/datarecording"
	"github.com/sarchlab/periphsim/monitoring"
	"github.com/sarchlab/periphsim/sim"
	"github.com/sarchlab/periphsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	freq           sim.Freq
	settleCheck    bool
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		settleCheck: true,
		monitorOn:   true,
	}
}

// WithFrequency sets the clock frequency of the engine.
func (b Builder) WithFrequency(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithoutSettleCheck disables the re-evaluation pass that verifies model
// convergence on every edge.
func (b Builder) WithoutSettleCheck() Builder {
	b.settleCheck = false
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		modelNameIndex:  make(map[string]int),
		signalNameIndex: make(map[string]int),
	}

	s.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "periphsim_" + s.id
	}
	s.dataRecorder = datarecording.NewDataRecorder(outputPath)

	engine := sim.NewSerialEngine(b.freq)
	if !b.settleCheck {
		engine.DisableSettleCheck()
	}
	s.engine = engine

	s.visTracer = tracing.NewDBTracer(s.engine, s.dataRecorder)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterEngine(s.engine)
		s.monitor.StartServer()
	}

	return s
}
