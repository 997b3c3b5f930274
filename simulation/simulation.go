package simulation

import (
	"github.com/sarchlab/periphsim/datarecording"
	"github.com/sarchlab/periphsim/monitoring"
	"github.com/sarchlab/periphsim/sim"
	"github.com/sarchlab/periphsim/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id string

	engine sim.Engine

	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	visTracer    *tracing.DBTracer

	models          []sim.Model
	modelNameIndex  map[string]int
	signals         []*sim.Signal
	signalNameIndex map[string]int
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It returns nil if
// the simulation was built without monitoring.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetVisTracer returns the tracer used in the simulation.
func (s *Simulation) GetVisTracer() *tracing.DBTracer {
	return s.visTracer
}

// RegisterModel registers a model with the simulation. The model is driven
// by the engine, watched by the monitor and traced into the output database.
func (s *Simulation) RegisterModel(m sim.Model) {
	modelName := m.Name()
	if _, found := s.modelNameIndex[modelName]; found {
		panic("model " + modelName + " already registered")
	}

	s.models = append(s.models, m)
	s.modelNameIndex[modelName] = len(s.models) - 1

	for _, sig := range m.Signals() {
		s.RegisterSignal(sig)
	}

	s.engine.RegisterModel(m)

	if s.monitor != nil {
		s.monitor.RegisterModel(m)
	}

	if hookable, ok := m.(tracing.NamedHookable); ok {
		tracing.CollectTrace(hookable, s.visTracer)
	}
}

// RegisterSignal registers a signal with the simulation, so that it can be
// looked up by name. Signals owned by registered models are registered
// automatically; externally created input signals can be added here.
func (s *Simulation) RegisterSignal(sig *sim.Signal) {
	signalName := sig.Name()
	if _, found := s.signalNameIndex[signalName]; found {
		panic("signal " + signalName + " already registered")
	}

	s.signals = append(s.signals, sig)
	s.signalNameIndex[signalName] = len(s.signals) - 1
}

// Models returns all the models registered with the simulation.
func (s *Simulation) Models() []sim.Model {
	return s.models
}

// Signals returns all the signals registered with the simulation.
func (s *Simulation) Signals() []*sim.Signal {
	return s.signals
}

// GetModelByName returns the model with the given name, or nil if no model
// with the name is registered.
func (s *Simulation) GetModelByName(name string) sim.Model {
	index, found := s.modelNameIndex[name]
	if !found {
		return nil
	}

	return s.models[index]
}

// GetSignalByName returns the signal with the given name, or nil if no
// signal with the name is registered.
func (s *Simulation) GetSignalByName(name string) *sim.Signal {
	index, found := s.signalNameIndex[name]
	if !found {
		return nil
	}

	return s.signals[index]
}

// Terminate terminates the simulation.
func (s *Simulation) Terminate() {
	s.dataRecorder.Close()
}
