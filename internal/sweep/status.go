// Package sweep executes armed profiles: it steps the control output
// across the configured voltage range and samples the sensors at each
// step.
package sweep

import "sync/atomic"

// Status publishes sweep activity to the other tasks. The controller is
// the only writer; the poll task reads it to gate external measurement
// frames, and the fault sink clears it on halt.
type Status struct {
	running  atomic.Bool
	sampleID atomic.Uint32
}

// Running reports whether a sweep is in flight.
func (s *Status) Running() bool { return s.running.Load() }

// SampleID returns the step index the controller is currently on.
func (s *Status) SampleID() uint32 { return s.sampleID.Load() }

// Disarm forces the sweep inactive. Called by the fault sink so no
// further steps are attempted once a fault latches.
func (s *Status) Disarm() { s.running.Store(false) }

func (s *Status) start()         { s.sampleID.Store(0); s.running.Store(true) }
func (s *Status) step(id uint32) { s.sampleID.Store(id) }
func (s *Status) finish()        { s.running.Store(false) }
