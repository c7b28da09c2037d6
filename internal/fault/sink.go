// Package fault implements the node's global fault latch. Any invariant
// violation is fatal: the first fault is recorded, reported once, and
// the whole process transitions to a terminal halt.
package fault

import (
	"context"
	"sync"

	"github.com/lhrsolar/curvetracer/internal/logger"
	"github.com/lhrsolar/curvetracer/internal/protocol"
)

// Record is the single fault a node can carry. Created once, never
// cleared.
type Record struct {
	MsgID   uint16
	Code    protocol.FaultCode
	Context uint16
}

// Emitter queues the outbound fault record.
type Emitter interface {
	EmitFault(msgID uint16, code protocol.FaultCode, context uint16) bool
}

// Disarmer stops the sweep engine from taking further steps.
type Disarmer interface {
	Disarm()
}

// Indicator asserts the fault light. Optional.
type Indicator interface {
	Fault(on bool)
}

// Sink latches the first fault and drives the halt: the sweep is
// disarmed, one fault record is emitted, the indicator is asserted and
// the supervisor context is canceled so every task winds down.
type Sink struct {
	once      sync.Once
	mu        sync.Mutex
	record    *Record
	emitter   Emitter
	disarmer  Disarmer
	indicator Indicator
	halt      context.CancelFunc
}

// NewSink wires the latch to its collaborators. halt is the supervisor
// context's cancel function.
func NewSink(emitter Emitter, disarmer Disarmer, indicator Indicator, halt context.CancelFunc) *Sink {
	return &Sink{emitter: emitter, disarmer: disarmer, indicator: indicator, halt: halt}
}

// Raise latches a fault. The first call wins; every later call is a
// no-op.
func (s *Sink) Raise(msgID uint16, code protocol.FaultCode, context uint16) {
	s.once.Do(func() {
		rec := &Record{MsgID: msgID, Code: code, Context: context}
		s.mu.Lock()
		s.record = rec
		s.mu.Unlock()

		logger.Error().
			Uint16("msg_id", msgID).
			Str("code", code.String()).
			Uint16("context", context).
			Msg("Fault latched, halting")

		if s.disarmer != nil {
			s.disarmer.Disarm()
		}
		if s.emitter != nil {
			s.emitter.EmitFault(msgID, code, context)
		}
		if s.indicator != nil {
			s.indicator.Fault(true)
		}
		if s.halt != nil {
			s.halt()
		}
	})
}

// Fault returns the latched record, or nil while the node is healthy.
func (s *Sink) Fault() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.record
}

// Halted reports whether a fault has latched.
func (s *Sink) Halted() bool { return s.Fault() != nil }
