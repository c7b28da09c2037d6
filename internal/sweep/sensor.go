package sweep

import "github.com/lhrsolar/curvetracer/internal/protocol"

// Sampler reads one normalized measurement regardless of the underlying
// transducer.
type Sampler interface {
	Sample() (float64, error)
}

// RegimeAware is implemented by samplers whose calibration depends on
// the sweep regime. The controller applies the regime of each profile
// before the first step.
type RegimeAware interface {
	SetRegime(protocol.Regime)
}

// ControlOutput drives the gate voltage.
type ControlOutput interface {
	Set(volts float64) error
}

// Emitter accepts result jobs for ordered dispatch.
type Emitter interface {
	EmitResult(msgID uint16, mt protocol.MeasurementType, sampleID uint32, value float64) bool
}

// FaultRaiser latches the first fault and halts the node.
type FaultRaiser interface {
	Raise(msgID uint16, code protocol.FaultCode, context uint16)
}

// Indicator drives the scanning light. Optional.
type Indicator interface {
	Scanning(on bool)
}
