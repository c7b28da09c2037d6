package canbus

import (
	"github.com/lhrsolar/curvetracer/internal/logger"
	"github.com/lhrsolar/curvetracer/internal/protocol"
)

// SweepStatus exposes the sweep activity the gateway gates on.
type SweepStatus interface {
	Running() bool
	SampleID() uint32
}

// Emitter accepts result jobs for ordered dispatch.
type Emitter interface {
	EmitResult(msgID uint16, mt protocol.MeasurementType, sampleID uint32, value float64) bool
}

// FaultRaiser latches the first fault and halts the node.
type FaultRaiser interface {
	Raise(msgID uint16, code protocol.FaultCode, context uint16)
}

// Gateway dispatches inbound sensor-network frames. Temperature and
// irradiance measurements are folded into the running sweep's results;
// a neighbor's fault frame halts this node too.
type Gateway struct {
	bus     Bus
	emitter Emitter
	faults  FaultRaiser
	status  SweepStatus
}

// NewGateway creates an inbound dispatcher over the given bus.
func NewGateway(bus Bus, emitter Emitter, faults FaultRaiser, status SweepStatus) *Gateway {
	return &Gateway{bus: bus, emitter: emitter, faults: faults, status: status}
}

// Tick reads at most one pending frame and dispatches it by id.
func (g *Gateway) Tick() {
	frame, ok, err := g.bus.Receive()
	if err != nil {
		logger.Error().Err(err).Msg("CAN receive failed")
		return
	}
	if !ok {
		return
	}

	switch frame.ID {
	case protocol.MsgTemperatureMeas:
		g.measurement(protocol.MeasureTemperature, frame)
	case protocol.MsgIrradiance1Meas, protocol.MsgIrradiance2Meas:
		g.measurement(protocol.MeasureIrradiance, frame)
	case protocol.MsgSensorFault:
		payload := frame.Payload()
		code, context := protocol.FaultUnknown, uint16(0)
		if len(payload) > 0 {
			code = protocol.FaultCode(payload[0])
		}
		if len(payload) > 1 {
			context = uint16(payload[1])
		}
		g.faults.Raise(protocol.MsgSweepFault, code, context)
	default:
		// Includes the enable/disable id, which is never addressed to
		// this node.
		g.faults.Raise(protocol.MsgSweepFault, protocol.FaultUnexpectedMsgID, frame.ID)
	}
}

// measurement folds an external reading into the running sweep. While
// idle the frame is deliberately ignored: there is no sweep for the
// reading to belong to.
func (g *Gateway) measurement(mt protocol.MeasurementType, frame Frame) {
	if !g.status.Running() {
		return
	}

	value := protocol.SensorValue(frame.Payload())
	g.emitter.EmitResult(frame.ID, mt, g.status.SampleID(), value)
}
