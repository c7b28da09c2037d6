package canbus_test

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/lhrsolar/curvetracer/internal/canbus"
	"github.com/lhrsolar/curvetracer/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedBus struct {
	frames []canbus.Frame
	err    error
}

func (b *scriptedBus) Receive() (canbus.Frame, bool, error) {
	if b.err != nil {
		return canbus.Frame{}, false, b.err
	}
	if len(b.frames) == 0 {
		return canbus.Frame{}, false, nil
	}
	f := b.frames[0]
	b.frames = b.frames[1:]

	return f, true, nil
}

func (b *scriptedBus) Send(canbus.Frame) error { return nil }
func (b *scriptedBus) Close() error            { return nil }

type emitted struct {
	msgID    uint16
	mt       protocol.MeasurementType
	sampleID uint32
	value    float64
}

type captureEmitter struct {
	results []emitted
}

func (e *captureEmitter) EmitResult(msgID uint16, mt protocol.MeasurementType, sampleID uint32, value float64) bool {
	e.results = append(e.results, emitted{msgID, mt, sampleID, value})
	return true
}

type raised struct {
	msgID   uint16
	code    protocol.FaultCode
	context uint16
}

type captureRaiser struct {
	faults []raised
}

func (r *captureRaiser) Raise(msgID uint16, code protocol.FaultCode, context uint16) {
	r.faults = append(r.faults, raised{msgID, code, context})
}

type fixedStatus struct {
	running  bool
	sampleID uint32
}

func (s *fixedStatus) Running() bool    { return s.running }
func (s *fixedStatus) SampleID() uint32 { return s.sampleID }

func sensorFrame(id uint16, thousandths float32) canbus.Frame {
	var payload [4]byte
	binary.LittleEndian.PutUint32(payload[:], math.Float32bits(thousandths))

	return canbus.NewFrame(id, payload[:])
}

func TestGatewayIgnoresMeasurementsWhileIdle(t *testing.T) {
	bus := &scriptedBus{frames: []canbus.Frame{
		sensorFrame(protocol.MsgTemperatureMeas, 25300),
		sensorFrame(protocol.MsgIrradiance1Meas, 800000),
	}}
	emitter := &captureEmitter{}
	raiser := &captureRaiser{}

	g := canbus.NewGateway(bus, emitter, raiser, &fixedStatus{running: false})
	g.Tick()
	g.Tick()

	assert.Empty(t, emitter.results)
	assert.Empty(t, raiser.faults)
}

func TestGatewayFoldsMeasurementsIntoRunningSweep(t *testing.T) {
	bus := &scriptedBus{frames: []canbus.Frame{
		sensorFrame(protocol.MsgTemperatureMeas, 25300),
		sensorFrame(protocol.MsgIrradiance1Meas, 800000),
		sensorFrame(protocol.MsgIrradiance2Meas, 810000),
	}}
	emitter := &captureEmitter{}
	raiser := &captureRaiser{}

	g := canbus.NewGateway(bus, emitter, raiser, &fixedStatus{running: true, sampleID: 12})
	for i := 0; i < 3; i++ {
		g.Tick()
	}

	require.Len(t, emitter.results, 3)
	assert.Empty(t, raiser.faults)

	temp := emitter.results[0]
	assert.Equal(t, protocol.MsgTemperatureMeas, temp.msgID)
	assert.Equal(t, protocol.MeasureTemperature, temp.mt)
	assert.Equal(t, uint32(12), temp.sampleID)
	assert.InDelta(t, 25.3, temp.value, 1e-3)

	assert.Equal(t, protocol.MeasureIrradiance, emitter.results[1].mt)
	assert.InDelta(t, 800.0, emitter.results[1].value, 1e-3)
	assert.Equal(t, protocol.MsgIrradiance2Meas, emitter.results[2].msgID)
}

func TestGatewayForwardsNeighborFault(t *testing.T) {
	bus := &scriptedBus{frames: []canbus.Frame{
		canbus.NewFrame(protocol.MsgSensorFault, []byte{0x02, 0x05}),
	}}
	raiser := &captureRaiser{}

	g := canbus.NewGateway(bus, &captureEmitter{}, raiser, &fixedStatus{running: true})
	g.Tick()

	require.Len(t, raiser.faults, 1)
	assert.Equal(t, protocol.MsgSweepFault, raiser.faults[0].msgID)
	assert.Equal(t, protocol.FaultBadState, raiser.faults[0].code)
	assert.Equal(t, uint16(5), raiser.faults[0].context)
}

func TestGatewayFaultsOnUnexpectedID(t *testing.T) {
	bus := &scriptedBus{frames: []canbus.Frame{
		canbus.NewFrame(protocol.MsgSensorEnable, []byte{0x01}),
	}}
	raiser := &captureRaiser{}

	g := canbus.NewGateway(bus, &captureEmitter{}, raiser, &fixedStatus{})
	g.Tick()

	require.Len(t, raiser.faults, 1)
	assert.Equal(t, protocol.FaultUnexpectedMsgID, raiser.faults[0].code)
	assert.Equal(t, uint16(protocol.MsgSensorEnable), raiser.faults[0].context)
}

func TestGatewayQuietBusAndReceiveError(t *testing.T) {
	emitter := &captureEmitter{}
	raiser := &captureRaiser{}

	g := canbus.NewGateway(&scriptedBus{}, emitter, raiser, &fixedStatus{running: true})
	g.Tick()

	ge := canbus.NewGateway(&scriptedBus{err: errors.New("socket closed")}, emitter, raiser, &fixedStatus{})
	ge.Tick()

	assert.Empty(t, emitter.results)
	assert.Empty(t, raiser.faults, "receive errors are logged, not latched")
}

func TestFrameValidate(t *testing.T) {
	assert.NoError(t, canbus.NewFrame(0x7FF, []byte{1}).Validate())
	assert.Error(t, canbus.Frame{ID: 0x800}.Validate())
}

func TestNewFrameTruncatesPayload(t *testing.T) {
	f := canbus.NewFrame(0x640, make([]byte, 12))

	assert.Equal(t, uint8(8), f.Len)
	assert.Len(t, f.Payload(), 8)
}
