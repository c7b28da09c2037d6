package fault_test

import (
	"context"
	"sync"
	"testing"

	"github.com/lhrsolar/curvetracer/internal/fault"
	"github.com/lhrsolar/curvetracer/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureEmitter struct {
	mu    sync.Mutex
	calls []protocol.FaultCode
}

func (e *captureEmitter) EmitFault(msgID uint16, code protocol.FaultCode, context uint16) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, code)

	return true
}

type captureDisarmer struct {
	mu       sync.Mutex
	disarmed int
}

func (d *captureDisarmer) Disarm() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disarmed++
}

type captureIndicator struct {
	mu    sync.Mutex
	fault bool
}

func (i *captureIndicator) Fault(on bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.fault = on
}

func TestSinkFirstFaultWins(t *testing.T) {
	emitter := &captureEmitter{}
	disarmer := &captureDisarmer{}
	indicator := &captureIndicator{}

	ctx, cancel := context.WithCancel(context.Background())
	s := fault.NewSink(emitter, disarmer, indicator, cancel)

	require.False(t, s.Halted())
	require.Nil(t, s.Fault())

	s.Raise(protocol.MsgSweepFault, protocol.FaultInvalidVoltageStart, 0x0CE5)
	s.Raise(protocol.MsgSweepFault, protocol.FaultBadState, 0x0001)
	s.Raise(protocol.MsgSweepFault, protocol.FaultUnknown, 0x0002)

	rec := s.Fault()
	require.NotNil(t, rec)
	assert.Equal(t, protocol.FaultInvalidVoltageStart, rec.Code)
	assert.Equal(t, uint16(0x0CE5), rec.Context)
	assert.True(t, s.Halted())

	assert.Equal(t, []protocol.FaultCode{protocol.FaultInvalidVoltageStart}, emitter.calls,
		"exactly one fault record goes out")
	assert.Equal(t, 1, disarmer.disarmed)
	assert.True(t, indicator.fault)
	assert.ErrorIs(t, ctx.Err(), context.Canceled, "the latch cancels the supervisor context")
}

func TestSinkConcurrentRaise(t *testing.T) {
	emitter := &captureEmitter{}

	_, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := fault.NewSink(emitter, &captureDisarmer{}, nil, cancel)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n uint16) {
			defer wg.Done()
			s.Raise(protocol.MsgSweepFault, protocol.FaultBadState, n)
		}(uint16(i))
	}
	wg.Wait()

	assert.Len(t, emitter.calls, 1)
	require.NotNil(t, s.Fault())
	assert.Equal(t, protocol.FaultBadState, s.Fault().Code)
}

func TestSinkToleratesNilCollaborators(t *testing.T) {
	s := fault.NewSink(nil, nil, nil, nil)

	assert.NotPanics(t, func() {
		s.Raise(protocol.MsgSweepFault, protocol.FaultUnknown, 0)
	})
	assert.True(t, s.Halted())
}
