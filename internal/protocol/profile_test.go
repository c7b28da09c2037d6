package protocol_test

import (
	"testing"

	"github.com/lhrsolar/curvetracer/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(p protocol.Profile) []byte {
	frame := protocol.EncodeProfile(p)
	return frame[:]
}

func TestDecodeProfileRoundTrip(t *testing.T) {
	want := protocol.Profile{
		Regime:            protocol.RegimeModule,
		VoltageStart:      0.25,
		VoltageEnd:        0.50,
		VoltageResolution: 0.01,
	}

	got, err := protocol.DecodeProfile(encode(want))
	require.NoError(t, err)

	assert.Equal(t, want.Regime, got.Regime)
	assert.InDelta(t, want.VoltageStart, got.VoltageStart, 1e-9)
	assert.InDelta(t, want.VoltageEnd, got.VoltageEnd, 1e-9)
	assert.InDelta(t, want.VoltageResolution, got.VoltageResolution, 1e-9)
	assert.Equal(t, uint32(25), got.NumSamples)
	assert.True(t, got.Armed)
}

func TestDecodeProfileRegimeBounds(t *testing.T) {
	base := protocol.Profile{
		VoltageStart:      0.1,
		VoltageEnd:        0.2,
		VoltageResolution: 0.01,
	}

	for r := protocol.Regime(1); r <= 3; r++ {
		base.Regime = r
		_, err := protocol.DecodeProfile(encode(base))
		assert.NoError(t, err, "regime %d is legal", r)
	}

	for _, r := range []protocol.Regime{0, 4, 7, 15} {
		base.Regime = r
		_, err := protocol.DecodeProfile(encode(base))

		var wireErr *protocol.WireError
		require.ErrorAs(t, err, &wireErr, "regime %d must be rejected", r)
		assert.Equal(t, protocol.FaultInvalidProfile, wireErr.Code)
		assert.Equal(t, uint16(r), wireErr.Context)
	}
}

func TestDecodeProfileVoltageBounds(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		res        float64
		code       protocol.FaultCode
	}{
		{"start at rail", 3.300, 3.300, 0.001, 0},
		{"start over rail", 3.301, 3.301, 0.001, protocol.FaultInvalidVoltageStart},
		{"end over rail", 0.100, 3.301, 0.001, protocol.FaultInvalidVoltageEnd},
		{"start above end", 0.500, 0.250, 0.001, protocol.FaultInvalidVoltageConsistency},
		{"resolution floor", 0.100, 0.200, 0.001, 0},
		{"resolution zero", 0.100, 0.200, 0.000, protocol.FaultInvalidVoltageResolution},
		{"resolution cap", 0.100, 3.200, 1.000, 0},
		{"resolution over cap", 0.100, 3.200, 1.001, protocol.FaultInvalidVoltageResolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := protocol.Profile{
				Regime:            protocol.RegimeCell,
				VoltageStart:      tt.start,
				VoltageEnd:        tt.end,
				VoltageResolution: tt.res,
			}

			_, err := protocol.DecodeProfile(encode(p))
			if tt.code == 0 {
				assert.NoError(t, err)
				return
			}

			var wireErr *protocol.WireError
			require.ErrorAs(t, err, &wireErr)
			assert.Equal(t, tt.code, wireErr.Code)
		})
	}
}

func TestDecodeProfileConsistencyBeforeResolution(t *testing.T) {
	// Start above end with a bad resolution: the consistency check runs
	// first in wire order and must win.
	p := protocol.Profile{
		Regime:            protocol.RegimeCell,
		VoltageStart:      0.500,
		VoltageEnd:        0.250,
		VoltageResolution: 0,
	}

	_, err := protocol.DecodeProfile(encode(p))

	var wireErr *protocol.WireError
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, protocol.FaultInvalidVoltageConsistency, wireErr.Code)
}

func TestDecodeProfileShortFrame(t *testing.T) {
	_, err := protocol.DecodeProfile([]byte{protocol.Prelude, 0x64, 0x00})

	var wireErr *protocol.WireError
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, protocol.FaultInvalidMsgData, wireErr.Code)
	assert.Equal(t, uint16(3), wireErr.Context)
}

func TestEncodeProfileHeader(t *testing.T) {
	frame := protocol.EncodeProfile(protocol.Profile{
		Regime:            protocol.RegimeCell,
		VoltageEnd:        0.1,
		VoltageResolution: 0.01,
	})

	assert.Equal(t, byte(protocol.Prelude), frame[0])
	assert.Equal(t, protocol.MsgSweepProfile, protocol.HeaderID(frame[1], frame[2]))
}

func TestNumSamplesExactAtBoundaries(t *testing.T) {
	// 0 to 3.3 V at 1 mV steps pushes every nibble field to its limit.
	p := protocol.Profile{
		Regime:            protocol.RegimeSubarray,
		VoltageStart:      0,
		VoltageEnd:        3.300,
		VoltageResolution: 0.001,
	}

	got, err := protocol.DecodeProfile(encode(p))
	require.NoError(t, err)
	assert.Equal(t, uint32(3300), got.NumSamples)
}
