package protocol

// Regime selects the calibration/scale category for a sweep. It occupies
// a single nibble on the wire; only Cell, Module and Subarray are legal
// inbound values, the rest of the nibble space is reserved.
type Regime uint8

const (
	RegimeNone Regime = iota
	RegimeCell
	RegimeModule
	RegimeSubarray
)

func (r Regime) Valid() bool {
	return r >= RegimeCell && r <= RegimeSubarray
}

func (r Regime) String() string {
	switch r {
	case RegimeNone:
		return "none"
	case RegimeCell:
		return "cell"
	case RegimeModule:
		return "module"
	case RegimeSubarray:
		return "subarray"
	default:
		return "reserved"
	}
}

// Voltage domain limits, in millivolts. Start and end ride the DAC rail;
// the resolution is capped at 1 V per step.
const (
	maxVoltageMilli    = 3300
	maxResolutionMilli = 1000
)

// Profile is one sweep configuration, decoded from an 8-byte command
// frame. Voltages are stored as volts; Armed is set only by a successful
// decode and cleared by the sweep engine on completion or fault.
type Profile struct {
	Regime            Regime
	VoltageStart      float64
	VoltageEnd        float64
	VoltageResolution float64

	NumSamples uint32
	SampleID   uint32
	Armed      bool
}

// DecodeProfile validates and unpacks a complete command frame. Fields
// are packed across nibble boundaries in big-endian nibble order;
// checks run in wire order and the first failing field wins.
func DecodeProfile(frame []byte) (Profile, error) {
	if len(frame) < FrameLen {
		return Profile{}, &WireError{Code: FaultInvalidMsgData, Context: uint16(len(frame))}
	}

	regime := Regime(frame[3]&0xF0) >> 4
	if !regime.Valid() {
		return Profile{}, &WireError{Code: FaultInvalidProfile, Context: uint16(regime)}
	}

	startMilli := uint16(frame[3]&0x0F)<<8 | uint16(frame[4])
	if startMilli > maxVoltageMilli {
		return Profile{}, &WireError{Code: FaultInvalidVoltageStart, Context: startMilli}
	}

	endMilli := uint16(frame[5])<<4 | uint16(frame[6]&0xF0)>>4
	if endMilli > maxVoltageMilli {
		return Profile{}, &WireError{Code: FaultInvalidVoltageEnd, Context: endMilli}
	}

	if startMilli > endMilli {
		return Profile{}, &WireError{Code: FaultInvalidVoltageConsistency, Context: endMilli}
	}

	resMilli := uint16(frame[6]&0x0F)<<8 | uint16(frame[7])
	if resMilli == 0 || resMilli > maxResolutionMilli {
		return Profile{}, &WireError{Code: FaultInvalidVoltageResolution, Context: resMilli}
	}

	return Profile{
		Regime:            regime,
		VoltageStart:      float64(startMilli) / 1000.0,
		VoltageEnd:        float64(endMilli) / 1000.0,
		VoltageResolution: float64(resMilli) / 1000.0,
		// Integer millivolt math keeps the derived count exact.
		NumSamples: uint32((endMilli - startMilli) / resMilli),
		Armed:      true,
	}, nil
}

// EncodeProfile packs a profile into its 8-byte command frame, the
// inverse of DecodeProfile. Used by host tooling and test fixtures.
func EncodeProfile(p Profile) [FrameLen]byte {
	startMilli := uint16(p.VoltageStart*1000.0 + 0.5)
	endMilli := uint16(p.VoltageEnd*1000.0 + 0.5)
	resMilli := uint16(p.VoltageResolution*1000.0 + 0.5)

	var frame [FrameLen]byte
	frame[0] = Prelude
	frame[1] = byte(MsgSweepProfile >> 4)
	frame[2] = byte(MsgSweepProfile&0x0F) << 4
	frame[3] = byte(p.Regime)<<4 | byte(startMilli>>8)
	frame[4] = byte(startMilli)
	frame[5] = byte(endMilli >> 4)
	frame[6] = byte(endMilli&0x0F)<<4 | byte(resMilli>>8)
	frame[7] = byte(resMilli)

	return frame
}
