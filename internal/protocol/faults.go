package protocol

import "fmt"

// FaultCode is the numeric code carried by fault records on the wire.
// Standard codes fit in a byte; extended codes use the full 16 bits.
type FaultCode uint16

const (
	FaultNone            FaultCode = 0x00
	FaultUnknown         FaultCode = 0x01
	FaultBadState        FaultCode = 0x02
	FaultInvalidMsgID    FaultCode = 0x20
	FaultInvalidMsgData  FaultCode = 0x21
	FaultUnexpectedMsgID FaultCode = 0x22

	FaultInvalidProfile            FaultCode = 0x100
	FaultInvalidVoltageStart       FaultCode = 0x101
	FaultInvalidVoltageEnd         FaultCode = 0x102
	FaultInvalidVoltageConsistency FaultCode = 0x103
	FaultInvalidVoltageResolution  FaultCode = 0x104
	FaultInvalidDuration           FaultCode = 0x105
	FaultInvalidFifoDequeue        FaultCode = 0x106
)

func (c FaultCode) String() string {
	switch c {
	case FaultNone:
		return "none"
	case FaultUnknown:
		return "unknown"
	case FaultBadState:
		return "bad_state"
	case FaultInvalidMsgID:
		return "invalid_msg_id"
	case FaultInvalidMsgData:
		return "invalid_msg_data"
	case FaultUnexpectedMsgID:
		return "unexpected_msg_id"
	case FaultInvalidProfile:
		return "invalid_profile"
	case FaultInvalidVoltageStart:
		return "invalid_voltage_start"
	case FaultInvalidVoltageEnd:
		return "invalid_voltage_end"
	case FaultInvalidVoltageConsistency:
		return "invalid_voltage_consistency"
	case FaultInvalidVoltageResolution:
		return "invalid_voltage_resolution"
	case FaultInvalidDuration:
		return "invalid_duration"
	case FaultInvalidFifoDequeue:
		return "invalid_fifo_dequeue"
	default:
		return fmt.Sprintf("fault_0x%03X", uint16(c))
	}
}

// WireError is a protocol violation that must be reported on the fault
// channel before the node halts.
type WireError struct {
	Code    FaultCode
	Context uint16
}

func (e *WireError) Error() string {
	return fmt.Sprintf("protocol: %s (context 0x%04X)", e.Code, e.Context)
}

// FaultCodeOf extracts the wire fault code from an error chain. Errors
// without one map to FaultUnknown.
func FaultCodeOf(err error) FaultCode {
	if err == nil {
		return FaultNone
	}
	if we, ok := err.(*WireError); ok {
		return we.Code
	}

	return FaultUnknown
}
