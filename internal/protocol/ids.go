// Package protocol defines the wire protocol shared by the solar array
// sensor network: message identifiers, the bit-packed sweep profile
// command, fault codes, and the outbound record formats.
package protocol

// Prelude marks the start of every serial command frame.
const Prelude byte = 0xFF

// Frame geometry for the serial command link.
const (
	HeaderLen = 3 // prelude + 12-bit message id
	FrameLen  = 8 // header + 6-byte profile payload
)

// Message ids in the shared 11-bit id space. The 0x64x block belongs to
// this node; the 0x62x/0x63x blocks belong to the blackbody sensor nodes.
const (
	MsgSweepProfile uint16 = 0x640 // inbound sweep configuration
	MsgSweepResult  uint16 = 0x641 // outbound result records
	MsgSweepFault   uint16 = 0x642 // outbound fault records
	MsgVoltageMeas  uint16 = 0x643 // outbound voltage measurement frames
	MsgCurrentMeas  uint16 = 0x644 // outbound current measurement frames

	MsgTemperatureMeas uint16 = 0x620
	MsgIrradiance1Meas uint16 = 0x630
	MsgIrradiance2Meas uint16 = 0x631
	MsgSensorEnable    uint16 = 0x632 // never addressed to this node
	MsgSensorFault     uint16 = 0x633
)

// HeaderID reconstructs the 12-bit message id from the two header bytes
// following the prelude. The id occupies the top 12 bits of the pair.
func HeaderID(b1, b2 byte) uint16 {
	return (uint16(b1)<<8 | uint16(b2&0xF0)) >> 4
}

// MeasurementType tags a result record with the quantity it carries.
// The values are fixed by the host-side parsers.
type MeasurementType uint8

const (
	MeasureVoltage MeasurementType = iota
	MeasureCurrent
	MeasureTemperature
	MeasureIrradiance
)

func (m MeasurementType) String() string {
	switch m {
	case MeasureVoltage:
		return "voltage"
	case MeasureCurrent:
		return "current"
	case MeasureTemperature:
		return "temperature"
	case MeasureIrradiance:
		return "irradiance"
	default:
		return "unknown"
	}
}
