package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Outbound records are fixed-width uppercase hex so the host parser can
// split them by column: prelude(2) msgId(3) type(1) sampleId(3) value(5)
// for results, prelude(2) msgId(3) code(3) context(4) for faults.

// FormatResult renders a result record. The value is in volts or amps
// and is reported in thousandths.
func FormatResult(msgID uint16, mt MeasurementType, sampleID uint32, value float64) string {
	scaled := uint32(math.Round(value * 1000.0))

	return fmt.Sprintf("%02X%03X%01X%03X%05X", Prelude, msgID&0xFFF, uint8(mt), sampleID&0xFFF, scaled&0xFFFFF)
}

// FormatFault renders a fault record.
func FormatFault(msgID uint16, code FaultCode, context uint16) string {
	return fmt.Sprintf("%02X%03X%03X%04X", Prelude, msgID&0xFFF, uint16(code)&0xFFF, context)
}

// MeasurementPayload packs a measurement value into the 4-byte CAN
// payload used on the 0x643/0x644 ids: thousandths, truncated, little
// endian as the bus convention dictates.
func MeasurementPayload(value float64) [4]byte {
	var data [4]byte
	binary.LittleEndian.PutUint32(data[:], uint32(value*1000.0))

	return data
}

// FaultPayload packs a fault code and context into the 4-byte CAN
// payload used on the fault id.
func FaultPayload(code FaultCode, context uint16) [4]byte {
	var data [4]byte
	binary.LittleEndian.PutUint16(data[0:2], uint16(code))
	binary.LittleEndian.PutUint16(data[2:4], context)

	return data
}

// SensorValue reinterprets an external sensor node's payload as a 32-bit
// float carrying thousandths of the physical unit.
func SensorValue(data []byte) float64 {
	if len(data) < 4 {
		return 0
	}

	return float64(math.Float32frombits(binary.LittleEndian.Uint32(data[:4]))) / 1000.0
}
