// Package canbus carries the node's CAN traffic: the frame type and bus
// abstraction, the SocketCAN adapter, and the inbound gateway that
// routes sensor-network frames into the result pipeline.
package canbus

import (
	"github.com/lhrsolar/curvetracer/internal/errors"
)

// The sensor network uses classical CAN with standard 11-bit ids only.
const maxStdID = 0x7FF

// Frame is one classical CAN data frame.
type Frame struct {
	ID   uint16
	Len  uint8
	Data [8]byte
}

// NewFrame builds a data frame from an id and payload.
func NewFrame(id uint16, payload []byte) Frame {
	f := Frame{ID: id, Len: uint8(len(payload))}
	if f.Len > 8 {
		f.Len = 8
	}
	copy(f.Data[:], payload[:f.Len])

	return f
}

// Validate returns an error if the frame cannot go on the wire.
func (f Frame) Validate() error {
	errFactory := errors.New()

	if f.ID > maxStdID {
		return errFactory.WithData(errors.ErrInvalidArgument, f.ID)
	}
	if f.Len > 8 {
		return errFactory.WithData(errors.ErrInvalidArgument, f.Len)
	}

	return nil
}

// Payload returns the frame's valid data bytes.
func (f Frame) Payload() []byte { return f.Data[:f.Len] }

// Bus abstracts the CAN transceiver. Receive never blocks: ok is false
// when no frame is pending.
type Bus interface {
	Receive() (f Frame, ok bool, err error)
	Send(f Frame) error
	Close() error
}
