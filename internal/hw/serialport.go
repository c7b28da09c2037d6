// Package hw adapts the board peripherals (serial link, control DAC,
// sensor ADCs and indicator lights) to the interfaces the core tasks
// consume.
package hw

import (
	"time"

	"go.bug.st/serial"

	"github.com/lhrsolar/curvetracer/internal/errors"
)

// readTimeout keeps ReadByte effectively non-blocking for the poll
// task: a silent line costs at most one timeout per tick.
const readTimeout = time.Millisecond

// SerialPort is the point-to-point command/result link.
type SerialPort struct {
	port serial.Port
}

// OpenSerialPort opens the link at the fleet's fixed framing
// (8 data bits, no parity, one stop bit).
func OpenSerialPort(path string, baudRate int) (*SerialPort, error) {
	errFactory := errors.New()

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrSerialOpen, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, errFactory.Wrap(errors.ErrSerialOpen, err)
	}

	return &SerialPort{port: port}, nil
}

// ReadByte pulls at most one pending byte. ok is false when the line
// was silent for the read timeout.
func (s *SerialPort) ReadByte() (byte, bool, error) {
	errFactory := errors.New()

	var buf [1]byte
	n, err := s.port.Read(buf[:])
	if err != nil {
		return 0, false, errFactory.Wrap(errors.ErrSerialRead, err)
	}
	if n == 0 {
		return 0, false, nil
	}

	return buf[0], true, nil
}

// WriteRecord emits one newline-terminated record.
func (s *SerialPort) WriteRecord(record string) error {
	errFactory := errors.New()

	if _, err := s.port.Write(append([]byte(record), '\n')); err != nil {
		return errFactory.Wrap(errors.ErrSerialWrite, err)
	}

	return nil
}

// Close releases the port.
func (s *SerialPort) Close() error {
	return s.port.Close()
}
