package framing

import (
	"github.com/lhrsolar/curvetracer/internal/protocol"
)

// ByteSource yields at most one raw byte per call without blocking.
// ok is false when no byte is pending.
type ByteSource interface {
	ReadByte() (b byte, ok bool, err error)
}

// Scanner locates prelude-aligned command frames in a noisy byte
// stream. It never assumes frame boundaries are reliable: a leading
// byte that fails the prelude check is discarded one byte per tick
// until the stream realigns.
type Scanner struct {
	ring *Ring
	src  ByteSource
}

// NewScanner creates a scanner over the given ring and byte source.
func NewScanner(ring *Ring, src ByteSource) *Scanner {
	return &Scanner{ring: ring, src: src}
}

// Tick ingests at most one byte and attempts to extract one complete
// command frame. It returns a FrameLen-byte frame when one is ready,
// nil when more bytes are needed, and a *protocol.WireError when the
// stream carries a message this node must treat as fatal.
func (s *Scanner) Tick() ([]byte, error) {
	if !s.ring.Full() {
		if b, ok, err := s.src.ReadByte(); err == nil && ok {
			s.ring.Enqueue(b)
		}
	}

	header := s.ring.Peek(protocol.HeaderLen + 1)
	if len(header) < protocol.HeaderLen {
		return nil, nil
	}

	if header[0] != protocol.Prelude {
		// Desynchronized: drop one byte and rescan next tick.
		if _, ok := s.ring.Dequeue(); !ok {
			return nil, &protocol.WireError{Code: protocol.FaultInvalidFifoDequeue}
		}

		return nil, nil
	}

	id := protocol.HeaderID(header[1], header[2])
	if id != protocol.MsgSweepProfile {
		return nil, &protocol.WireError{Code: protocol.FaultUnexpectedMsgID, Context: id}
	}

	// Hold the header in place until the full frame has arrived.
	if s.ring.Used() < protocol.FrameLen {
		return nil, nil
	}

	frame := make([]byte, protocol.FrameLen)
	for i := range frame {
		b, ok := s.ring.Dequeue()
		if !ok {
			return nil, &protocol.WireError{Code: protocol.FaultInvalidFifoDequeue, Context: uint16(i)}
		}
		frame[i] = b
	}

	return frame, nil
}
