package canbus

import (
	"context"

	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"

	"github.com/lhrsolar/curvetracer/internal/errors"
	"github.com/lhrsolar/curvetracer/internal/logger"
)

const rxBacklog = 32

// SocketCAN adapts a Linux SocketCAN interface to the Bus abstraction.
// A background goroutine drains the kernel socket into a small buffer
// so Receive stays non-blocking for the poll task.
type SocketCAN struct {
	tx     *socketcan.Transmitter
	frames chan Frame
	done   chan struct{}
}

// OpenSocketCAN opens the named interface (e.g. "can0").
func OpenSocketCAN(ctx context.Context, ifname string) (*SocketCAN, error) {
	errFactory := errors.New()

	conn, err := socketcan.DialContext(ctx, "can", ifname)
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrBusOpen, err)
	}

	b := &SocketCAN{
		tx:     socketcan.NewTransmitter(conn),
		frames: make(chan Frame, rxBacklog),
		done:   make(chan struct{}),
	}

	rx := socketcan.NewReceiver(conn)
	go func() {
		defer close(b.frames)
		for rx.Receive() {
			f := rx.Frame()
			if f.IsExtended || f.IsRemote {
				continue
			}
			frame := Frame{ID: uint16(f.ID), Len: f.Length}
			copy(frame.Data[:], f.Data[:])
			select {
			case b.frames <- frame:
			case <-b.done:
				return
			default:
				logger.Warn().Uint16("id", frame.ID).Msg("Dropping CAN frame, rx backlog full")
			}
		}
	}()

	return b, nil
}

// Receive returns one buffered frame without blocking.
func (b *SocketCAN) Receive() (Frame, bool, error) {
	select {
	case f, ok := <-b.frames:
		if !ok {
			return Frame{}, false, errors.New().New(errors.ErrBusReceive)
		}
		return f, true, nil
	default:
		return Frame{}, false, nil
	}
}

// Send transmits one frame.
func (b *SocketCAN) Send(f Frame) error {
	errFactory := errors.New()

	if err := f.Validate(); err != nil {
		return err
	}

	out := can.Frame{ID: uint32(f.ID), Length: f.Len}
	copy(out.Data[:], f.Data[:])
	if err := b.tx.TransmitFrame(context.Background(), out); err != nil {
		return errFactory.Wrap(errors.ErrBusSend, err)
	}

	return nil
}

// Close shuts down the adapter.
func (b *SocketCAN) Close() error {
	close(b.done)

	return b.tx.Close()
}
