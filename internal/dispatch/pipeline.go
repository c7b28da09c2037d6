// Package dispatch serializes all outbound I/O. Jobs are executed in
// FIFO submission order by a single worker, so no two tasks ever write
// to the serial or CAN transports concurrently.
package dispatch

import (
	"context"

	"github.com/lhrsolar/curvetracer/internal/canbus"
	"github.com/lhrsolar/curvetracer/internal/logger"
	"github.com/lhrsolar/curvetracer/internal/protocol"
)

const defaultQueueSize = 100

type jobKind uint8

const (
	jobResult jobKind = iota
	jobFault
)

type job struct {
	kind     jobKind
	msgID    uint16
	mt       protocol.MeasurementType
	sampleID uint32
	value    float64
	code     protocol.FaultCode
	context  uint16
}

// RecordWriter emits one text record on the point-to-point link.
type RecordWriter interface {
	WriteRecord(record string) error
}

// FrameSender puts one frame on the shared bus.
type FrameSender interface {
	Send(f canbus.Frame) error
}

// Store persists emitted records. The archive package provides a
// no-op implementation when persistence is disabled.
type Store interface {
	SavePoint(mt protocol.MeasurementType, sampleID uint32, milli int64)
	SaveFault(code protocol.FaultCode, context uint16)
}

// Publisher mirrors result records to the telemetry broker.
type Publisher interface {
	PublishResult(mt protocol.MeasurementType, sampleID uint32, value float64)
}

// Pipeline is the ordered job queue plus its worker.
type Pipeline struct {
	jobs      chan job
	serial    RecordWriter
	bus       FrameSender
	store     Store
	publisher Publisher
}

// NewPipeline creates a pipeline with the given queue depth; depth <= 0
// selects the default.
func NewPipeline(depth int, serial RecordWriter, bus FrameSender, store Store, publisher Publisher) *Pipeline {
	if depth <= 0 {
		depth = defaultQueueSize
	}

	return &Pipeline{
		jobs:      make(chan job, depth),
		serial:    serial,
		bus:       bus,
		store:     store,
		publisher: publisher,
	}
}

// EmitResult queues a result record. Returns false when the queue is
// full and the job was dropped.
func (p *Pipeline) EmitResult(msgID uint16, mt protocol.MeasurementType, sampleID uint32, value float64) bool {
	return p.submit(job{kind: jobResult, msgID: msgID, mt: mt, sampleID: sampleID, value: value})
}

// EmitFault queues a fault record. By the time it runs the node is
// already transitioning to halt, so emission failures are only logged.
func (p *Pipeline) EmitFault(msgID uint16, code protocol.FaultCode, context uint16) bool {
	return p.submit(job{kind: jobFault, msgID: msgID, code: code, context: context})
}

func (p *Pipeline) submit(j job) bool {
	select {
	case p.jobs <- j:
		return true
	default:
		logger.Warn().Uint16("msg_id", j.msgID).Msg("Dispatch queue full, dropping job")
		return false
	}
}

// Pending reports the number of queued jobs.
func (p *Pipeline) Pending() int { return len(p.jobs) }

// Run drains the queue one job at a time until the context is
// canceled, then flushes whatever was already queued so the final
// fault record still reaches the wire.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case j := <-p.jobs:
					p.process(j)
				default:
					return ctx.Err()
				}
			}
		case j := <-p.jobs:
			p.process(j)
		}
	}
}

func (p *Pipeline) process(j job) {
	switch j.kind {
	case jobResult:
		p.processResult(j)
	case jobFault:
		p.processFault(j)
	}
}

func (p *Pipeline) processResult(j job) {
	record := protocol.FormatResult(j.msgID, j.mt, j.sampleID, j.value)
	if err := p.serial.WriteRecord(record); err != nil {
		logger.Error().Err(err).Str("record", record).Msg("Serial write failed")
	}

	// Locally sampled quantities are also broadcast on their own ids;
	// temperature and irradiance arrived over the bus and stay off it.
	switch j.mt {
	case protocol.MeasureVoltage:
		p.broadcast(protocol.MsgVoltageMeas, j.value)
	case protocol.MeasureCurrent:
		p.broadcast(protocol.MsgCurrentMeas, j.value)
	}

	if p.store != nil {
		p.store.SavePoint(j.mt, j.sampleID, int64(j.value*1000.0))
	}
	if p.publisher != nil {
		p.publisher.PublishResult(j.mt, j.sampleID, j.value)
	}
}

func (p *Pipeline) broadcast(msgID uint16, value float64) {
	payload := protocol.MeasurementPayload(value)
	if err := p.bus.Send(canbus.NewFrame(msgID, payload[:])); err != nil {
		logger.Error().Err(err).Uint16("msg_id", msgID).Msg("CAN send failed")
	}
}

func (p *Pipeline) processFault(j job) {
	record := protocol.FormatFault(j.msgID, j.code, j.context)
	if err := p.serial.WriteRecord(record); err != nil {
		logger.Error().Err(err).Str("record", record).Msg("Serial write failed")
	}

	payload := protocol.FaultPayload(j.code, j.context)
	if err := p.bus.Send(canbus.NewFrame(protocol.MsgSweepFault, payload[:])); err != nil {
		logger.Error().Err(err).Msg("CAN send failed")
	}

	if p.store != nil {
		p.store.SaveFault(j.code, j.context)
	}
}
