// Package archive persists emitted sweep points and faults to an
// on-node sqlite database so completed I-V curves survive a power
// cycle of the host link.
package archive

import "github.com/lhrsolar/curvetracer/internal/protocol"

// Store records emitted sweep output. Implementations must be safe to
// call from the dispatch worker only.
type Store interface {
	SavePoint(mt protocol.MeasurementType, sampleID uint32, milli int64)
	SaveFault(code protocol.FaultCode, context uint16)
	Close() error
}
