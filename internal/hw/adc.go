package hw

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lhrsolar/curvetracer/internal/errors"
	"github.com/lhrsolar/curvetracer/internal/protocol"
)

// Default sub-sampling scheme: five raw reads with a settling wait
// between them, averaged into one sample.
const (
	defaultSubReads    = 5
	defaultSubInterval = 3 * time.Millisecond
	adcMaxRaw          = 4095
	currentSenseGain   = 8.1169
)

// Per-regime gains for the voltage divider in front of the sense ADC.
var voltageGains = map[protocol.Regime]float64{
	protocol.RegimeCell:     1.1047,
	protocol.RegimeModule:   5.4591,
	protocol.RegimeSubarray: 111.8247,
}

// RawReader yields one normalized [0,1] conversion.
type RawReader interface {
	ReadRaw() (float64, error)
}

// IIOADC reads a 12-bit conversion from an IIO sysfs raw attribute.
type IIOADC struct {
	path string
}

func NewIIOADC(path string) *IIOADC {
	return &IIOADC{path: path}
}

func (a *IIOADC) ReadRaw() (float64, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(a.path)
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrSensorRead, err)
	}
	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errFactory.Wrap(errors.ErrSensorRead, err)
	}

	return float64(raw) / adcMaxRaw, nil
}

// ADCSampler averages several raw reads and applies the calibration
// gain for the active regime. It implements sweep.Sampler and
// sweep.RegimeAware.
type ADCSampler struct {
	raw      RawReader
	reads    int
	interval time.Duration
	gain     func(protocol.Regime) float64
	regime   protocol.Regime
}

// NewVoltageSampler builds the voltage-sense sampler. reads <= 0 and
// interval <= 0 select the defaults.
func NewVoltageSampler(raw RawReader, reads int, interval time.Duration) *ADCSampler {
	return newSampler(raw, reads, interval, func(r protocol.Regime) float64 {
		if g, ok := voltageGains[r]; ok {
			return g
		}
		return 1.0
	})
}

// NewCurrentSampler builds the current-sense sampler. Its gain does not
// depend on the regime.
func NewCurrentSampler(raw RawReader, reads int, interval time.Duration) *ADCSampler {
	return newSampler(raw, reads, interval, func(protocol.Regime) float64 {
		return currentSenseGain
	})
}

func newSampler(raw RawReader, reads int, interval time.Duration, gain func(protocol.Regime) float64) *ADCSampler {
	if reads <= 0 {
		reads = defaultSubReads
	}
	if interval <= 0 {
		interval = defaultSubInterval
	}

	return &ADCSampler{raw: raw, reads: reads, interval: interval, gain: gain}
}

// SetRegime selects the calibration gain for the next samples.
func (s *ADCSampler) SetRegime(r protocol.Regime) { s.regime = r }

// Sample averages the configured number of raw reads.
func (s *ADCSampler) Sample() (float64, error) {
	var sum float64
	for i := 0; i < s.reads; i++ {
		time.Sleep(s.interval)
		v, err := s.raw.ReadRaw()
		if err != nil {
			return 0, err
		}
		sum += v
	}

	return s.gain(s.regime) * sum / float64(s.reads), nil
}
