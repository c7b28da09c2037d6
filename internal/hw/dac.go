package hw

import (
	"os"
	"strconv"

	"github.com/lhrsolar/curvetracer/internal/errors"
)

// The control DAC rides the 3.3 V rail with 12-bit resolution.
const (
	dacVref   = 3.3
	dacMaxRaw = 4095
)

// IIODAC drives the gate-control DAC through its IIO sysfs raw
// attribute (e.g. /sys/bus/iio/devices/iio:device1/out_voltage0_raw).
type IIODAC struct {
	path string
}

// NewIIODAC creates a control output writing to the given attribute.
func NewIIODAC(path string) *IIODAC {
	return &IIODAC{path: path}
}

// Set commands the output voltage, clamped to the rail.
func (d *IIODAC) Set(volts float64) error {
	errFactory := errors.New()

	if volts < 0 {
		volts = 0
	}
	if volts > dacVref {
		volts = dacVref
	}

	raw := int(volts/dacVref*dacMaxRaw + 0.5)
	if err := os.WriteFile(d.path, []byte(strconv.Itoa(raw)), 0o644); err != nil {
		return errFactory.Wrap(errors.ErrControlWrite, err)
	}

	return nil
}
