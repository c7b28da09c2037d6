package hw

import (
	"os"

	"github.com/lhrsolar/curvetracer/internal/logger"
)

// LED sets a single indicator on or off.
type LED interface {
	Set(on bool) error
}

// SysfsLED drives a GPIO-backed LED through its sysfs value attribute.
type SysfsLED struct {
	path string
}

func NewSysfsLED(path string) *SysfsLED {
	return &SysfsLED{path: path}
}

func (l *SysfsLED) Set(on bool) error {
	v := []byte("0")
	if on {
		v = []byte("1")
	}

	return os.WriteFile(l.path, v, 0o644)
}

// Panel groups the board's three indicators. Any LED may be nil when
// the board variant lacks it.
type Panel struct {
	heartbeat LED
	scanning  LED
	fault     LED

	beat bool
}

func NewPanel(heartbeat, scanning, fault LED) *Panel {
	return &Panel{heartbeat: heartbeat, scanning: scanning, fault: fault}
}

// HeartbeatToggle flips the heartbeat light; called once per poll tick.
func (p *Panel) HeartbeatToggle() {
	if p.heartbeat == nil {
		return
	}
	p.beat = !p.beat
	if err := p.heartbeat.Set(p.beat); err != nil {
		logger.Debug().Err(err).Msg("Heartbeat LED write failed")
	}
}

// Scanning shows sweep activity. Implements sweep.Indicator.
func (p *Panel) Scanning(on bool) {
	if p.scanning == nil {
		return
	}
	if err := p.scanning.Set(on); err != nil {
		logger.Debug().Err(err).Msg("Scanning LED write failed")
	}
}

// Fault latches the error light. Implements fault.Indicator.
func (p *Panel) Fault(on bool) {
	if p.fault == nil {
		return
	}
	if err := p.fault.Set(on); err != nil {
		logger.Debug().Err(err).Msg("Fault LED write failed")
	}
}
