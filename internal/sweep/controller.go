package sweep

import (
	"context"
	"time"

	"github.com/lhrsolar/curvetracer/internal/logger"
	"github.com/lhrsolar/curvetracer/internal/protocol"
)

const (
	defaultSettle   = 15 * time.Millisecond
	defaultCooldown = time.Second
)

// Controller is the sweep state machine: Idle until a profile arrives
// on the channel, Running while stepping it, Idle again after the last
// sample. A running sweep is not preemptible; only a fault-driven halt
// (context cancellation) stops it early.
type Controller struct {
	profiles <-chan protocol.Profile
	dac      ControlOutput
	voltage  Sampler
	current  Sampler
	emitter  Emitter
	faults   FaultRaiser
	status   *Status

	settle    time.Duration
	cooldown  time.Duration
	indicator Indicator
}

// Config carries the controller's collaborators and timing.
type Config struct {
	Profiles <-chan protocol.Profile
	DAC      ControlOutput
	Voltage  Sampler
	Current  Sampler
	Emitter  Emitter
	Faults   FaultRaiser
	Status   *Status

	Settle    time.Duration // dwell after each control-output change
	Cooldown  time.Duration // idle time between sweeps
	Indicator Indicator     // optional scanning light
}

// NewController creates a sweep controller.
func NewController(cfg Config) *Controller {
	if cfg.Settle <= 0 {
		cfg.Settle = defaultSettle
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}

	return &Controller{
		profiles:  cfg.Profiles,
		dac:       cfg.DAC,
		voltage:   cfg.Voltage,
		current:   cfg.Current,
		emitter:   cfg.Emitter,
		faults:    cfg.Faults,
		status:    cfg.Status,
		settle:    cfg.Settle,
		cooldown:  cfg.Cooldown,
		indicator: cfg.Indicator,
	}
}

// Run owns the Idle/Running transition until the context is canceled.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case profile := <-c.profiles:
			c.runSweep(ctx, profile)
			if !sleepCtx(ctx, c.cooldown) {
				return ctx.Err()
			}
		}
	}
}

func (c *Controller) runSweep(ctx context.Context, p protocol.Profile) {
	if !p.Armed || p.NumSamples == 0 {
		logger.Warn().Uint32("num_samples", p.NumSamples).Msg("Ignoring unarmed or empty profile")
		return
	}

	if ra, ok := c.voltage.(RegimeAware); ok {
		ra.SetRegime(p.Regime)
	}
	if ra, ok := c.current.(RegimeAware); ok {
		ra.SetRegime(p.Regime)
	}

	logger.Info().
		Str("regime", p.Regime.String()).
		Float64("start", p.VoltageStart).
		Float64("end", p.VoltageEnd).
		Float64("resolution", p.VoltageResolution).
		Uint32("samples", p.NumSamples).
		Msg("Sweep started")

	c.status.start()
	if c.indicator != nil {
		c.indicator.Scanning(true)
		defer c.indicator.Scanning(false)
	}

	for p.SampleID = 0; p.SampleID < p.NumSamples; p.SampleID++ {
		if ctx.Err() != nil || !c.status.Running() {
			return
		}
		c.status.step(p.SampleID)

		setpoint := p.VoltageStart + float64(p.SampleID)*p.VoltageResolution
		if err := c.dac.Set(setpoint); err != nil {
			logger.Error().Err(err).Float64("setpoint", setpoint).Msg("Control output write failed")
			c.faults.Raise(protocol.MsgSweepFault, protocol.FaultBadState, uint16(p.SampleID))
			return
		}

		if !sleepCtx(ctx, c.settle) {
			return
		}

		volts, err := c.voltage.Sample()
		if err != nil {
			logger.Error().Err(err).Msg("Voltage sample failed")
			c.faults.Raise(protocol.MsgSweepFault, protocol.FaultBadState, uint16(p.SampleID))
			return
		}
		amps, err := c.current.Sample()
		if err != nil {
			logger.Error().Err(err).Msg("Current sample failed")
			c.faults.Raise(protocol.MsgSweepFault, protocol.FaultBadState, uint16(p.SampleID))
			return
		}

		c.emitter.EmitResult(protocol.MsgSweepResult, protocol.MeasureVoltage, p.SampleID, volts)
		c.emitter.EmitResult(protocol.MsgSweepResult, protocol.MeasureCurrent, p.SampleID, amps)
	}

	p.Armed = false
	c.status.finish()
	logger.Info().Uint32("samples", p.NumSamples).Msg("Sweep complete")
}

// sleepCtx blocks for d or until the context is canceled. Returns false
// on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
