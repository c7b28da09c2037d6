package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lhrsolar/curvetracer/internal/archive"
	"github.com/lhrsolar/curvetracer/internal/canbus"
	"github.com/lhrsolar/curvetracer/internal/config"
	"github.com/lhrsolar/curvetracer/internal/dispatch"
	"github.com/lhrsolar/curvetracer/internal/fault"
	"github.com/lhrsolar/curvetracer/internal/framing"
	"github.com/lhrsolar/curvetracer/internal/hw"
	"github.com/lhrsolar/curvetracer/internal/logger"
	"github.com/lhrsolar/curvetracer/internal/protocol"
	"github.com/lhrsolar/curvetracer/internal/sweep"
	"github.com/lhrsolar/curvetracer/internal/telemetry"
)

// The heartbeat light toggles every 500 ms regardless of tick rate.
const heartbeatPeriod = 500 * time.Millisecond

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	serialPort, err := hw.OpenSerialPort(cfg.SerialPort, cfg.BaudRate)
	if err != nil {
		logger.Fatal().Err(err).Str("port", cfg.SerialPort).Msg("failed to open serial port")
	}
	defer serialPort.Close()

	bus, err := canbus.OpenSocketCAN(ctx, cfg.CANInterface)
	if err != nil {
		logger.Fatal().Err(err).Str("interface", cfg.CANInterface).Msg("failed to open CAN interface")
	}
	defer bus.Close()

	store, err := archive.NewStore(archive.Config{
		DBPath:  cfg.ArchiveDB,
		Enabled: cfg.Archive,
	}, logger.Default())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open sweep archive")
	}
	defer store.Close()

	publisher, err := telemetry.NewPublisher(telemetry.Config{Broker: cfg.Broker})
	if err != nil {
		logger.Fatal().Err(err).Str("broker", cfg.Broker).Msg("failed to connect telemetry bridge")
	}
	defer publisher.Close()

	panel := hw.NewPanel(maybeLED(cfg.HeartbeatLED), maybeLED(cfg.ScanningLED), maybeLED(cfg.FaultLED))

	pipeline := dispatch.NewPipeline(cfg.QueueSize, serialPort, bus, store, publisher)
	status := &sweep.Status{}
	sink := fault.NewSink(pipeline, status, panel, cancel)

	ring := framing.NewRing(cfg.RingCapacity)
	scanner := framing.NewScanner(ring, serialPort)
	gateway := canbus.NewGateway(bus, pipeline, sink, status)

	profiles := make(chan protocol.Profile, 1)
	controller := sweep.NewController(sweep.Config{
		Profiles:  profiles,
		DAC:       hw.NewIIODAC(cfg.DACPath),
		Voltage:   hw.NewVoltageSampler(hw.NewIIOADC(cfg.VoltageADCPath), cfg.SubSamples, 0),
		Current:   hw.NewCurrentSampler(hw.NewIIOADC(cfg.CurrentADCPath), cfg.SubSamples, 0),
		Emitter:   pipeline,
		Faults:    sink,
		Status:    status,
		Settle:    time.Duration(cfg.SettleTime) * time.Millisecond,
		Cooldown:  time.Duration(cfg.Cooldown) * time.Millisecond,
		Indicator: panel,
	})

	errCh := make(chan error, 3)
	go func() { errCh <- pipeline.Run(ctx) }()
	go func() { errCh <- controller.Run(ctx) }()
	go func() { errCh <- pollLoop(ctx, scanner, gateway, panel, profiles, sink) }()

	for i := 0; i < 3; i++ {
		if err := <-errCh; err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("task stopped with error")
		}
	}

	if rec := sink.Fault(); rec != nil {
		// Terminal halt: the fault light stays asserted and the node
		// services nothing until the operator intervenes.
		logger.Error().
			Str("code", rec.Code.String()).
			Uint16("context", rec.Context).
			Msg("Node halted on fault")
		waitForSignal()
	}

	logger.Info().Msg("Exiting...")
}

// pollLoop runs the frame scanner and the CAN gateway on a fixed tick,
// pulling at most one byte and one frame per tick.
func pollLoop(
	ctx context.Context,
	scanner *framing.Scanner,
	gateway *canbus.Gateway,
	panel *hw.Panel,
	profiles chan<- protocol.Profile,
	sink *fault.Sink,
) error {
	tick := time.Duration(cfg.TickInterval) * time.Millisecond
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	heartbeatTicks := int(heartbeatPeriod / tick)
	if heartbeatTicks < 1 {
		heartbeatTicks = 1
	}
	tickCount := 0

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tickCount++
			if tickCount%heartbeatTicks == 0 {
				panel.HeartbeatToggle()
			}

			frame, err := scanner.Tick()
			if err != nil {
				raiseWire(sink, protocol.MsgSweepProfile, err)
				continue
			}
			if frame != nil {
				profile, err := protocol.DecodeProfile(frame)
				if err != nil {
					raiseWire(sink, protocol.MsgSweepProfile, err)
					continue
				}
				select {
				case profiles <- profile:
					logger.Debug().Msg("Profile armed")
				default:
					logger.Warn().Msg("Profile dropped, sweep already armed")
				}
			}

			gateway.Tick()
		}
	}
}

func raiseWire(sink *fault.Sink, msgID uint16, err error) {
	var context uint16
	if we, ok := err.(*protocol.WireError); ok {
		context = we.Context
	}
	sink.Raise(msgID, protocol.FaultCodeOf(err), context)
}

func maybeLED(path string) hw.LED {
	if path == "" {
		return nil
	}

	return hw.NewSysfsLED(path)
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func waitForSignal() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
}
