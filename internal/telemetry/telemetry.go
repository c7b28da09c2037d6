// Package telemetry mirrors result records to the sensor network's
// MQTT broker so host-side tooling can watch sweeps live without a
// serial connection.
package telemetry

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lhrsolar/curvetracer/internal/errors"
	"github.com/lhrsolar/curvetracer/internal/logger"
	"github.com/lhrsolar/curvetracer/internal/protocol"
)

const (
	connectTimeout = 5 * time.Second
	publishQoS     = 0
	topicPrefix    = "curvetracer"
)

// Publisher mirrors result records to the broker.
type Publisher interface {
	PublishResult(mt protocol.MeasurementType, sampleID uint32, value float64)
	Close() error
}

// Config carries the broker connection settings. An empty Broker
// disables the bridge.
type Config struct {
	Broker   string
	ClientID string
}

type publisher struct {
	client mqtt.Client
}

// NewPublisher connects to the broker, or returns a no-op publisher
// when no broker is configured.
func NewPublisher(cfg Config) (Publisher, error) {
	errFactory := errors.New()

	if cfg.Broker == "" {
		logger.Debug().Msg("No telemetry broker configured, using no-op publisher")
		return &noopPublisher{}, nil
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "curvetracer"
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) || token.Error() != nil {
		return nil, errFactory.Wrap(errors.ErrUnavailable, token.Error())
	}

	logger.Info().Str("broker", cfg.Broker).Msg("Telemetry bridge connected")

	return &publisher{client: client}, nil
}

// PublishResult emits one record on the measurement's topic. Delivery
// is best effort; the bridge never stalls the dispatch worker.
func (p *publisher) PublishResult(mt protocol.MeasurementType, sampleID uint32, value float64) {
	topic := fmt.Sprintf("%s/%s", topicPrefix, mt)
	payload := fmt.Sprintf("%d,%.3f", sampleID, value)
	p.client.Publish(topic, publishQoS, false, payload)
}

func (p *publisher) Close() error {
	p.client.Disconnect(250)

	return nil
}

type noopPublisher struct{}

func (*noopPublisher) PublishResult(protocol.MeasurementType, uint32, float64) {}
func (*noopPublisher) Close() error                                            { return nil }
