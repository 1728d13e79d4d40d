package notify

import (
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sgcd/core"
)

const (
	publishTimeout = 5 * time.Second
	connectTimeout = 10 * time.Second
)

// ClientFactory creates the MQTT client, replaceable in tests
type ClientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// DefaultClientFactory creates a paho client
var DefaultClientFactory ClientFactory = mqtt.NewClient

// MQTT publishes event names to a broker topic
type MQTT struct {
	client        mqtt.Client
	clientFactory ClientFactory
	broker        string
	topic         string
}

// NewMQTT creates a publisher for broker ("host:port") and topic
func NewMQTT(broker, topic string) *MQTT {
	return &MQTT{
		broker:        broker,
		topic:         topic,
		clientFactory: DefaultClientFactory,
	}
}

// Connect connects to the broker. If the broker does not answer within
// connectTimeout the client keeps retrying in the background. The client
// also reconnects on its own after a lost connection.
func (m *MQTT) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s", m.broker))
	opts.SetClientID("sgcd-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	opts.OnConnect = func(_ mqtt.Client) {
		log.Info().Msgf("mqtt notify: connected to %s", m.broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt notify: connection lost")
	}

	m.client = m.clientFactory(opts)
	token := m.client.Connect()
	done := token.WaitTimeout(connectTimeout)
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	if !done {
		log.Warn().Str("broker", m.broker).Msg("mqtt notify: broker not reachable yet, retrying in background")
	}
	return nil
}

// Send implements Sender
func (m *MQTT) Send(ev core.Event) error {
	if m.client == nil {
		return errors.New("mqtt notify: not connected")
	}

	token := m.client.Publish(m.topic, 0, false, string(ev))
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt notify: publish %s timed out", ev)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt notify: failed to publish %s: %w", ev, err)
	}
	return nil
}

// Close disconnects from the broker
func (m *MQTT) Close() {
	if m.client != nil && m.client.IsConnected() {
		log.Debug().Msg("mqtt notify: disconnecting")
		m.client.Disconnect(250)
	}
}
