package provisioning

import (
	"context"
	"fmt"

	"github.com/nerrad567/zen-display/internal/infrastructure/mqtt"
)

// Broker is the part of mqtt.Client the transport uses.
type Broker interface {
	Topics() mqtt.Topics
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	PublishRetained(topic string, payload []byte) error
}

// MQTTTransport bridges the channel onto the broker: the pairing app (or a
// gateway relaying its radio link) writes credentials to
// zendisplay/{hw}/provisioning/credentials, and the slots are published
// retained under the same prefix.
type MQTTTransport struct {
	broker Broker
	qos    byte
	topics mqtt.Topics
}

// NewMQTTTransport returns a transport on broker, subscribing at qos.
func NewMQTTTransport(broker Broker, qos byte) *MQTTTransport {
	return &MQTTTransport{broker: broker, qos: qos, topics: broker.Topics()}
}

func (t *MQTTTransport) Start(_ context.Context, sink Sink) error {
	err := t.broker.Subscribe(t.topics.ProvisioningCredentials(), t.qos, func(_ string, payload []byte) error {
		if !sink(payload) {
			return fmt.Errorf("credentials write of %d bytes discarded", len(payload))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribing to credentials: %w", err)
	}
	return nil
}

func (t *MQTTTransport) PublishPairing(p Pairing) error {
	return t.broker.PublishRetained(t.topics.ProvisioningPairing(), p.JSON())
}

func (t *MQTTTransport) PublishStatus(s Status) error {
	return t.broker.PublishRetained(t.topics.ProvisioningStatus(), []byte(s))
}

func (t *MQTTTransport) Rename(name string) error {
	return t.broker.PublishRetained(t.topics.ProvisioningName(), []byte(name))
}

// Close drops the credentials subscription. The broker connection itself
// belongs to the caller.
func (t *MQTTTransport) Close() error {
	return t.broker.Unsubscribe(t.topics.ProvisioningCredentials())
}
