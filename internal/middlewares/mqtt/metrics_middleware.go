package mqtt

import (
	"errors"

	mqttLib "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/benmeehan/gps-tracker/internal/metrics"
)

// MQTTMetricsMiddleware counts publishes per topic and logs failures.
type MQTTMetricsMiddleware struct {
	next    MQTTMiddleware
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewMQTTMetricsMiddleware creates a new metrics middleware instance.
func NewMQTTMetricsMiddleware(m *metrics.Metrics, logger zerolog.Logger) *MQTTMetricsMiddleware {
	return &MQTTMetricsMiddleware{
		metrics: m,
		logger:  logger,
	}
}

// SetNext sets the next middleware in the chain.
func (m *MQTTMetricsMiddleware) SetNext(next MQTTMiddleware) {
	m.next = next
}

// Init has nothing to prepare.
func (m *MQTTMetricsMiddleware) Init(interface{}) error {
	return nil
}

// Publish forwards the message and records the outcome.
func (m *MQTTMetricsMiddleware) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	if m.next == nil {
		return errors.New("metrics middleware has no next handler")
	}

	err := m.next.Publish(topic, qos, retained, payload)
	if err != nil {
		m.metrics.Publishes.WithLabelValues(topic, metrics.PublishFailed).Inc()
		m.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish MQTT message")
		return err
	}

	m.metrics.Publishes.WithLabelValues(topic, metrics.PublishSucceeded).Inc()
	m.logger.Debug().Str("topic", topic).Msg("Message published successfully")
	return nil
}

// Subscribe subscribes to a topic with the provided callback.
func (m *MQTTMetricsMiddleware) Subscribe(topic string, qos byte, callback mqttLib.MessageHandler) error {
	if m.next == nil {
		return errors.New("metrics middleware has no next handler")
	}
	m.logger.Debug().Str("topic", topic).Msg("Subscribing to topic")
	return m.next.Subscribe(topic, qos, callback)
}

// Unsubscribe unsubscribes from the specified topics.
func (m *MQTTMetricsMiddleware) Unsubscribe(topics ...string) error {
	if m.next == nil {
		return errors.New("metrics middleware has no next handler")
	}
	m.logger.Debug().Strs("topics", topics).Msg("Unsubscribing from topics")
	return m.next.Unsubscribe(topics...)
}
