package mqtt

import (
	"fmt"

	"github.com/benmeehan/gps-tracker/pkg/mqtt"
	mqttLib "github.com/eclipse/paho.mqtt.golang"
)

// ChainedMQTTClient wraps an MQTT client with a middleware chain.
type ChainedMQTTClient struct {
	head        MQTTMiddleware
	middlewares []MQTTMiddleware
}

// NewChainedMQTTClient links middlewares in order, the last one handing off to mqttClient.
func NewChainedMQTTClient(mqttClient mqtt.MQTTClient, middlewares []MQTTMiddleware) *ChainedMQTTClient {
	var next MQTTMiddleware = &directMQTTClient{mqttClient: mqttClient}
	for i := len(middlewares) - 1; i >= 0; i-- {
		middlewares[i].SetNext(next)
		next = middlewares[i]
	}
	return &ChainedMQTTClient{
		head:        next,
		middlewares: middlewares,
	}
}

// Init initializes all middlewares in the chain.
func (c *ChainedMQTTClient) Init(params interface{}) error {
	for _, mw := range c.middlewares {
		if err := mw.Init(params); err != nil {
			return fmt.Errorf("failed to init middleware: %w", err)
		}
	}
	return nil
}

// Publish sends a message through the middleware chain.
func (c *ChainedMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	return c.head.Publish(topic, qos, retained, payload)
}

// Subscribe subscribes through the middleware chain.
func (c *ChainedMQTTClient) Subscribe(topic string, qos byte, callback mqttLib.MessageHandler) error {
	return c.head.Subscribe(topic, qos, callback)
}

// Unsubscribe unsubscribes through the middleware chain.
func (c *ChainedMQTTClient) Unsubscribe(topics ...string) error {
	return c.head.Unsubscribe(topics...)
}

// SetNext is a no-op, the chain is always the entry point.
func (c *ChainedMQTTClient) SetNext(MQTTMiddleware) {}

// directMQTTClient terminates the chain and waits on the client's tokens.
type directMQTTClient struct {
	mqttClient mqtt.MQTTClient
}

func (d *directMQTTClient) Init(interface{}) error { return nil }

func (d *directMQTTClient) SetNext(MQTTMiddleware) {}

func (d *directMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	token := d.mqttClient.Publish(topic, qos, retained, payload)
	token.Wait()
	return token.Error()
}

func (d *directMQTTClient) Subscribe(topic string, qos byte, callback mqttLib.MessageHandler) error {
	token := d.mqttClient.Subscribe(topic, qos, callback)
	token.Wait()
	return token.Error()
}

func (d *directMQTTClient) Unsubscribe(topics ...string) error {
	token := d.mqttClient.Unsubscribe(topics...)
	token.Wait()
	return token.Error()
}
