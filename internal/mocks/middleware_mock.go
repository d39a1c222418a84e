package mocks

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"

	mqtt_middleware "github.com/benmeehan/gps-tracker/internal/middlewares/mqtt"
)

// MockMQTTMiddleware is a mock implementation of the MQTTMiddleware interface
type MockMQTTMiddleware struct {
	mock.Mock
}

func (m *MockMQTTMiddleware) Init(params interface{}) error {
	args := m.Called(params)
	return args.Error(0)
}

func (m *MockMQTTMiddleware) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	args := m.Called(topic, qos, retained, payload)
	return args.Error(0)
}

func (m *MockMQTTMiddleware) Subscribe(topic string, qos byte, callback mqtt.MessageHandler) error {
	args := m.Called(topic, qos, callback)
	return args.Error(0)
}

func (m *MockMQTTMiddleware) Unsubscribe(topics ...string) error {
	args := m.Called(topics)
	return args.Error(0)
}

func (m *MockMQTTMiddleware) SetNext(next mqtt_middleware.MQTTMiddleware) {
	m.Called(next)
}
