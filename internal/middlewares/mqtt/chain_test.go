package mqtt_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/gps-tracker/internal/metrics"
	mqtt_middleware "github.com/benmeehan/gps-tracker/internal/middlewares/mqtt"
	"github.com/benmeehan/gps-tracker/internal/mocks"
)

func TestChainedMQTTClient_PublishWithoutMiddlewares(t *testing.T) {
	// Setup
	mockClient := new(mocks.MockMQTTClient)
	mockClient.On("Publish", "tracker/snapshots/dev-1", byte(1), false, []byte("{}")).
		Return(mocks.NewCompletedToken(nil))
	chain := mqtt_middleware.NewChainedMQTTClient(mockClient, nil)

	// Execute
	err := chain.Publish("tracker/snapshots/dev-1", 1, false, []byte("{}"))

	// Assert
	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestChainedMQTTClient_MetricsMiddleware(t *testing.T) {
	// Setup
	m := metrics.New()
	mockClient := new(mocks.MockMQTTClient)
	mockClient.On("Publish", "ok/topic", byte(0), false, mock.Anything).Return(mocks.NewCompletedToken(nil))
	mockClient.On("Publish", "bad/topic", byte(0), false, mock.Anything).Return(mocks.NewCompletedToken(errors.New("broker down")))

	chain := mqtt_middleware.NewChainedMQTTClient(mockClient, []mqtt_middleware.MQTTMiddleware{
		mqtt_middleware.NewMQTTMetricsMiddleware(m, zerolog.Nop()),
	})
	assert.NoError(t, chain.Init(nil))

	// Execute
	okErr := chain.Publish("ok/topic", 0, false, []byte("a"))
	badErr := chain.Publish("bad/topic", 0, false, []byte("b"))

	// Assert
	assert.NoError(t, okErr)
	assert.EqualError(t, badErr, "broker down")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Publishes.WithLabelValues("ok/topic", metrics.PublishSucceeded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Publishes.WithLabelValues("bad/topic", metrics.PublishFailed)))
}

func TestChainedMQTTClient_SubscribeAndUnsubscribe(t *testing.T) {
	// Setup
	mockClient := new(mocks.MockMQTTClient)
	mockClient.On("Subscribe", "tracker/control/dev-1", byte(1), mock.Anything).Return(mocks.NewCompletedToken(nil))
	mockClient.On("Unsubscribe", []string{"tracker/control/dev-1"}).Return(mocks.NewCompletedToken(nil))

	chain := mqtt_middleware.NewChainedMQTTClient(mockClient, []mqtt_middleware.MQTTMiddleware{
		mqtt_middleware.NewMQTTMetricsMiddleware(metrics.New(), zerolog.Nop()),
	})

	// Execute
	subErr := chain.Subscribe("tracker/control/dev-1", 1, nil)
	unsubErr := chain.Unsubscribe("tracker/control/dev-1")

	// Assert
	assert.NoError(t, subErr)
	assert.NoError(t, unsubErr)
	mockClient.AssertExpectations(t)
}

func TestChainedMQTTClient_InitFailure(t *testing.T) {
	mockClient := new(mocks.MockMQTTClient)
	failing := new(mocks.MockMQTTMiddleware)
	failing.On("SetNext", mock.Anything).Return()
	failing.On("Init", "params").Return(errors.New("boom"))

	chain := mqtt_middleware.NewChainedMQTTClient(mockClient, []mqtt_middleware.MQTTMiddleware{failing})

	err := chain.Init("params")

	assert.ErrorContains(t, err, "boom")
}
