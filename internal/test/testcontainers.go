package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mqttBrokerImage = "eclipse-mosquitto:1.6.8" //nolint:misspell
	mqttBrokerPort  = "1883/tcp"
)

// SetupMQTTContainer starts a disposable MQTT broker for the duration of the test and returns its tcp:// endpoint.
func SetupMQTTContainer(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        mqttBrokerImage,
			ExposedPorts: []string{mqttBrokerPort},
			WaitingFor: wait.ForAll(
				wait.ForLog("Opening ipv4 listen socket on port 1883"),
				wait.ForListeningPort(mqttBrokerPort),
			),
		},
	})
	require.NoError(t, err, "failed to start MQTT broker")

	t.Cleanup(func() {
		require.NoError(t, broker.Terminate(context.Background()))
	})

	endpoint, err := broker.Endpoint(ctx, "tcp")
	require.NoError(t, err)

	return endpoint
}
