package evsewifi_test

import (
	"testing"

	"github.com/futurehomeno/cliffhanger/adapter"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evsewifi"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/test/mocks"
)

func TestConnector_Connectivity(t *testing.T) {
	t.Parallel()

	charger := newFakeCharger(nil)
	c := evsewifi.NewConnector(charger, mocks.NewEVSEClient(t))

	assert.Equal(t, &adapter.ConnectivityDetails{
		ConnectionStatus: adapter.ConnectionStatusUp,
		ConnectionType:   adapter.ConnectionTypeIndirect,
	}, c.Connectivity())

	charger.reachable = false

	assert.Equal(t, adapter.ConnectionStatusDown, c.Connectivity().ConnectionStatus)
}

func TestConnector_Ping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want adapter.PingResult
	}{
		{name: "charger answers", want: adapter.PingResultSuccess},
		{name: "charger unreachable", err: errors.New("connection refused"), want: adapter.PingResultFailed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := mocks.NewEVSEClient(t)
			client.On("Ping").Return(tt.err).Once()

			got := evsewifi.NewConnector(newFakeCharger(nil), client).Ping()

			assert.Equal(t, tt.want, got.Status)
		})
	}
}
