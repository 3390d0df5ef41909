package evsewifi

import (
	"github.com/futurehomeno/cliffhanger/adapter"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evse"
)

type connector struct {
	charger Charger
	client  evse.Client
}

// NewConnector returns a connector reporting the charger as reachable while its polls succeed.
func NewConnector(charger Charger, client evse.Client) adapter.Connector {
	return &connector{
		charger: charger,
		client:  client,
	}
}

func (c *connector) Connectivity() *adapter.ConnectivityDetails {
	ret := adapter.ConnectivityDetails{
		ConnectionStatus: adapter.ConnectionStatusDown,
		ConnectionType:   adapter.ConnectionTypeIndirect,
	}

	if c.charger.Reachable() {
		ret.ConnectionStatus = adapter.ConnectionStatusUp
	}

	return &ret
}

func (c *connector) Ping() *adapter.PingDetails {
	if err := c.client.Ping(); err != nil {
		log.WithError(err).Debug("connector: charger did not answer the ping")

		return &adapter.PingDetails{
			Status: adapter.PingResultFailed,
		}
	}

	return &adapter.PingDetails{
		Status: adapter.PingResultSuccess,
	}
}
