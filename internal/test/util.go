package test

import (
	"testing"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/config"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/test/fakes"
)

const (
	// DeviceInstance is the device instance used in tests.
	DeviceInstance = 40
	// Host is the charger host used in tests.
	Host = "192.168.1.50"
)

// NewConfigService returns a configuration service backed by an in-memory storage.
// The modifier can adjust the default test configuration.
func NewConfigService(t *testing.T, modify func(cfg *config.Config)) *config.Service {
	t.Helper()

	cfg := &config.Config{
		Host:               Host,
		DeviceInstance:     DeviceInstance,
		Mode:               config.ModeAuto,
		PollingInterval:    "10s",
		SignOfLifeInterval: "5m",
	}

	if modify != nil {
		modify(cfg)
	}

	return config.NewService(fakes.NewConfigStorage(cfg, config.Factory))
}
