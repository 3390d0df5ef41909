package config

import (
	"strings"
	"sync"
	"time"

	"github.com/futurehomeno/cliffhanger/config"
	"github.com/futurehomeno/cliffhanger/storage"
	"github.com/pkg/errors"
)

const (
	defaultPollingInterval    = 10 * time.Second
	defaultSignOfLifeInterval = 5 * time.Minute
	defaultProductName        = "EVSE-WiFi"
	defaultConnection         = "EVSE-WiFi JSON API"
)

// Mode is the operating mode reported to the energy management system.
type Mode int

const (
	ModeManual Mode = iota
	ModeAuto
	ModeScheduled
)

var modeNames = map[Mode]string{
	ModeManual:    "manual",
	ModeAuto:      "auto",
	ModeScheduled: "scheduled",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}

	return "unknown"
}

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	for mode, n := range modeNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return mode, nil
		}
	}

	return 0, errors.Errorf("unsupported mode: %s", name)
}

// Position tells on which side of the inverter the charger is wired.
type Position int

const (
	PositionACOutput Position = iota
	PositionACInput
)

// Config is a model containing all application configuration settings.
type Config struct {
	config.Default

	Host               string   `json:"host"`
	DeviceInstance     int      `json:"deviceInstance"`
	Position           Position `json:"acPosition"`
	Mode               Mode     `json:"automaticMode"`
	ProductName        string   `json:"productName"`
	CustomName         string   `json:"customName"`
	PollingInterval    string   `json:"pollingInterval"`
	SignOfLifeInterval string   `json:"signOfLifeInterval"`
	HTTPTimeout        string   `json:"httpTimeout"`
	MetricsAddress     string   `json:"metricsAddress"`
}

// New creates new instance of a configuration object.
func New(workDir string) *Config {
	return &Config{
		Default: config.NewDefault(workDir),
	}
}

// Factory is a factory method returning the configuration object without default settings.
func Factory() interface{} {
	return &Config{}
}

// Service is a configuration service responsible for:
// - providing concurrency safe access to settings
// - persistence of settings
type Service struct {
	storage.Storage[interface{}]
	lock *sync.RWMutex

	timingWatchers []chan struct{}
}

// NewService creates a new configuration service.
func NewService(storage storage.Storage[interface{}]) *Service {
	return &Service{
		Storage: storage,
		lock:    &sync.RWMutex{},
	}
}

// WatchTimings returns a channel signalled whenever the polling or sign of life interval is set.
// Signals are coalesced, the receiver is expected to read the current values itself.
func (cs *Service) WatchTimings() <-chan struct{} {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	ch := make(chan struct{}, 1)
	cs.timingWatchers = append(cs.timingWatchers, ch)

	return ch
}

// notifyTimings must be called with the lock held.
func (cs *Service) notifyTimings() {
	for _, ch := range cs.timingWatchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (cs *Service) model() *Config {
	return cs.Storage.Model().(*Config) //nolint:forcetypeassert
}

// GetWorkDir allows to safely access a configuration setting.
func (cs *Service) GetWorkDir() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.model().WorkDir
}

// SetLogLevel allows to safely set and persist configuration settings.
func (cs *Service) SetLogLevel(logLevel string) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.model().LogLevel = logLevel

	return cs.Storage.Save()
}

// GetHost allows to safely access a configuration setting.
func (cs *Service) GetHost() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.model().Host
}

// SetHost allows to safely set and persist configuration settings.
func (cs *Service) SetHost(host string) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.model().Host = strings.TrimSpace(host)

	return cs.Storage.Save()
}

// GetBaseURL returns the charger base URL built from the configured host.
func (cs *Service) GetBaseURL() string {
	host := cs.GetHost()
	if host == "" || strings.Contains(host, "://") {
		return strings.TrimSuffix(host, "/")
	}

	return "http://" + strings.TrimSuffix(host, "/")
}

// GetDeviceInstance allows to safely access a configuration setting.
func (cs *Service) GetDeviceInstance() int {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.model().DeviceInstance
}

// GetPosition allows to safely access a configuration setting.
func (cs *Service) GetPosition() Position {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.model().Position
}

// GetMode allows to safely access a configuration setting.
func (cs *Service) GetMode() Mode {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.model().Mode
}

// SetMode allows to safely set and persist configuration settings.
func (cs *Service) SetMode(name string) error {
	mode, err := ParseMode(name)
	if err != nil {
		return err
	}

	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.model().Mode = mode

	return cs.Storage.Save()
}

// GetProductName allows to safely access a configuration setting.
func (cs *Service) GetProductName() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if name := cs.model().ProductName; name != "" {
		return name
	}

	return defaultProductName
}

// GetCustomName allows to safely access a configuration setting.
func (cs *Service) GetCustomName() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if name := cs.model().CustomName; name != "" {
		return name
	}

	if name := cs.model().ProductName; name != "" {
		return name
	}

	return defaultProductName
}

// GetConnection returns the connection description published on the bus.
func (cs *Service) GetConnection() string {
	return defaultConnection
}

// GetPollingInterval allows to safely access a configuration setting.
func (cs *Service) GetPollingInterval() time.Duration {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	duration, err := time.ParseDuration(cs.model().PollingInterval)
	if err != nil || duration <= 0 {
		return defaultPollingInterval
	}

	return duration
}

// SetPollingInterval allows to safely set and persist configuration settings.
func (cs *Service) SetPollingInterval(interval time.Duration) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.model().PollingInterval = interval.String()
	cs.notifyTimings()

	return cs.Storage.Save()
}

// GetSignOfLifeInterval allows to safely access a configuration setting.
// Zero means the sign of life log is disabled.
func (cs *Service) GetSignOfLifeInterval() time.Duration {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	raw := cs.model().SignOfLifeInterval
	if raw == "" {
		return defaultSignOfLifeInterval
	}

	duration, err := time.ParseDuration(raw)
	if err != nil || duration < 0 {
		return defaultSignOfLifeInterval
	}

	return duration
}

// SetSignOfLifeInterval allows to safely set and persist configuration settings.
func (cs *Service) SetSignOfLifeInterval(interval time.Duration) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.model().SignOfLifeInterval = interval.String()
	cs.notifyTimings()

	return cs.Storage.Save()
}

// GetHTTPTimeout allows to safely access a configuration setting.
// Zero leaves the HTTP client without a timeout.
func (cs *Service) GetHTTPTimeout() time.Duration {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	duration, err := time.ParseDuration(cs.model().HTTPTimeout)
	if err != nil || duration < 0 {
		return 0
	}

	return duration
}

// SetHTTPTimeout allows to safely set and persist configuration settings.
func (cs *Service) SetHTTPTimeout(timeout time.Duration) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.model().HTTPTimeout = timeout.String()

	return cs.Storage.Save()
}

// GetMetricsAddress allows to safely access a configuration setting.
func (cs *Service) GetMetricsAddress() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.model().MetricsAddress
}
