package evcharger

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/bus"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/config"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evse"
)

// Adapter bridges an EVSE-WiFi charger to the bus. It owns the poll and sign of life timers
// and serializes polls, sign of life logs and inbound writes on a single goroutine.
type Adapter struct {
	mu sync.Mutex

	cfgService *config.Service
	client     evse.Client
	registry   bus.Registry
	timings    <-chan struct{}

	registered bool
	running    bool
	done       chan struct{}
	writes     chan *writeRequest
	wg         sync.WaitGroup

	// lastUpdate is only accessed from the loop goroutine.
	lastUpdate time.Time
	reachable  atomic.Bool
}

type writeRequest struct {
	path   string
	value  interface{}
	result chan bool
}

// New creates a new charger adapter.
func New(cfgService *config.Service, client evse.Client, registry bus.Registry) *Adapter {
	return &Adapter{
		cfgService: cfgService,
		client:     client,
		registry:   registry,
		timings:    cfgService.WatchTimings(),
	}
}

// Start registers the bus paths and starts the poll loop.
func (a *Adapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		return nil
	}

	if !a.registered {
		if err := a.register(); err != nil {
			return errors.Wrap(err, "evcharger: failed to register bus paths")
		}

		a.registered = true
	}

	a.done = make(chan struct{})
	a.writes = make(chan *writeRequest)
	a.running = true

	a.wg.Add(1)

	go a.run(a.done, a.writes)

	log.WithField("service", ServiceName(a.cfgService.GetDeviceInstance())).Info("evcharger: adapter started")

	return nil
}

// Stop stops the poll loop, waiting for the action in progress to finish.
func (a *Adapter) Stop() error {
	a.mu.Lock()

	if !a.running {
		a.mu.Unlock()

		return nil
	}

	a.running = false
	close(a.done)
	a.mu.Unlock()

	a.wg.Wait()

	log.Info("evcharger: adapter stopped")

	return nil
}

func (a *Adapter) run(done chan struct{}, writes chan *writeRequest) {
	defer a.wg.Done()

	t := newTimers(a.cfgService.GetPollingInterval(), a.cfgService.GetSignOfLifeInterval())
	defer t.stop()

	a.poll()

	for {
		select {
		case <-done:
			return
		case <-t.poll.C:
			a.poll()
		case <-t.signOfLifeC():
			a.signOfLife()
		case <-a.timings:
			t.update(a.cfgService.GetPollingInterval(), a.cfgService.GetSignOfLifeInterval())
		case req := <-writes:
			req.result <- a.commitWrite(req.path, req.value)
		}
	}
}

// Write sends a value of a writeable path to the charger, as if written on the bus.
// The value is stored on success.
func (a *Adapter) Write(path string, value interface{}) bool {
	return a.onChange(path, value)
}

// Reachable reports whether the last poll of the charger succeeded.
func (a *Adapter) Reachable() bool {
	return a.reachable.Load()
}

// Value returns the current bus value of a path.
func (a *Adapter) Value(path string) (interface{}, bool) {
	return a.registry.Get(path)
}

// onChange forwards a bus write to the loop and waits for its result.
func (a *Adapter) onChange(path string, value interface{}) bool {
	a.mu.Lock()
	running, done, writes := a.running, a.done, a.writes
	a.mu.Unlock()

	if !running {
		log.WithField("path", path).Warn("evcharger: write rejected, adapter is not running")

		return false
	}

	req := &writeRequest{path: path, value: value, result: make(chan bool, 1)}

	select {
	case writes <- req:
	case <-done:
		return false
	}

	select {
	case ok := <-req.result:
		return ok
	case <-done:
		return false
	}
}

// commitWrite stores an accepted write on the loop goroutine so a later poll always wins.
func (a *Adapter) commitWrite(path string, value interface{}) bool {
	if !a.handleWrite(path, value) {
		return false
	}

	if err := a.registry.Set(path, value); err != nil {
		log.WithError(err).WithField("path", path).Error("evcharger: failed to store written value")
	}

	return true
}

func (a *Adapter) register() error {
	instance := a.cfgService.GetDeviceInstance()

	items := []bus.Item{
		{Path: PathMgmtProcessName, Initial: filepath.Base(os.Args[0])},
		{Path: PathMgmtProcessVersion, Initial: "Unknown version, and running on Go " + runtime.Version()},
		{Path: PathMgmtConnection, Initial: a.cfgService.GetConnection()},

		{Path: PathDeviceInstance, Initial: instance},
		{Path: PathProductID, Initial: productID},
		{Path: PathProductName, Initial: a.cfgService.GetProductName()},
		{Path: PathCustomName, Initial: a.cfgService.GetCustomName()},
		{Path: PathHardwareVersion, Initial: hardwareVersion},
		{Path: PathFirmwareVersion, Initial: firmwareVersion},
		{Path: PathSerial, Initial: serial},
		{Path: PathConnected, Initial: 1},
		{Path: PathUpdateIndex, Initial: 0},
		{Path: PathPosition, Initial: int(a.cfgService.GetPosition())},

		{Path: PathStatus, Initial: int(StatusDisconnected)},
		{Path: PathMode, Initial: int(a.cfgService.GetMode())},
	}

	for _, w := range []struct {
		path      string
		formatter bus.Formatter
	}{
		{PathPower, bus.Watt},
		{PathL1Power, bus.Watt},
		{PathL2Power, bus.Watt},
		{PathL3Power, bus.Watt},
		{PathEnergyForward, bus.KiloWattHour},
		{PathChargingTime, bus.Second},
		{PathVoltage, bus.Volt},
		{PathCurrent, bus.Ampere},
		{PathSetCurrent, bus.Ampere},
		{PathMaxCurrent, bus.Ampere},
		{PathStartStop, bus.Plain},
	} {
		items = append(items, bus.Item{
			Path:      w.path,
			Initial:   0,
			Formatter: w.formatter,
			Writeable: true,
			OnChange:  a.onChange,

			HandlerCommits: true,
		})
	}

	for _, item := range items {
		if err := a.registry.Register(item); err != nil {
			return errors.Wrapf(err, "failed to register %s", item.Path)
		}
	}

	return nil
}
