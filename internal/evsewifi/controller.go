package evsewifi

import (
	"github.com/futurehomeno/cliffhanger/adapter/service/chargepoint"
	"github.com/futurehomeno/cliffhanger/adapter/service/numericmeter"
	"github.com/pkg/errors"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evcharger"
)

// Charger is the bus bridge of the charger. Commands go through it so they follow the same path as bus writes.
type Charger interface {
	// Write sends a value of a writeable path to the charger and reports whether it was accepted.
	Write(path string, value interface{}) bool
	// Value returns the current bus value of a path.
	Value(path string) (interface{}, bool)
	// Reachable reports whether the last poll of the charger succeeded.
	Reachable() bool
}

// Controller represents a charger controller.
type Controller interface {
	chargepoint.Controller
	chargepoint.AdjustableOfferedCurrentController
	numericmeter.Reporter
}

// NewController returns a new instance of Controller.
func NewController(charger Charger) Controller {
	return &controller{
		charger: charger,
	}
}

type controller struct {
	charger Charger
}

// StartChargepointCharging resumes charging at the maximum current. Charging modes are not supported by the charger.
func (c *controller) StartChargepointCharging(_ *chargepoint.ChargingSettings) error {
	if !c.charger.Write(evcharger.PathStartStop, 1) {
		return errors.New("controller: charger did not accept the start command")
	}

	return nil
}

func (c *controller) StopChargepointCharging() error {
	if !c.charger.Write(evcharger.PathStartStop, 0) {
		return errors.New("controller: charger did not accept the stop command")
	}

	return nil
}

func (c *controller) SetChargepointOfferedCurrent(current int64) error {
	if current < 0 {
		return errors.Errorf("controller: offered current must not be negative, got %d", current)
	}

	if !c.charger.Write(evcharger.PathSetCurrent, int(current)) {
		return errors.Errorf("controller: charger did not accept offered current of %dA", current)
	}

	return nil
}

func (c *controller) ChargepointStateReport() (chargepoint.State, error) {
	status, err := numeric(c.charger, evcharger.PathStatus)
	if err != nil {
		return chargepoint.StateUnknown, errors.Wrap(err, "controller: failed to get charger status")
	}

	return stateFor(evcharger.Status(status)), nil
}

// ChargepointCurrentSessionReport reports the energy of the running session, the charger resets it when a new session starts.
func (c *controller) ChargepointCurrentSessionReport() (*chargepoint.SessionReport, error) {
	state, err := c.ChargepointStateReport()
	if err != nil {
		return nil, err
	}

	offered, err := numeric(c.charger, evcharger.PathSetCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "controller: failed to get offered current")
	}

	report := &chargepoint.SessionReport{
		OfferedCurrent: int64(offered),
	}

	if !sessionReportAvailable(state) {
		return report, nil
	}

	energy, err := numeric(c.charger, evcharger.PathEnergyForward)
	if err != nil {
		return nil, errors.Wrap(err, "controller: failed to get session energy")
	}

	report.SessionEnergy = energy

	return report, nil
}

func (c *controller) MeterReport(unit numericmeter.Unit) (float64, error) {
	switch unit {
	case numericmeter.UnitW:
		return numeric(c.charger, evcharger.PathPower)
	case numericmeter.UnitKWh:
		return numeric(c.charger, evcharger.PathEnergyForward)
	default:
		return 0, errors.Errorf("controller: unsupported unit: %s", unit)
	}
}

func sessionReportAvailable(state chargepoint.State) bool {
	return state == chargepoint.StateCharging || state == chargepoint.StateFinished
}

func supportedStates() []chargepoint.State {
	return []chargepoint.State{
		chargepoint.StateDisconnected,
		chargepoint.StateRequesting,
		chargepoint.StateReadyToCharge,
		chargepoint.StateCharging,
		chargepoint.StateSuspendedByEVSE,
		chargepoint.StateFinished,
		chargepoint.StateError,
		chargepoint.StateUnknown,
	}
}

func stateFor(status evcharger.Status) chargepoint.State { //nolint:cyclop
	switch status {
	case evcharger.StatusDisconnected:
		return chargepoint.StateDisconnected
	case evcharger.StatusConnected:
		return chargepoint.StateReadyToCharge
	case evcharger.StatusCharging:
		return chargepoint.StateCharging
	case evcharger.StatusCharged:
		return chargepoint.StateFinished
	case evcharger.StatusWaitRFID:
		return chargepoint.StateRequesting
	case evcharger.StatusWaitSun, evcharger.StatusWaitEnable, evcharger.StatusLowSOC:
		return chargepoint.StateSuspendedByEVSE
	case evcharger.StatusGroundError, evcharger.StatusWeldedError:
		return chargepoint.StateError
	default:
		return chargepoint.StateUnknown
	}
}

func numeric(charger Charger, path string) (float64, error) {
	raw, ok := charger.Value(path)
	if !ok {
		return 0, errors.Errorf("path %s is not registered", path)
	}

	switch v := raw.(type) {
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, errors.Errorf("expected a number at %s, got %T instead", path, raw)
	}
}
