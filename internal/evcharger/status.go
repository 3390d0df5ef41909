package evcharger

import (
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evse"
)

// Status is the canonical charging status published on the bus.
type Status int

const (
	StatusDisconnected Status = 0
	StatusConnected    Status = 1
	StatusCharging     Status = 2
	StatusCharged      Status = 3
	StatusWaitSun      Status = 4
	StatusWaitRFID     Status = 5
	StatusWaitEnable   Status = 6
	StatusLowSOC       Status = 7
	StatusGroundError  Status = 8
	StatusWeldedError  Status = 9
)

// StatusFor maps the raw vehicle state and current draw to a canonical status.
// It reports false for vehicle states without a mapping.
func StatusFor(vehicleState, current int) (Status, bool) {
	switch vehicleState {
	case evse.VehicleStateReady:
		return StatusDisconnected, true
	case evse.VehicleStateConnected:
		if current > 0 {
			return StatusCharged, true
		}

		return StatusConnected, true
	case evse.VehicleStateCharging:
		return StatusCharging, true
	case evse.VehicleStateError:
		return StatusGroundError, true
	default:
		return 0, false
	}
}
