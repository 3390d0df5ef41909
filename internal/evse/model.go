package evse

import (
	"slices"

	"github.com/pkg/errors"
)

// Vehicle states reported by EVSE-WiFi in the vehicleState field.
const (
	VehicleStateReady     = 1
	VehicleStateConnected = 2
	VehicleStateCharging  = 3
	VehicleStateError     = 5
)

// Parameters is a single telemetry snapshot of the charger.
type Parameters struct {
	// ActualPower is the active power in kW.
	ActualPower float64
	// ActualCurrent is the current in amperes the charger is set to deliver.
	ActualCurrent float64
	// MaxCurrent is the maximum current in amperes configured on the charger.
	MaxCurrent float64
	// Energy is the energy in kWh charged in the current session.
	Energy float64
	// Duration is the session duration in milliseconds.
	Duration float64
	// VehicleState is the raw vehicle state code.
	VehicleState int
}

type parametersResponse struct {
	Type string          `json:"type"`
	List []rawParameters `json:"list"`
}

type rawParameters struct {
	ActualPower   *float64 `json:"actualPower"`
	ActualCurrent *float64 `json:"actualCurrent"`
	MaxCurrent    *float64 `json:"maxCurrent"`
	Energy        *float64 `json:"energy"`
	Duration      *float64 `json:"duration"`
	VehicleState  *float64 `json:"vehicleState"`
}

func (r *parametersResponse) parameters() (*Parameters, error) {
	if len(r.List) == 0 {
		return nil, errors.New("parameter list is empty")
	}

	raw := r.List[0]

	missing := make([]string, 0)

	for key, value := range map[string]*float64{
		"actualPower":   raw.ActualPower,
		"actualCurrent": raw.ActualCurrent,
		"maxCurrent":    raw.MaxCurrent,
		"energy":        raw.Energy,
		"duration":      raw.Duration,
		"vehicleState":  raw.VehicleState,
	} {
		if value == nil {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)

		return nil, errors.Errorf("missing keys in parameters: %v", missing)
	}

	return &Parameters{
		ActualPower:   *raw.ActualPower,
		ActualCurrent: *raw.ActualCurrent,
		MaxCurrent:    *raw.MaxCurrent,
		Energy:        *raw.Energy,
		Duration:      *raw.Duration,
		VehicleState:  int(*raw.VehicleState),
	}, nil
}
