package evcharger

import (
	"github.com/michalkurzeja/go-clock"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evse"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/metrics"
)

const maxUpdateIndex = 255

type value struct {
	path  string
	value interface{}
}

// poll fetches a single snapshot and commits it to the bus. Failures skip the cycle.
func (a *Adapter) poll() {
	params, err := a.client.Parameters()
	a.reachable.Store(err == nil)

	if err != nil {
		metrics.PollsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		log.WithError(err).Error("evcharger: failed to fetch charger parameters, skipping cycle")

		return
	}

	values := a.publishedState(params)

	if status, ok := StatusFor(params.VehicleState, int(params.ActualCurrent)); ok {
		values = append(values, value{PathStatus, int(status)})
	} else {
		log.WithField("vehicle_state", params.VehicleState).Warn("evcharger: unknown vehicle state, status not updated")
	}

	for _, v := range values {
		if err := a.registry.Set(v.path, v.value); err != nil {
			metrics.PollsTotal.WithLabelValues(metrics.ResultFailure).Inc()
			log.WithError(err).WithField("path", v.path).Error("evcharger: failed to publish value, skipping cycle")

			return
		}
	}

	index := a.nextUpdateIndex()
	if err := a.registry.Set(PathUpdateIndex, index); err != nil {
		log.WithError(err).Error("evcharger: failed to publish update index")

		return
	}

	a.lastUpdate = clock.Now()

	metrics.PollsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.UpdateIndex.Set(float64(index))
	metrics.LastUpdate.Set(float64(a.lastUpdate.Unix()))
	metrics.Power.Set(params.ActualPower * 1000)

	log.
		WithField("power", params.ActualPower*1000).
		WithField("energy", params.Energy).
		WithField("update_index", index).
		Debug("evcharger: charger state published")
}

// publishedState maps a snapshot to bus values, excluding status and update index.
func (a *Adapter) publishedState(params *evse.Parameters) []value {
	power := params.ActualPower * 1000
	phasePower := power / Phases
	current := int(params.ActualCurrent)

	startStop := 0
	if current != 0 {
		startStop = 1
	}

	return []value{
		{PathL1Power, phasePower},
		{PathL2Power, phasePower},
		{PathL3Power, phasePower},
		{PathPower, power},
		{PathVoltage, nominalVoltage},
		{PathCurrent, current},
		{PathEnergyForward, params.Energy},
		{PathStartStop, startStop},
		{PathSetCurrent, current},
		{PathMaxCurrent, int(params.MaxCurrent)},
		{PathChargingTime, int(params.Duration) / 1000},
		{PathMode, int(a.cfgService.GetMode())},
	}
}

func (a *Adapter) nextUpdateIndex() int {
	raw, _ := a.registry.Get(PathUpdateIndex)

	index, err := toInt(raw)
	if err != nil {
		index = 0
	}

	index++
	if index > maxUpdateIndex {
		index = 0
	}

	return index
}
