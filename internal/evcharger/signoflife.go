package evcharger

import (
	log "github.com/sirupsen/logrus"
)

// signOfLife logs the last published power and the time of the last successful poll.
func (a *Adapter) signOfLife() {
	power, _ := a.registry.Get(PathPower)

	entry := log.WithField("power", power)

	if a.lastUpdate.IsZero() {
		entry = entry.WithField("last_update", "never")
	} else {
		entry = entry.WithField("last_update", a.lastUpdate)
	}

	entry.Info("evcharger: sign of life")
}
