package evcharger

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// timers holds the poll and sign of life tickers of the loop.
// A non-positive sign of life interval leaves its ticker stopped.
type timers struct {
	pollInterval time.Duration
	poll         *time.Ticker

	signOfLifeInterval time.Duration
	signOfLife         *time.Ticker
}

func newTimers(pollInterval, signOfLifeInterval time.Duration) *timers {
	t := &timers{
		pollInterval: pollInterval,
		poll:         time.NewTicker(pollInterval),
	}

	t.setSignOfLife(signOfLifeInterval)

	return t
}

// signOfLifeC returns nil while the sign of life is disabled, which blocks forever in a select.
func (t *timers) signOfLifeC() <-chan time.Time {
	if t.signOfLife == nil {
		return nil
	}

	return t.signOfLife.C
}

// update applies changed intervals.
func (t *timers) update(pollInterval, signOfLifeInterval time.Duration) {
	if pollInterval > 0 && pollInterval != t.pollInterval {
		t.pollInterval = pollInterval
		t.poll.Reset(pollInterval)

		log.WithField("interval", pollInterval).Info("evcharger: polling interval changed")
	}

	if signOfLifeInterval != t.signOfLifeInterval {
		t.setSignOfLife(signOfLifeInterval)

		log.WithField("interval", signOfLifeInterval).Info("evcharger: sign of life interval changed")
	}
}

func (t *timers) setSignOfLife(interval time.Duration) {
	t.signOfLifeInterval = interval

	switch {
	case interval <= 0:
		if t.signOfLife != nil {
			t.signOfLife.Stop()
			t.signOfLife = nil
		}
	case t.signOfLife == nil:
		t.signOfLife = time.NewTicker(interval)
	default:
		t.signOfLife.Reset(interval)
	}
}

func (t *timers) stop() {
	t.poll.Stop()

	if t.signOfLife != nil {
		t.signOfLife.Stop()
	}
}
