package evcharger

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-evsewifi-adapter/internal/evse"
	"github.com/futurehomeno/edge-evsewifi-adapter/internal/metrics"
)

// ErrUnmappedPath is reported for writes to a path that cannot control the charger.
var ErrUnmappedPath = errors.New("no charger mapping for path")

// handleWrite forwards a bus write to the charger. On success the loop commits the value before replying.
func (a *Adapter) handleWrite(path string, value interface{}) bool {
	log.WithField("path", path).WithField("value", value).Info("evcharger: bus value updated externally")

	switch controlFor(path) {
	case controlSetCurrent:
		current, err := toInt(value)
		if err != nil {
			return a.reject(path, value, err)
		}

		return a.setCurrent(path, current)
	case controlStartStop:
		return a.startStop(path, value)
	default:
		metrics.CommandsTotal.WithLabelValues(path, metrics.ResultUnmapped).Inc()
		log.WithError(ErrUnmappedPath).WithField("path", path).Info("evcharger: write ignored")

		return false
	}
}

func (a *Adapter) startStop(path string, value interface{}) bool {
	var v int

	switch b := value.(type) {
	case bool:
		if b {
			v = 1
		}
	default:
		var err error
		if v, err = toInt(value); err != nil {
			return a.reject(path, value, err)
		}
	}

	switch v {
	case 0:
		return a.setCurrent(path, 0)
	case 1:
		raw, _ := a.registry.Get(PathMaxCurrent)

		maxCurrent, err := toInt(raw)
		if err != nil {
			return a.reject(path, value, errors.Wrap(err, "unknown max current"))
		}

		return a.setCurrent(path, maxCurrent)
	default:
		return a.reject(path, value, errors.Errorf("start/stop accepts 0 or 1, got %d", v))
	}
}

func (a *Adapter) setCurrent(path string, current int) bool {
	start := time.Now()
	err := a.client.SetParameter(currentParameter, strconv.Itoa(current))

	metrics.CommandLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())

	logger := log.WithField("path", path).WithField("current", current)

	switch {
	case errors.Is(err, evse.ErrCommandMismatch):
		metrics.CommandsTotal.WithLabelValues(path, metrics.ResultMismatch).Inc()
		logger.WithError(err).Warnf("evcharger: charger parameter %s not set to %d", currentParameter, current)

		return false
	case err != nil:
		metrics.CommandsTotal.WithLabelValues(path, metrics.ResultFailure).Inc()
		logger.WithError(err).Error("evcharger: failed to send command to charger")

		return false
	}

	metrics.CommandsTotal.WithLabelValues(path, metrics.ResultSuccess).Inc()
	logger.Debug("evcharger: command accepted by charger")

	return true
}

func (a *Adapter) reject(path string, value interface{}, err error) bool {
	metrics.CommandsTotal.WithLabelValues(path, metrics.ResultFailure).Inc()
	log.WithError(err).WithField("path", path).WithField("value", value).Warn("evcharger: invalid value written")

	return false
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case uint8:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.Errorf("%v is not an integer", v)
		}

		return int(v), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, errors.Wrapf(err, "%q is not an integer", v)
		}

		return i, nil
	default:
		return 0, errors.Errorf("unsupported value type %T", value)
	}
}
