package bus

import (
	"fmt"
	"math"
	"strconv"
)

// Formatter renders a value as a human readable text.
type Formatter func(path string, value interface{}) string

var (
	// Watt renders power.
	Watt = unitFormatter("W", 1)
	// KiloWattHour renders energy.
	KiloWattHour = unitFormatter("kWh", 2)
	// Ampere renders current.
	Ampere = unitFormatter("A", 1)
	// Volt renders voltage.
	Volt = unitFormatter("V", 1)
	// Second renders durations.
	Second = unitFormatter("s", 0)
)

// Plain renders a value without unit.
func Plain(_ string, value interface{}) string {
	if value == nil {
		return ""
	}

	return fmt.Sprint(value)
}

func unitFormatter(unit string, precision int) Formatter {
	return func(path string, value interface{}) string {
		f, ok := toFloat(value)
		if !ok {
			return Plain(path, value)
		}

		scale := math.Pow(10, float64(precision))

		return strconv.FormatFloat(math.Round(f*scale)/scale, 'f', -1, 64) + unit
	}
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint8:
		return float64(v), true
	default:
		return 0, false
	}
}
