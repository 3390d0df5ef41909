package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	ResultSuccess  = "success"
	ResultFailure  = "failure"
	ResultMismatch = "mismatch"
	ResultUnmapped = "unmapped"
)

// Registry holds all adapter collectors, it is served by the diagnostics server.
var Registry = prometheus.NewRegistry()

var (
	// PollsTotal counts poll cycles by result.
	PollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evsewifi_polls_total",
			Help: "Total number of charger poll cycles.",
		},
		[]string{"result"}, // success/failure
	)

	// CommandsTotal counts write-backs to the charger by bus path and result.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evsewifi_commands_total",
			Help: "Total number of bus writes forwarded to the charger.",
		},
		[]string{"path", "result"},
	)

	// CommandLatency records the duration of charger command calls.
	CommandLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "evsewifi_command_latency_seconds",
			Help:    "Latency of commands sent to the charger.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// UpdateIndex mirrors the last published update index.
	UpdateIndex = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evsewifi_update_index",
			Help: "Last published update index (0-255).",
		},
	)

	// LastUpdate is the unix time of the last successful poll.
	LastUpdate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evsewifi_last_update_timestamp_seconds",
			Help: "Unix time of the last successful charger poll.",
		},
	)

	// Power is the last published charging power in W.
	Power = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evsewifi_power_watts",
			Help: "Last published charging power.",
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		PollsTotal,
		CommandsTotal,
		CommandLatency,
		UpdateIndex,
		LastUpdate,
		Power,
	)
}
