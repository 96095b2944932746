package tmi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MetricsRegistry is the Prometheus registry used by this package.
	MetricsRegistry = prometheus.NewRegistry()

	linesProcessed = promauto.With(MetricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmi_lines_processed_total",
			Help: "Inbound protocol lines processed, by code token",
		},
		[]string{"code"},
	)

	linesSent = promauto.With(MetricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmi_lines_sent_total",
			Help: "Outbound protocol lines sent, by verb",
		},
		[]string{"verb"},
	)

	eventsFired = promauto.With(MetricsRegistry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tmi_events_fired_total",
			Help: "Events delivered to subscribers, by kind",
		},
		[]string{"kind"},
	)

	connectsTotal = promauto.With(MetricsRegistry).NewCounter(
		prometheus.CounterOpts{
			Name: "tmi_connects_total",
			Help: "Transport connections established",
		},
	)
)
