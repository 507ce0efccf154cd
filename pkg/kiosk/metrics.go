package kiosk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kiosk_scans_total",
			Help: "Scan outcomes by action",
		},
		[]string{"action"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kiosk_active_sessions",
			Help: "Passes currently checked out",
		},
	)

	waitingLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kiosk_waiting_queue_length",
			Help: "Students on the waiting list",
		},
	)

	connectedDisplays = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kiosk_connected_displays",
			Help: "Websocket display clients currently subscribed",
		},
	)

	passDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kiosk_pass_duration_seconds",
			Help:    "Duration of completed passes",
			Buckets: prometheus.ExponentialBuckets(30, 2, 8),
		},
	)
)
