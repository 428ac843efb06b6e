package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	activeConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_active_sessions",
		Help: "Number of open WebSocket sessions.",
	})

	handshakesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_handshakes_total",
			Help: "Total number of WebSocket handshake attempts by result.",
		},
		[]string{"result"},
	)
)
