// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "avalon_notify_deliveries_total",
			Help: "Outbound messages by transport, kind (dm, post) and result.",
		},
		[]string{"notifier", "kind", "result"},
	)

	hubClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "avalon_notify_ws_clients",
			Help: "Connected websocket subscribers.",
		},
	)

	hubDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "avalon_notify_ws_dropped_total",
			Help: "Websocket subscribers dropped because they could not keep up.",
		},
	)
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
