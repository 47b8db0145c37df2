package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idracd_http_requests_total",
		Help: "HTTP requests handled, by method, path and status.",
	}, []string{"method", "path", "status"})

	powerCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idracd_power_commands_total",
		Help: "Power commands relayed to the controller, by action and outcome.",
	}, []string{"action", "outcome"})
)
