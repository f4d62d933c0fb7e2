package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portal_gate_decisions_total",
		Help: "Access gate decisions by outcome.",
	}, []string{"outcome"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portal_signin_rate_limited_total",
		Help: "Sign-in attempts rejected by the rate limiter.",
	})
)
