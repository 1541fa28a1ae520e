package coach

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var negotiationFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "lenscoach_negotiation_failures_total",
	Help: "Offer/answer exchanges that did not produce a session.",
})
