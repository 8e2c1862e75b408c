// Package metrics provides Prometheus metrics for the scheduling engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for the application.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

// AssignmentsTotal counts committed staff assignments.
var AssignmentsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "salon",
	Name:      "assignments_total",
	Help:      "Number of staff assignments committed",
})

// AssignmentsRejectedTotal counts rejected assignments by reason.
var AssignmentsRejectedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "salon",
	Name:      "assignments_rejected_total",
	Help:      "Number of staff assignments rejected, by reason",
}, []string{"reason"})

// OverridesTotal counts eligibility overrides used on assignment.
var OverridesTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "salon",
	Name:      "eligibility_overrides_total",
	Help:      "Number of assignments that used an eligibility override",
})

// ReschedulesTotal counts committed booking reschedules.
var ReschedulesTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "salon",
	Name:      "reschedules_total",
	Help:      "Number of bookings moved to a new staff member or time slot",
})
