package network

import (
	"github.com/prometheus/client_golang/prometheus"
)

var workflowOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "network_workflow_operations_total",
		Help: "Total number of network integration workflow invocations",
	},
	[]string{"operation", "outcome"},
)

// RegisterMetrics registers the workflow counters with the provided
// registry.
func RegisterMetrics(reg *prometheus.Registry) {
	reg.MustRegister(workflowOps)
}

func record(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	workflowOps.WithLabelValues(operation, outcome).Inc()
}
