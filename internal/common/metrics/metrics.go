// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EnrollmentChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_enrollment_changes_total",
			Help: "Total number of successful signups and unregistrations per activity",
		},
		[]string{"activity", "action"},
	)

	EnrollmentRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_enrollment_rejected_total",
			Help: "Total number of enrollment requests rejected by the registry",
		},
		[]string{"action", "error_code"},
	)

	ActivityEnrollment = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "activity_enrollment_current",
			Help: "Current number of participants per activity",
		},
		[]string{"activity"},
	)

	EventPublishFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_event_publish_failures_total",
			Help: "Total number of enrollment events a sink failed to accept",
		},
		[]string{"event_type"},
	)

	AnalyticsCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activity_analytics_cache_lookups_total",
			Help: "Analytics cache lookups by query and result",
		},
		[]string{"query", "result"},
	)
)
