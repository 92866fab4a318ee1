// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movienight"

var (
	RoundsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_created_total",
			Help:      "Rounds that reached voting status",
		},
	)

	RoundConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "round_conflicts_total",
			Help:      "Rejected conditional writes by operation",
		},
		[]string{"operation"},
	)

	RoundTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "round_transitions_total",
			Help:      "Round status transitions by target status and actor kind",
		},
		[]string{"to", "actor"},
	)

	VotesCast = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_cast_total",
			Help:      "Accepted vote upserts",
		},
	)

	RatingsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_submitted_total",
			Help:      "Accepted rating upserts",
		},
	)

	CandidateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_cache_lookups_total",
			Help:      "Candidate cache lookups by method and result",
		},
		[]string{"method", "result"},
	)

	CandidateRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "candidate_request_duration_seconds",
			Help:      "Outbound movie metadata request latency",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"endpoint", "outcome"},
	)
)
