package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// ChallengeRequests counts daily challenge lookups by outcome:
	// hit, created, raced, healed.
	ChallengeRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_challenge_requests_total",
			Help: "Daily challenge lookups by outcome",
		},
		[]string{"outcome"},
	)

	QuestionsSynthesized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_questions_synthesized_total",
			Help: "Questions synthesized by type and language",
		},
		[]string{"type", "lang"},
	)

	// SynthesisFallbacks counts every time synthesis left its normal path,
	// e.g. a director question downgraded to year or relaxed distractor bounds.
	SynthesisFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_synthesis_fallbacks_total",
			Help: "Synthesis fallbacks by question type and reason",
		},
		[]string{"type", "reason"},
	)

	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_upstream_requests_total",
			Help: "Movie provider requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trivia_upstream_request_duration_seconds",
			Help:    "Movie provider request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "trivia_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trivia_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// BreakerStateValue maps a breaker state onto the CircuitBreakerState gauge scale.
func BreakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
