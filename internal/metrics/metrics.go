// Package metrics defines the Prometheus collectors for the drill engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RefillTotal counts background cache refills by engine and result.
	RefillTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drillgym_refill_total",
		Help: "Background content refills by engine and result",
	}, []string{"engine", "result"})

	// RefillProblems counts problems added to caches by refills.
	RefillProblems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drillgym_refill_problems_total",
		Help: "Problems appended to adapter caches",
	}, []string{"engine"})

	// RefillDuration tracks content-service latency.
	RefillDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drillgym_refill_duration_seconds",
		Help:    "Content refill duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	}, []string{"engine"})

	// ServedTotal counts problems served by adapters, by origin
	// ("cache" or "backup").
	ServedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drillgym_served_total",
		Help: "Problems served by adaptive engines by origin",
	}, []string{"engine", "origin"})

	// QueueDepth reports the current adapter cache size.
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "drillgym_queue_depth",
		Help: "Cached problems waiting in an adaptive engine",
	}, []string{"engine"})

	// SubmissionsTotal counts submissions by engine and outcome
	// ("correct", "wrong", "timeout").
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drillgym_submissions_total",
		Help: "Answer submissions by engine and outcome",
	}, []string{"engine", "outcome"})

	// ScoreAwarded tracks per-question scores.
	ScoreAwarded = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "drillgym_score_awarded",
		Help:    "Score awarded per answered question",
		Buckets: []float64{0, 50, 100, 125, 150, 175, 200, 225, 250},
	}, []string{"engine"})

	// SessionsActive reports running sessions.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "drillgym_sessions_active",
		Help: "Sessions currently running",
	})

	// LLMRequests counts provider calls by purpose and result.
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drillgym_llm_requests_total",
		Help: "LLM provider requests by purpose and result",
	}, []string{"purpose", "result"})

	// LLMTokens counts tokens by direction ("input", "output").
	LLMTokens = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drillgym_llm_tokens_total",
		Help: "LLM tokens consumed",
	}, []string{"model", "direction"})

	// LLMCost accumulates estimated provider spend.
	LLMCost = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "drillgym_llm_cost_usd_total",
		Help: "Estimated LLM spend in USD",
	}, []string{"model"})
)
