// Package metrics defines the Prometheus instruments exported at /metrics.
//
// promauto registers each instrument with the default registry at package
// init, so importing this package is enough to make the series exist.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationsTotal counts card-generation attempts by outcome:
	// success, insufficient_funds, no_combination, duplicate_race,
	// rejected, error.
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardforge_generations_total",
		Help: "Card generation attempts by outcome.",
	}, []string{"outcome"})

	// CoinsDebited is the running total of coins spent on generation.
	CoinsDebited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardforge_coins_debited_total",
		Help: "Total coins debited for card generation.",
	})

	// CoinsCredited is the running total of coins granted, by ledger kind.
	CoinsCredited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardforge_coins_credited_total",
		Help: "Total coins credited, by ledger kind.",
	}, []string{"kind"})

	// HTTPRequestDuration observes request latency by method and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cardforge_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "status"})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardforge_rate_limited_total",
		Help: "Requests rejected with 429.",
	})
)
