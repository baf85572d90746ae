// Package metrics holds the prometheus collectors of the engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedme_quote_requests_total",
			Help: "Quote requests by strategy and outcome",
		},
		[]string{"strategy", "result"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedme_quote_duration_seconds",
			Help:    "Time to produce a quote, aggregator round trips included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	ExternalCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedme_external_calls_total",
			Help: "Calls to external services by service and outcome",
		},
		[]string{"service", "result"},
	)

	StaleResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedme_stale_results_total",
			Help: "Results discarded because newer input superseded them",
		},
		[]string{"kind"},
	)

	FeederFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedme_feeder_fetches_total",
			Help: "Per chain transfer history fetches by outcome",
		},
		[]string{"chain", "result"},
	)

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "feedme_websocket_clients",
		Help: "Connected live quote clients",
	})
)

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveExternal counts one call to service.
func ObserveExternal(service string, err error) {
	ExternalCalls.WithLabelValues(service, result(err)).Inc()
}

// ObserveQuote counts a quote and records how long it took.
func ObserveQuote(strategy string, started time.Time, err error) {
	QuoteRequests.WithLabelValues(strategy, result(err)).Inc()
	QuoteDuration.WithLabelValues(strategy).Observe(time.Since(started).Seconds())
}

func ObserveStale(kind string) {
	StaleResults.WithLabelValues(kind).Inc()
}

func ObserveFeederFetch(chain string, err error) {
	FeederFetches.WithLabelValues(chain, result(err)).Inc()
}
