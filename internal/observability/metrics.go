// README: Prometheus collectors shared by the placement engine, quotes, chat and HTTP layers.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jeeny"

var (
	PlacementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "driver_placements_total", Help: "Driver placements by the tier that produced them"},
		[]string{"tier"},
	)
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "quotes_total", Help: "Trip quotes by outcome"},
		[]string{"result"},
	)
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_latency_seconds",
			Help:      "Latency of external map provider calls",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "chat_messages_total", Help: "Chat messages by detected intent"},
		[]string{"intent"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
