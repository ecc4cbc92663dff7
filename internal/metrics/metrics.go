// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "kupipodariday"

// Offer outcomes used as the result label of offers_total.
const (
	OfferAccepted = "accepted"
	OfferRejected = "rejected"
	OfferFailed   = "failed"
)

// Feed lookup outcomes.
const (
	FeedHit   = "hit"
	FeedMiss  = "miss"
	FeedError = "error"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "route"},
	)

	offers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "total",
			Help:      "Contribution attempts by outcome.",
		},
		[]string{"result"},
	)

	contributed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "offers",
			Name:      "contributed_amount_total",
			Help:      "Sum of accepted contribution amounts.",
		},
	)

	feedLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "cache_lookups_total",
			Help:      "Feed cache lookups by feed and outcome.",
		},
		[]string{"feed", "result"},
	)

	progressStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "progress_streams",
			Help:      "Open wish progress websocket streams.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		offers,
		contributed,
		feedLookups,
		progressStreams,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and in-flight gauge per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordOffer counts a contribution attempt; accepted amounts are summed.
func RecordOffer(result string, amount decimal.Decimal) {
	offers.WithLabelValues(result).Inc()
	if result == OfferAccepted && amount.IsPositive() {
		contributed.Add(amount.InexactFloat64())
	}
}

func RecordFeedLookup(feed, result string) {
	feedLookups.WithLabelValues(feed, result).Inc()
}

func StreamOpened() { progressStreams.Inc() }
func StreamClosed() { progressStreams.Dec() }
