package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_total",
		Help: "Checkout attempts by outcome (placed, below_minimum, invalid, error).",
	}, []string{"outcome"})

	DiscountValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discount_validations_total",
		Help: "Discount code validations by result (ok or rejection reason).",
	}, []string{"result"})

	PricingFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pricing_fallback_total",
		Help: "Pricing computations that degraded because a collaborator failed.",
	}, []string{"source"})

	WaiterCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waiter_calls_total",
		Help: "Waiter calls by reason.",
	}, []string{"reason"})

	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_clients",
		Help: "Connected staff dashboard clients.",
	})

	EventPublishFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_publish_failures_total",
		Help: "Failed publishes to the event bus by sink.",
	}, []string{"sink"})
)
