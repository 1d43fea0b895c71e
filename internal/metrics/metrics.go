package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GatewayExchanges counts ContiPay exchanges by action and classified outcome.
	GatewayExchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contipay_exchanges_total",
			Help: "ContiPay gateway exchanges by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	GatewayLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contipay_exchange_duration_seconds",
			Help:    "Latency of ContiPay gateway exchanges.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"action"},
	)

	// TransactionStatus counts terminal status assignments.
	TransactionStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contipay_transaction_status_total",
			Help: "Status codes assigned to ContiPay transactions.",
		},
		[]string{"status"},
	)

	PersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contipay_persist_failures_total",
			Help: "Transactions that could not be saved after an exchange.",
		},
	)

	ExchangeLogFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contipay_exchange_log_failures_total",
			Help: "Gateway exchanges that could not be written to the exchange log.",
		},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_requests_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	registerOnce sync.Once
)

// Handler serves /metrics.
var Handler = promhttp.Handler

// Init registers the collectors with the default registry. Safe to call twice.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(GatewayExchanges, GatewayLatency, TransactionStatus, PersistFailures, ExchangeLogFailures, HTTPLatency)
	})
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveGateway records one exchange.
func ObserveGateway(action, outcome string, d time.Duration) {
	GatewayExchanges.WithLabelValues(action, outcome).Inc()
	GatewayLatency.WithLabelValues(action).Observe(d.Seconds())
}
