package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

const namespace = "lfs"

type Metrics struct {
	InflightRequests prometheus.Gauge
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec

	OrdersCreated      prometheus.Counter
	OrderValue         prometheus.Histogram
	VoucherRedemptions prometheus.Counter
	OrderStateChanges  *prometheus.CounterVec
	EventsHandled      *prometheus.CounterVec
	EventLag           *prometheus.HistogramVec
	OutboxRelayed      *prometheus.CounterVec
}

// New registers all shop metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		InflightRequests: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Number of HTTP requests currently being served.",
		}),
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		OrdersCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shop",
			Name:      "orders_created_total",
			Help:      "Number of orders placed at checkout.",
		}),
		OrderValue: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "shop",
			Name:      "order_value",
			Help:      "Gross price of placed orders.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}),
		VoucherRedemptions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shop",
			Name:      "voucher_redemptions_total",
			Help:      "Number of vouchers applied to orders.",
		}),
		OrderStateChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shop",
			Name:      "order_state_changes_total",
			Help:      "Number of order state changes by target state.",
		}, []string{"state"}),
		EventsHandled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "event",
			Name:      "handled_total",
			Help:      "Number of consumed events by topic and result.",
		}, []string{"topic", "result"}),
		EventLag: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "event",
			Name:      "lag_seconds",
			Help:      "Time between writing an event to the outbox and handling it.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}, []string{"topic"}),
		OutboxRelayed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "relayed_total",
			Help:      "Number of outbox messages produced by topic and result.",
		}, []string{"topic", "result"}),
	}
}

// ObserveOrder records a placed order.
func (m *Metrics) ObserveOrder(price decimal.Decimal, usedVoucher bool) {
	m.OrdersCreated.Inc()
	m.OrderValue.Observe(price.InexactFloat64())
	if usedVoucher {
		m.VoucherRedemptions.Inc()
	}
}
