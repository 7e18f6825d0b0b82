package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "parking_"

	// ResultSuccess labels successful operations.
	ResultSuccess = "success"
	// ResultError labels failed operations.
	ResultError = "error"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	transitionsTotal *prometheus.CounterVec

	activeSessions prometheus.Gauge
	sessionFees    prometheus.Histogram

	paymentRequests *prometheus.CounterVec
	paymentLatency  *prometheus.HistogramVec
)

// Init registers service metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total sensor report requests by result",
			},
			[]string{"result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Sensor report latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		transitionsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "transitions_total",
				Help: "Processed slot transitions by classification",
			},
			[]string{"transition"},
		)

		activeSessions = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "active_sessions",
				Help: "Currently open parking sessions",
			},
		)
		sessionFees = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "session_fee_vnd",
				Help:    "Total fee of closed sessions in VND",
				Buckets: prometheus.ExponentialBuckets(1000, 2, 12),
			},
		)

		paymentRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "payment_requests_total",
				Help: "Total payment attempts by result",
			},
			[]string{"result"},
		)
		paymentLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "payment_latency_seconds",
				Help:    "Payment gateway latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestLatency,
			transitionsTotal,
			activeSessions,
			sessionFees,
			paymentRequests,
			paymentLatency,
		)
	})
}

// ObserveIngest records one sensor report request.
func ObserveIngest(result string, elapsed time.Duration) {
	if ingestRequests == nil {
		return
	}
	ingestRequests.WithLabelValues(result).Inc()
	ingestLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

// ObserveTransition counts a processed transition.
func ObserveTransition(transition string) {
	if transitionsTotal == nil {
		return
	}
	transitionsTotal.WithLabelValues(transition).Inc()
}

// SessionOpened moves the active-session gauge up.
func SessionOpened() {
	if activeSessions != nil {
		activeSessions.Inc()
	}
}

// SessionClosed moves the active-session gauge down and records the fee.
func SessionClosed(totalFee int64) {
	if activeSessions != nil {
		activeSessions.Dec()
	}
	if sessionFees != nil {
		sessionFees.Observe(float64(totalFee))
	}
}

// ObservePayment records one payment attempt.
func ObservePayment(result string, elapsed time.Duration) {
	if paymentRequests == nil {
		return
	}
	paymentRequests.WithLabelValues(result).Inc()
	paymentLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}
