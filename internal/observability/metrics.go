package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	submissionCounter     *prometheus.CounterVec
	viewTransitionCounter *prometheus.CounterVec
	walletBalanceGauge    prometheus.Gauge
	staleResponseCounter  prometheus.Counter
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		submissionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_submissions_total",
			Help: "Transfer submission outcomes at the gateway",
		}, []string{"outcome"})

		viewTransitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transfer_form_transitions_total",
			Help: "Transfer form view transitions",
		}, []string{"from", "to"})

		walletBalanceGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_balance",
			Help: "Current wallet balance",
		})

		staleResponseCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "transfer_stale_responses_total",
			Help: "Gateway responses discarded because their form session was dismissed",
		})

		prometheus.MustRegister(
			httpDurationHistogram,
			submissionCounter,
			viewTransitionCounter,
			walletBalanceGauge,
			staleResponseCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementSubmission(outcome string) {
	if submissionCounter == nil {
		return
	}
	submissionCounter.WithLabelValues(outcome).Inc()
}

func IncrementViewTransition(from, to string) {
	if viewTransitionCounter == nil {
		return
	}
	viewTransitionCounter.WithLabelValues(from, to).Inc()
}

func SetWalletBalance(balance float64) {
	if walletBalanceGauge == nil {
		return
	}
	walletBalanceGauge.Set(balance)
}

func IncrementStaleResponse() {
	if staleResponseCounter == nil {
		return
	}
	staleResponseCounter.Inc()
}
