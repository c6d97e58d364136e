// Package metrics provides the centralized Prometheus metrics registry for EdgeFinder.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ScansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "scans_total",
		Help:      "Total number of market scans, by sport",
	}, []string{"sport"})
	EVBetsFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "ev_bets_found_total",
		Help:      "Total number of +EV bets surfaced",
	})
	ArbsFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "arbs_found_total",
		Help:      "Total number of arbitrage opportunities surfaced",
	})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "provider_requests_total",
		Help:      "Odds provider requests, by outcome",
	}, []string{"outcome"})
	ProviderCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "provider_cache_hits_total",
		Help:      "Odds snapshots served from cache",
	})
	LedgerBetsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "ledger_bets_created_total",
		Help:      "Bets recorded in the ledger",
	})
	LedgerBetsSettledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge_finder",
		Name:      "ledger_bets_settled_total",
		Help:      "Ledger bets marked won, lost, or void",
	})
)

// Gauge metrics
var (
	ProviderRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_finder",
		Name:      "provider_requests_remaining",
		Help:      "Provider quota remaining, from the last response header",
	})
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_finder",
		Name:      "current_bankroll",
		Help:      "Configured bankroll in currency units",
	})
	PendingExposure = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_finder",
		Name:      "pending_exposure",
		Help:      "Total stake at risk in pending ledger bets",
	})
	BestEVPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "edge_finder",
		Name:      "best_ev_percent",
		Help:      "Highest EV percent found in the most recent scan",
	})
)

// Histogram metrics
var (
	ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_finder",
		Name:      "scan_duration_seconds",
		Help:      "Duration of full market scans in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	ProviderRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "edge_finder",
		Name:      "provider_request_duration_seconds",
		Help:      "Latency of odds provider requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ScansTotal)
		registry.MustRegister(EVBetsFoundTotal)
		registry.MustRegister(ArbsFoundTotal)
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(ProviderCacheHitsTotal)
		registry.MustRegister(LedgerBetsCreatedTotal)
		registry.MustRegister(LedgerBetsSettledTotal)

		registry.MustRegister(ProviderRequestsRemaining)
		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(PendingExposure)
		registry.MustRegister(BestEVPercent)

		registry.MustRegister(ScanDuration)
		registry.MustRegister(ProviderRequestDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordScan records a completed scan for a sport.
func RecordScan(sport string, durationSeconds float64) {
	ScansTotal.WithLabelValues(sport).Inc()
	ScanDuration.Observe(durationSeconds)
}

// RecordProviderRequest records a provider call and its outcome label.
func RecordProviderRequest(outcome string, durationSeconds float64) {
	ProviderRequestsTotal.WithLabelValues(outcome).Inc()
	ProviderRequestDuration.Observe(durationSeconds)
}
