package goGuard

import "github.com/MrEthical07/goGuard/internal/metrics"

// MetricID identifies one Engine counter or histogram.
type MetricID = metrics.MetricID

// MetricsSnapshot is a point-in-time copy of the Engine's counters.
type MetricsSnapshot = metrics.Snapshot

// Metrics holds the Engine's lock-free counters.
type Metrics = metrics.Metrics

const (
	// MetricDecisionProceed counts navigations whose final decision proceeds.
	MetricDecisionProceed = metrics.MetricDecisionProceed
	// MetricDecisionRedirectLogin counts redirects to the login route.
	MetricDecisionRedirectLogin = metrics.MetricDecisionRedirectLogin
	// MetricDecisionRedirectRoleHome counts redirects to a role's home route.
	MetricDecisionRedirectRoleHome = metrics.MetricDecisionRedirectRoleHome
	// MetricRedirectLoop counts navigations aborted with ErrRedirectLoop.
	MetricRedirectLoop = metrics.MetricRedirectLoop
	// MetricUnknownRoute counts navigations to undeclared routes without a catch-all.
	MetricUnknownRoute = metrics.MetricUnknownRoute
	// MetricSessionCorrupt counts malformed user records found on load.
	MetricSessionCorrupt = metrics.MetricSessionCorrupt
	// MetricSessionClearFailed counts corrupt records that could not be deleted.
	MetricSessionClearFailed = metrics.MetricSessionClearFailed
	// MetricSessionStorageFailure counts storage errors during load, save or clear.
	MetricSessionStorageFailure = metrics.MetricSessionStorageFailure
	// MetricSessionSaved counts successful logins.
	MetricSessionSaved = metrics.MetricSessionSaved
	// MetricSessionCleared counts successful logouts.
	MetricSessionCleared = metrics.MetricSessionCleared
	// MetricNavigateLatency is the Navigate latency histogram.
	MetricNavigateLatency = metrics.MetricNavigateLatency
)

// NewMetrics returns counters configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return metrics.New(metrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}
