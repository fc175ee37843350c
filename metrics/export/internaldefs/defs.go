package internaldefs

import (
	goGuard "github.com/MrEthical07/goGuard"
)

// CounterDef names one exported counter.
type CounterDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// HistogramDef names one exported histogram.
type HistogramDef struct {
	ID   goGuard.MetricID
	Name string
	Help string
}

// CounterDefs lists every Engine counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: goGuard.MetricDecisionProceed, Name: "goguard_decision_proceed_total", Help: "Guard decisions that let a navigation proceed."},
	{ID: goGuard.MetricDecisionRedirectLogin, Name: "goguard_decision_redirect_login_total", Help: "Guard decisions that redirected to the login route."},
	{ID: goGuard.MetricDecisionRedirectRoleHome, Name: "goguard_decision_redirect_role_home_total", Help: "Guard decisions that redirected to a role home route."},
	{ID: goGuard.MetricRedirectLoop, Name: "goguard_redirect_loop_total", Help: "Navigations aborted as redirect loops."},
	{ID: goGuard.MetricUnknownRoute, Name: "goguard_unknown_route_total", Help: "Navigations to undeclared routes."},
	{ID: goGuard.MetricSessionCorrupt, Name: "goguard_session_corrupt_total", Help: "Malformed user records treated as signed out."},
	{ID: goGuard.MetricSessionClearFailed, Name: "goguard_session_clear_failed_total", Help: "Malformed user records that could not be deleted."},
	{ID: goGuard.MetricSessionStorageFailure, Name: "goguard_session_storage_failure_total", Help: "Session storage read or write failures."},
	{ID: goGuard.MetricSessionSaved, Name: "goguard_session_saved_total", Help: "Sessions persisted on login."},
	{ID: goGuard.MetricSessionCleared, Name: "goguard_session_cleared_total", Help: "Sessions removed on logout."},
}

// HistogramDefs lists every Engine histogram.
var HistogramDefs = []HistogramDef{
	{ID: goGuard.MetricNavigateLatency, Name: "goguard_navigate_latency_seconds", Help: "Navigate latency histogram."},
}

// HistogramBounds are the upper bounds of the eight latency buckets, in seconds.
var HistogramBounds = []string{
	"1e-05",
	"5e-05",
	"0.0001",
	"0.0005",
	"0.001",
	"0.005",
	"0.025",
	"+Inf",
}

// HistogramBoundSuffix names each bucket for exporters without label support.
var HistogramBoundSuffix = []string{
	"10us",
	"50us",
	"100us",
	"500us",
	"1ms",
	"5ms",
	"25ms",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
