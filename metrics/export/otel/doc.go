// Package otel binds goGuard counters and the navigation latency histogram to
// OpenTelemetry instruments.
//
// [NewOTelExporter] groups Engine counters by concern instead of creating one
// instrument per counter:
//
//	goguard.navigation.decisions{decision="proceed"|"redirect_login"|"redirect_role_home"}
//	goguard.navigation.failures{reason="redirect_loop"|"unknown_route"}
//	goguard.session.events{event="corrupt"|"clear_failed"|"storage_failure"|"saved"|"cleared"}
//	goguard.navigation.latency.bucket{le="1e-05"|...|"+Inf"}
//	goguard.navigation.latency.count
//	goguard.audit.dropped
//
// A single callback reads [goGuard.Engine.MetricsSnapshot] on each collection
// cycle. Latency series are reported only while latency histograms are enabled.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate engine state.
package otel
