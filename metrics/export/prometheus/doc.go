// Package prometheus renders goGuard metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] reads [goGuard.Engine.MetricsSnapshot] on every
// scrape. Counter names are prefixed goguard_*_total; the single histogram is
// goguard_navigate_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate engine state.
package prometheus
