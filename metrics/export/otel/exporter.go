package otel

import (
	"context"
	"errors"
	"fmt"

	goGuard "github.com/MrEthical07/goGuard"
	"github.com/MrEthical07/goGuard/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Instrument names. Engine counters are grouped into a few instruments and
// told apart by one attribute each.
const (
	DecisionsName       = "goguard.navigation.decisions"
	FailuresName        = "goguard.navigation.failures"
	SessionEventsName   = "goguard.session.events"
	LatencyBucketName   = "goguard.navigation.latency.bucket"
	LatencyCountName    = "goguard.navigation.latency.count"
	AuditDroppedName    = "goguard.audit.dropped"
	DecisionAttribute   = "decision"
	ReasonAttribute     = "reason"
	EventAttribute      = "event"
	UpperBoundAttribute = "le"
)

type metricsSource interface {
	MetricsSnapshot() goGuard.MetricsSnapshot
	AuditDropped() uint64
}

// series is one attributed data point of a grouped counter.
type series struct {
	id  goGuard.MetricID
	opt metric.ObserveOption
}

type counterGroup struct {
	instrument metric.Int64ObservableCounter
	series     []series
}

var groups = []struct {
	name, help, key string
	values          map[goGuard.MetricID]string
}{
	{
		name: DecisionsName,
		help: "Guard decisions by outcome.",
		key:  DecisionAttribute,
		values: map[goGuard.MetricID]string{
			goGuard.MetricDecisionProceed:          goGuard.Proceed.String(),
			goGuard.MetricDecisionRedirectLogin:    goGuard.RedirectLogin.String(),
			goGuard.MetricDecisionRedirectRoleHome: goGuard.RedirectRoleHome.String(),
		},
	},
	{
		name: FailuresName,
		help: "Navigations that did not reach a route.",
		key:  ReasonAttribute,
		values: map[goGuard.MetricID]string{
			goGuard.MetricRedirectLoop: "redirect_loop",
			goGuard.MetricUnknownRoute: "unknown_route",
		},
	},
	{
		name: SessionEventsName,
		help: "Session store outcomes.",
		key:  EventAttribute,
		values: map[goGuard.MetricID]string{
			goGuard.MetricSessionCorrupt:        "corrupt",
			goGuard.MetricSessionClearFailed:    "clear_failed",
			goGuard.MetricSessionStorageFailure: "storage_failure",
			goGuard.MetricSessionSaved:          "saved",
			goGuard.MetricSessionCleared:        "cleared",
		},
	},
}

// OTelExporter publishes an Engine's metrics through an OpenTelemetry meter.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	groups       []counterGroup
	buckets      metric.Int64ObservableGauge
	bucketOpts   [8]metric.ObserveOption
	count        metric.Int64ObservableGauge
	auditDropped metric.Int64ObservableCounter
}

func NewOTelExporter(meter metric.Meter, engine *goGuard.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	exporter := &OTelExporter{source: source}
	observables := make([]metric.Observable, 0, len(groups)+3)

	// Series follow CounterDefs order so collection output is stable.
	for _, g := range groups {
		ins, err := meter.Int64ObservableCounter(g.name, metric.WithDescription(g.help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", g.name, err)
		}
		cg := counterGroup{instrument: ins}
		for _, def := range internaldefs.CounterDefs {
			value, ok := g.values[def.ID]
			if !ok {
				continue
			}
			cg.series = append(cg.series, series{
				id:  def.ID,
				opt: metric.WithAttributeSet(attribute.NewSet(attribute.String(g.key, value))),
			})
		}
		exporter.groups = append(exporter.groups, cg)
		observables = append(observables, ins)
	}

	buckets, err := meter.Int64ObservableGauge(LatencyBucketName,
		metric.WithDescription("Cumulative navigation latency bucket counts."),
		metric.WithUnit("{navigation}"))
	if err != nil {
		return nil, fmt.Errorf("create latency bucket gauge: %w", err)
	}
	for i, bound := range internaldefs.HistogramBounds {
		exporter.bucketOpts[i] = metric.WithAttributeSet(attribute.NewSet(attribute.String(UpperBoundAttribute, bound)))
	}
	exporter.buckets = buckets

	count, err := meter.Int64ObservableGauge(LatencyCountName,
		metric.WithDescription("Navigations timed by the latency histogram."),
		metric.WithUnit("{navigation}"))
	if err != nil {
		return nil, fmt.Errorf("create latency count gauge: %w", err)
	}
	exporter.count = count

	auditDropped, err := meter.Int64ObservableCounter(AuditDroppedName,
		metric.WithDescription("Dropped audit events due to dispatcher backpressure."))
	if err != nil {
		return nil, fmt.Errorf("create audit dropped counter: %w", err)
	}
	exporter.auditDropped = auditDropped
	observables = append(observables, buckets, count, auditDropped)

	registration, err := meter.RegisterCallback(exporter.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}

	exporter.registration = registration
	return exporter, nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	snapshot := e.source.MetricsSnapshot()
	for _, g := range e.groups {
		for _, s := range g.series {
			observer.ObserveInt64(g.instrument, int64(snapshot.Counters[s.id]), s.opt)
		}
	}

	// Histogram is only present when latency histograms are enabled.
	if raw, ok := snapshot.Histograms[goGuard.MetricNavigateLatency]; ok {
		cumulative := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(raw))
		for i, v := range cumulative {
			observer.ObserveInt64(e.buckets, int64(v), e.bucketOpts[i])
		}
		observer.ObserveInt64(e.count, int64(cumulative[len(cumulative)-1]))
	}

	observer.ObserveInt64(e.auditDropped, int64(e.source.AuditDropped()))
	return nil
}

func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
