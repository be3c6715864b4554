// Package prom adapts metrics.Metrics to Prometheus, directly adapted
// from the teacher's metrics/prom/prom.go (same constructor shape: a
// Registerer, a namespace/subsystem pair, and const labels), with
// counters renamed from hit/miss/evict to the events this cache's
// revalidation engine produces.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swr-go/swr/metrics"
)

// Adapter implements metrics.Metrics and exports Prometheus counters and
// gauges. Safe for concurrent use; all Prometheus metric types are
// goroutine-safe.
type Adapter struct {
	fetchLaunched *prometheus.CounterVec
	fetchOK       prometheus.Counter
	fetchErr      prometheus.Counter
	retries       prometheus.Counter
	refreshes     prometheus.Counter
	entries       prometheus.Gauge
	inFlight      prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:         registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	a := &Adapter{
		fetchLaunched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "fetches_launched_total",
			Help:        "Background fetches launched, by revalidation reason",
			ConstLabels: constLabels,
		}, []string{"reason"}),
		fetchOK: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "fetch_ok_total",
			Help: "Fetches that completed successfully", ConstLabels: constLabels,
		}),
		fetchErr: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "fetch_err_total",
			Help: "Fetches that completed with an error", ConstLabels: constLabels,
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "retries_scheduled_total",
			Help: "Retry tasks armed after a fetch error", ConstLabels: constLabels,
		}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: sub, Name: "refreshes_scheduled_total",
			Help: "Refresh tasks armed, after a successful fetch or as a re-arm", ConstLabels: constLabels,
		}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: "entries",
			Help: "Resident cache entries", ConstLabels: constLabels,
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: sub, Name: "in_flight",
			Help: "Entries currently loading or validating", ConstLabels: constLabels,
		}),
	}
	reg.MustRegister(a.fetchLaunched, a.fetchOK, a.fetchErr, a.retries, a.refreshes, a.entries, a.inFlight)
	return a
}

func (a *Adapter) FetchLaunched(r metrics.Reason) { a.fetchLaunched.WithLabelValues(reasonLabel(r)).Inc() }
func (a *Adapter) FetchOK()                       { a.fetchOK.Inc() }
func (a *Adapter) FetchErr()                      { a.fetchErr.Inc() }
func (a *Adapter) RetryScheduled()                { a.retries.Inc() }
func (a *Adapter) RefreshScheduled()              { a.refreshes.Inc() }
func (a *Adapter) EntryCreated()                  { a.entries.Inc() }
func (a *Adapter) EntryEvicted()                  { a.entries.Dec() }
func (a *Adapter) InFlight(n int)                 { a.inFlight.Set(float64(n)) }

func reasonLabel(r metrics.Reason) string {
	switch r {
	case metrics.ReasonManual:
		return "manual"
	case metrics.ReasonFocus:
		return "focus"
	case metrics.ReasonRetry:
		return "retry"
	case metrics.ReasonFirstUsage:
		return "first_usage"
	case metrics.ReasonRefresh:
		return "refresh_interval"
	case metrics.ReasonStale:
		return "stale"
	case metrics.ReasonMutate:
		return "mutate"
	default:
		return "unknown"
	}
}

// Compile-time check: ensure Adapter implements metrics.Metrics.
var _ metrics.Metrics = (*Adapter)(nil)
