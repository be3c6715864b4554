// Package metrics exposes cache-level observability hooks for SWR,
// adapted from the teacher's cache/metrics.go Metrics interface (there:
// Hit/Miss/Evict/Size; here: fetch/refresh/retry/gc, the events this
// cache's revalidation engine actually produces).
package metrics

// Reason explains why a fetch was launched, mirroring the revalidation
// intent bits that triggered it.
type Reason int

const (
	ReasonManual Reason = iota
	ReasonFocus
	ReasonRetry
	ReasonFirstUsage
	ReasonRefresh
	ReasonStale
	ReasonMutate
)

// Metrics receives signals from the revalidation engine and GC pass. A
// Noop implementation is used by default.
type Metrics interface {
	// FetchLaunched is called whenever launch_fetch actually starts a
	// task (TaskSlot.Insert returned true).
	FetchLaunched(reason Reason)
	// FetchOK/FetchErr record the outcome of a completed fetch.
	FetchOK()
	FetchErr()
	// RetryScheduled is called each time launch_retry arms a retry task
	// after a fetch error. RefreshScheduled is called each time
	// launch_refresh (re-)arms the periodic refresh chain, whether after
	// a successful fetch or simply re-arming for another interval.
	RetryScheduled()
	RefreshScheduled()
	// EntryCreated/EntryEvicted track the cache's resident entry count.
	EntryCreated()
	EntryEvicted()
	// InFlight reports the number of entries currently LOADING or
	// VALIDATING, sampled once per GC pass.
	InFlight(n int)
}

// Noop implements Metrics by discarding every signal.
type Noop struct{}

func (Noop) FetchLaunched(Reason) {}
func (Noop) FetchOK()             {}
func (Noop) FetchErr()            {}
func (Noop) RetryScheduled()      {}
func (Noop) RefreshScheduled()    {}
func (Noop) EntryCreated()        {}
func (Noop) EntryEvicted()        {}
func (Noop) InFlight(int)         {}
