// Package revalidate implements the decision logic that turns frame
// events and merged options into fetch/refresh/retry task launches:
// launch_fetch, launch_refresh, launch_retry, and the synchronous and
// asynchronous mutate operations. Grounded on the original source's
// revalidate.rs (same three launch functions, same completion-path
// branching) with task spawning translated from Rust futures to the
// runtime.Runtime collaborator.
package revalidate

import (
	"context"
	"time"

	"github.com/swr-go/swr/fetcher"
	"github.com/swr-go/swr/hook"
	"github.com/swr-go/swr/internal/entry"
	"github.com/swr-go/swr/internal/slot"
	"github.com/swr-go/swr/internal/store"
	"github.com/swr-go/swr/metrics"
	"github.com/swr-go/swr/runtime"
	"github.com/swr-go/swr/swropts"
	"github.com/swr-go/swr/swrerr"
)

// Deps bundles the collaborators the revalidation engine needs to
// reacquire entries and drive background work. One Deps is shared by
// every key in a cache.
type Deps[K comparable] struct {
	Store   *store.Store[K, *entry.Entry[K]]
	Fetcher fetcher.Fetcher[K]
	Hook    hook.Hook
	Runtime runtime.Runtime
	Metrics metrics.Metrics
	Now     func() time.Time
}

func (d Deps[K]) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// LaunchFetch attempts to start a fetch task for id/e with the given
// start mode, returning whether a task was actually spawned. On
// acceptance, sets LOADING or VALIDATING per whether data is already
// present (invariant 3) and reports reason to Metrics.
func LaunchFetch[K comparable](d Deps[K], id store.ID, e *entry.Entry[K], mode slot.StartMode, reason metrics.Reason) bool {
	ok := e.FetchTask.Insert(mode, func(ctx context.Context) {
		runFetch(ctx, d, id, e.Key)
	})
	if ok {
		e.SetLoadingOrValidating()
		d.Metrics.FetchLaunched(reason)
	}
	return ok
}

func runFetch[K comparable](ctx context.Context, d Deps[K], id store.ID, key K) {
	value, fetchErr := d.Fetcher.Fetch(ctx, key)
	if ctx.Err() != nil {
		// Aborted (superseded fetch, mutate_with, or GC): drop the result.
		return
	}

	e, ok := d.Store.Lookup(id)
	if !ok {
		return
	}
	now := d.now()

	if fetchErr == nil {
		e.InsertData(value, now)
		d.Metrics.FetchOK()
		d.Hook.RequestRedraw()
		if interval := e.Options().RefreshInterval; interval != nil {
			LaunchRefresh(d, id, e, *interval)
		}
		return
	}

	e.InsertError(&swrerr.FetcherError{Err: fetchErr}, now)
	d.Metrics.FetchErr()
	opts := e.Options()
	if opts.ErrorRetryInterval != nil && withinRetryBudget(opts.ErrorRetryCount, e.RetryCount()) {
		LaunchRetry(d, id, e, *opts.ErrorRetryInterval)
	}
	d.Hook.RequestRedraw()
}

func withinRetryBudget(limit *int, retryCount uint32) bool {
	return limit == nil || retryCount < uint32(*limit)
}

// LaunchRefresh installs (start mode Abort, so only one refresh chain
// exists) a task that sleeps interval, then either relaunches a fetch or
// re-arms itself for another interval, per §4.4.3.
func LaunchRefresh[K comparable](d Deps[K], id store.ID, e *entry.Entry[K], interval time.Duration) {
	d.Metrics.RefreshScheduled()
	e.RefreshTask.Insert(slot.Abort, func(ctx context.Context) {
		runRefresh(d, id, interval, ctx)
	})
}

func runRefresh[K comparable](d Deps[K], id store.ID, interval time.Duration, ctx context.Context) {
	if err := d.Runtime.Wait(ctx, interval); err != nil {
		return
	}

	e, ok := d.Store.Lookup(id)
	if !ok {
		return
	}

	opts := e.Options()
	allowedByFocus := d.Hook.Focused() || opts.RefreshWhenUnfocused
	throttleOK := swropts.Throttled(e.LastRequestTimePtr(), opts.Throttle, d.now())

	if allowedByFocus && e.IsAlive() && throttleOK {
		LaunchFetch(d, id, e, slot.Soft, metrics.ReasonRefresh)
		return
	}

	// Re-install for another interval: keep the chain alive while
	// unfocused and RefreshWhenUnfocused is false.
	LaunchRefresh(d, id, e, interval)
}

// LaunchRetry installs (start mode Abort) a task that sleeps interval,
// then relaunches a fetch if the entry is still erroring and alive, per
// §4.4.4.
func LaunchRetry[K comparable](d Deps[K], id store.ID, e *entry.Entry[K], interval time.Duration) {
	d.Metrics.RetryScheduled()
	e.RetryTask.Insert(slot.Abort, func(ctx context.Context) {
		runRetry(d, id, interval, ctx)
	})
}

func runRetry[K comparable](d Deps[K], id store.ID, interval time.Duration, ctx context.Context) {
	if err := d.Runtime.Wait(ctx, interval); err != nil {
		return
	}

	e, ok := d.Store.Lookup(id)
	if !ok {
		return
	}
	if !e.HasError() || !e.IsAlive() {
		return
	}

	opts := e.Options()
	if !swropts.Throttled(e.LastRequestTimePtr(), opts.Throttle, d.now()) {
		return
	}
	if LaunchFetch(d, id, e, slot.Soft, metrics.ReasonRetry) {
		d.Hook.RequestRedraw()
	}
}

// Mutate synchronously replaces an entry's data: clears error and
// loading/validating, sets HAS_DATA, updates last_request_time, requests
// a redraw.
func Mutate[K comparable](d Deps[K], e *entry.Entry[K], value any) {
	e.InsertData(value, d.now())
	d.Hook.RequestRedraw()
}

// MutateOptions configures MutateWith. The original source's populator
// step is folded directly into the mutator's return value: rather than
// taking a separate populator(result) transform, the mutator returns the
// T to store.
type MutateOptions[T any] struct {
	// OptimisticData, if set, is applied synchronously before mutator
	// runs; the data it replaced is restored on failure if
	// RollbackOnError is set.
	OptimisticData *T
	// Revalidate adds MUTATE intent after a successful mutator, so the
	// next observation launches a confirming fetch.
	Revalidate bool
	// RollbackOnError restores the pre-optimistic data if mutator fails.
	RollbackOnError bool
}

// MutateWith runs mutator in the background per §4.4.5: applies optional
// optimistic data immediately, awaits the mutator, aborts any running
// fetch task on reacquire (its result is presumed outdated), applies the
// mutator's result on success, rolls back on failure if configured, and
// requests a redraw. Returns the spawned task so the caller can abort it
// directly; unlike fetch/refresh/retry this does not go through one of
// the entry's three named task slots; it is a one-shot caller-owned
// task.
func MutateWith[K comparable, T any](d Deps[K], id store.ID, e *entry.Entry[K], opts MutateOptions[T], mutator func(ctx context.Context, prev *T) (T, error)) runtime.Task {
	prev := currentTyped[K, T](e)
	var rollbackTo *T
	if opts.OptimisticData != nil {
		rollbackTo = prev
		Mutate(d, e, *opts.OptimisticData)
	}

	return d.Runtime.Spawn(func(ctx context.Context) {
		result, err := mutator(ctx, prev)

		ce, ok := d.Store.Lookup(id)
		if !ok {
			return
		}
		ce.FetchTask.Abort()

		switch {
		case err == nil:
			Mutate(d, ce, result)
			if opts.Revalidate {
				ce.AddIntent(entry.Mutate)
			}
		case opts.RollbackOnError && rollbackTo != nil:
			Mutate(d, ce, *rollbackTo)
		default:
			d.Hook.RequestRedraw()
		}
	})
}

func currentTyped[K comparable, T any](e *entry.Entry[K]) *T {
	v, ok := e.Data()
	if !ok {
		return nil
	}
	tv, ok := v.(T)
	if !ok {
		return nil
	}
	return &tv
}
