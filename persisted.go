package swr

import (
	"context"

	"github.com/swr-go/swr/internal/entry"
	"github.com/swr-go/swr/internal/store"
	"github.com/swr-go/swr/revalidate"
	"github.com/swr-go/swr/runtime"
	"github.com/swr-go/swr/swropts"
)

// Persisted is a long-lived handle to a key: it increments the entry's
// strong count on creation (Persist) and must be released (Release) to
// decrement it. It carries the call site's per-call Options, merged into
// the entry's policy on creation and on every Get call (GetShallow does
// not merge), since another call site may have changed the merged policy
// since the last observation.
type Persisted[K comparable, T any] struct {
	owner *SWR[K]
	id    store.ID
	key   K
	opts  swropts.Options[T]
}

// Persist creates a handle for key, retaining its entry so it survives
// GC regardless of observation until Release is called.
func Persist[K comparable, T any](owner *SWR[K], key K, opts swropts.Options[T]) *Persisted[K, T] {
	id, e := owner.getOrCreate(key)
	e.Retain()
	entry.MergeCallOptions(e, opts)
	return &Persisted[K, T]{owner: owner, id: id, key: key, opts: opts}
}

// Release decrements the entry's strong count. Safe to call even if the
// entry has already been evicted (a no-op in that case).
func (p *Persisted[K, T]) Release() {
	if e, ok := p.owner.store.Lookup(p.id); ok {
		e.Release()
	}
}

// Get drives intent computation and marks the entry used, possibly
// launching a background fetch, then returns the current snapshot. This
// is the call site for UI code observing a key once per frame.
func (p *Persisted[K, T]) Get() FetchResult[K, T] {
	e, ok := p.owner.store.Lookup(p.id)
	if !ok {
		return FetchResult[K, T]{owner: p.owner, key: p.key}
	}

	now := p.owner.now()
	merged := entry.MergeCallOptions(e, p.opts)
	intent := revalidate.ComputeIntent[K](p.owner.hook.WasFocusTriggered(), merged, e, now)
	e.MarkUsed(now)
	if intent != 0 {
		e.AddIntent(intent)
	}
	if drained := e.DrainIntent(); drained != 0 {
		mode, reason := revalidate.DecideLaunch(drained)
		revalidate.LaunchFetch(p.owner.deps(), p.id, e, mode, reason)
	}

	return snapshot[K, T](p.owner, p.key, e, p.opts.Fallback)
}

// GetShallow returns the current snapshot with no side effects: no
// intent computation, no mark-used, no fetch launch. The supported read
// path outside a rendering frame.
func (p *Persisted[K, T]) GetShallow() FetchResult[K, T] {
	e, ok := p.owner.store.Lookup(p.id)
	if !ok {
		return FetchResult[K, T]{owner: p.owner, key: p.key}
	}
	return snapshot[K, T](p.owner, p.key, e, p.opts.Fallback)
}

// Revalidate schedules a manual revalidation for this handle's key.
func (p *Persisted[K, T]) Revalidate() { p.owner.Revalidate(p.key) }

// Mutate synchronously replaces the key's data.
func (p *Persisted[K, T]) Mutate(value T) { Mutate[K, T](p.owner, p.key, value) }

// MutateWith runs an asynchronous mutation; see package-level MutateWith.
func (p *Persisted[K, T]) MutateWith(opts revalidate.MutateOptions[T], mutator func(ctx context.Context, prev *T) (T, error)) runtime.Task {
	return MutateWith[K, T](p.owner, p.key, opts, mutator)
}
