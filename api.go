package swr

import (
	"context"

	"github.com/swr-go/swr/revalidate"
	"github.com/swr-go/swr/runtime"
)

// GetShallow is a non-lifecycle read: it returns the current snapshot
// for key if the entry already exists, with no side effects, and false
// if no entry has ever been created for key.
func GetShallow[K comparable, T any](owner *SWR[K], key K) (FetchResult[K, T], bool) {
	id, ok := owner.store.Get(key)
	if !ok {
		return FetchResult[K, T]{}, false
	}
	e, ok := owner.store.Lookup(id)
	if !ok {
		return FetchResult[K, T]{}, false
	}
	return snapshot[K, T](owner, key, e, nil), true
}

// Mutate synchronously replaces key's data: clears error and
// loading/validating, sets HAS_DATA, updates last_request_time, requests
// a redraw.
func Mutate[K comparable, T any](owner *SWR[K], key K, value T) {
	_, e := owner.getOrCreate(key)
	revalidate.Mutate(owner.deps(), e, value)
}

// MutateWith runs mutator in the background: applies optimistic data
// immediately if configured, awaits mutator, aborts any in-flight fetch
// on reacquire, then applies the result or rolls back per opts. Returns
// the spawned task.
func MutateWith[K comparable, T any](owner *SWR[K], key K, opts revalidate.MutateOptions[T], mutator func(ctx context.Context, prev *T) (T, error)) runtime.Task {
	id, e := owner.getOrCreate(key)
	return revalidate.MutateWith[K, T](owner.deps(), id, e, opts, mutator)
}
