// Package fetcher declares the data-loading collaborator. SWR is generic
// over the key type K only: the fetched value is type-erased to any so a
// single Fetcher can serve Persisted[K, T] handles requesting different T
// for the same key, with SWR surfacing a MismatchedTypeError to any
// caller whose T does not match what was actually stored (Go has no
// generic interface methods, so this is the idiomatic stand-in for the
// original Fetcher::fetch<T> generic trait method).
package fetcher

import "context"

// Fetcher loads the value for a key. Implementations must be safe to
// call concurrently: the revalidation engine may invoke Fetch for
// several keys, and for retries of the same key, at the same time.
type Fetcher[K comparable] interface {
	Fetch(ctx context.Context, key K) (any, error)
}

// Func adapts a plain function to a Fetcher.
type Func[K comparable] func(ctx context.Context, key K) (any, error)

// Fetch implements Fetcher.
func (f Func[K]) Fetch(ctx context.Context, key K) (any, error) { return f(ctx, key) }
