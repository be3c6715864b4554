package swr

import (
	"context"
	"reflect"

	"github.com/swr-go/swr/internal/entry"
	"github.com/swr-go/swr/revalidate"
	"github.com/swr-go/swr/runtime"
	"github.com/swr-go/swr/swropts"
	"github.com/swr-go/swr/swrerr"
)

// FetchResult is an immutable snapshot returned by Get/GetShallow. It
// carries a non-owning reference back to the owning SWR sufficient to
// call Revalidate/Mutate/MutateWith without holding an entry open.
type FetchResult[K comparable, T any] struct {
	owner *SWR[K]
	key   K

	Data       *T
	Err        error
	Loading    bool
	Validating bool
}

// Revalidate schedules a manual revalidation for this result's key.
func (r FetchResult[K, T]) Revalidate() { r.owner.Revalidate(r.key) }

// Mutate synchronously replaces this result's key with value.
func (r FetchResult[K, T]) Mutate(value T) { Mutate[K, T](r.owner, r.key, value) }

// MutateWith runs an asynchronous mutation against this result's key.
func (r FetchResult[K, T]) MutateWith(opts revalidate.MutateOptions[T], mutator func(ctx context.Context, prev *T) (T, error)) runtime.Task {
	return MutateWith[K, T](r.owner, r.key, opts, mutator)
}

func snapshot[K comparable, T any](owner *SWR[K], key K, e *entry.Entry[K], fallback *T) FetchResult[K, T] {
	res := FetchResult[K, T]{
		owner:      owner,
		key:        key,
		Loading:    e.IsLoading(),
		Validating: e.IsValidating(),
	}

	if v, ok := e.Data(); ok {
		if tv, ok := v.(T); ok {
			res.Data = &tv
		} else {
			var want T
			res.Err = &swrerr.MismatchedTypeError{Stored: e.DataType(), Wanted: reflect.TypeOf(want)}
		}
	} else if fallback != nil {
		res.Data = fallback
	}

	if res.Err == nil {
		if fetchErr, ok := e.Err(); ok {
			res.Err = fetchErr
		}
	}

	return res
}

// Get is the package-level one-shot equivalent of
// Persist(owner,key,opts).Get() followed by Release: it creates no
// durable handle.
func Get[K comparable, T any](owner *SWR[K], key K, opts swropts.Options[T]) FetchResult[K, T] {
	p := Persist[K, T](owner, key, opts)
	defer p.Release()
	return p.Get()
}
