// Package swropts defines the per-call Options[T] callers pass to
// Persist/Get, the entry-level Merged policy every call site
// referencing a key negotiates into, and the merge rule itself. Grounded
// on the teacher's cache/options.go Options[K,V] struct (field layout and
// doc-comment register) and on the original source's options.rs for the
// exact merge semantics.
package swropts

import "time"

// Options are per-call settings. A zero Options imposes no constraints of
// its own on the shared entry (every optional field absent, every bool
// false) except Fallback, which is never merged and purely local to the
// handle that set it.
type Options[T any] struct {
	// Fallback is returned when no data is present yet. Local to the
	// call; never merged with other call sites referencing the same key.
	Fallback *T

	// FetchOnFirstUse fires a fetch the first time the entry is observed.
	FetchOnFirstUse bool

	// GarbageCollectTimeout is the age-out threshold used by the
	// end-of-frame GC pass.
	GarbageCollectTimeout *time.Duration

	// RevalidateOnFocus fetches when the window regains focus.
	RevalidateOnFocus bool
	// FocusThrottleInterval is the minimum gap between focus-triggered
	// fetches.
	FocusThrottleInterval *time.Duration

	// RefreshInterval is the periodic refresh cadence.
	RefreshInterval *time.Duration
	// RefreshWhenUnfocused allows refreshes while the window is
	// unfocused.
	RefreshWhenUnfocused bool

	// ErrorRetryInterval is the delay before retrying after a fetch
	// error.
	ErrorRetryInterval *time.Duration
	// ErrorRetryCount caps the number of consecutive retries.
	ErrorRetryCount *int

	// Throttle is the minimum gap between requests of any kind.
	Throttle *time.Duration
}

// Immutable returns Options tuned for data that never needs to be
// refreshed: focus-revalidation is disabled and the GC timeout is
// cleared (if no call site sets a timeout, the GC pass never evicts the
// entry).
func Immutable[T any]() Options[T] {
	return Options[T]{
		RevalidateOnFocus:     false,
		GarbageCollectTimeout: nil,
	}
}

// Merged is the entry-level policy every call site sharing a key
// negotiates into. It has no Fallback field: fallbacks are deliberately
// per-viewer and never merged (see Merge).
type Merged struct {
	FetchOnFirstUse       bool
	GarbageCollectTimeout *time.Duration
	RevalidateOnFocus     bool
	FocusThrottleInterval *time.Duration
	RefreshInterval       *time.Duration
	RefreshWhenUnfocused  bool
	ErrorRetryInterval    *time.Duration
	ErrorRetryCount       *int
	Throttle              *time.Duration
}

// Merge folds call-site Options into the entry's Merged policy: booleans
// are OR-combined, durations and the retry count take the minimum
// (treating an absent value as "no constraint from this caller", so a
// present value always wins over absent). Fallback is intentionally not
// considered.
func Merge[T any](base Merged, call Options[T]) Merged {
	return Merged{
		FetchOnFirstUse:       base.FetchOnFirstUse || call.FetchOnFirstUse,
		GarbageCollectTimeout: minDuration(base.GarbageCollectTimeout, call.GarbageCollectTimeout),
		RevalidateOnFocus:     base.RevalidateOnFocus || call.RevalidateOnFocus,
		FocusThrottleInterval: minDuration(base.FocusThrottleInterval, call.FocusThrottleInterval),
		RefreshInterval:       minDuration(base.RefreshInterval, call.RefreshInterval),
		RefreshWhenUnfocused:  base.RefreshWhenUnfocused || call.RefreshWhenUnfocused,
		ErrorRetryInterval:    minDuration(base.ErrorRetryInterval, call.ErrorRetryInterval),
		ErrorRetryCount:       minInt(base.ErrorRetryCount, call.ErrorRetryCount),
		Throttle:              minDuration(base.Throttle, call.Throttle),
	}
}

func minDuration(a, b *time.Duration) *time.Duration {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *a <= *b:
		return a
	default:
		return b
	}
}

func minInt(a, b *int) *int {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *a <= *b:
		return a
	default:
		return b
	}
}

// Throttled reports whether an action gated by a minimum gap of
// throttleInterval since prev should proceed now, per the elapsed-since
// rule used for Throttle/FocusThrottleInterval: true
// (allowed) when prev is absent, throttleInterval is absent, or enough
// time has elapsed.
func Throttled(prev *time.Time, throttleInterval *time.Duration, now time.Time) bool {
	if prev == nil || throttleInterval == nil {
		return true
	}
	return now.Sub(*prev) >= *throttleInterval
}
