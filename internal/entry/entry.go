// Package entry implements the per-key state machine: data/error,
// packed status flags, revalidation intent, retry counter, timestamps,
// strong-handle count, the three task slots, and merged options.
// Grounded on the original source's cache/entry.go CacheEntry (field
// layout, insert/insert_error invariants) and on the teacher's
// cache/node.go for the shape of a slot-resident record owned by the
// cache map.
package entry

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swr-go/swr/internal/bitflag"
	"github.com/swr-go/swr/internal/slot"
	"github.com/swr-go/swr/runtime"
	"github.com/swr-go/swr/swropts"
)

type dataBox struct {
	value any
	typ   reflect.Type
}

type errBox struct {
	err error
}

// Entry is the per-key record held by the cache map. Zero value is not
// useful; construct with New.
type Entry[K comparable] struct {
	Key K

	status bitflag.Word
	intent bitflag.Word

	data atomic.Pointer[dataBox]
	err  atomic.Pointer[errBox]

	retryCount atomic.Uint32

	lastDrawTime    atomic.Pointer[time.Time]
	lastRequestTime atomic.Pointer[time.Time]

	strongCount atomic.Int32

	FetchTask   *slot.Slot
	RefreshTask *slot.Slot
	RetryTask   *slot.Slot

	optsMu sync.RWMutex
	opts   swropts.Merged
}

// New returns an empty Entry for key, with fresh task slots bound to rt.
// lastDrawTime is seeded to now rather than left unset, mirroring the
// original source's CacheEntry::new (last_draw_time: AtomicInstant::now())
// so a created-but-never-observed entry (e.g. one touched only by Mutate,
// which never calls MarkUsed) still has an age the end-of-frame GC pass
// can measure against GarbageCollectTimeout, instead of being kept
// forever for lack of a last-draw timestamp.
func New[K comparable](key K, rt runtime.Runtime, now time.Time) *Entry[K] {
	e := &Entry[K]{
		Key:         key,
		FetchTask:   slot.New(rt),
		RefreshTask: slot.New(rt),
		RetryTask:   slot.New(rt),
	}
	e.lastDrawTime.Store(&now)
	return e
}

// Status returns the current packed status bits.
func (e *Entry[K]) Status() uint32 { return e.status.Load() }

// HasData, HasError, IsLoading, IsValidating, IsAlive report individual
// status bits.
func (e *Entry[K]) HasData() bool      { return e.status.Has(HasData) }
func (e *Entry[K]) HasError() bool     { return e.status.Has(HasError) }
func (e *Entry[K]) IsLoading() bool    { return e.status.Has(Loading) }
func (e *Entry[K]) IsValidating() bool { return e.status.Has(Validating) }
func (e *Entry[K]) IsAlive() bool      { return e.status.Has(Alive) }

// Data returns the current payload and whether one is present.
func (e *Entry[K]) Data() (any, bool) {
	b := e.data.Load()
	if b == nil {
		return nil, false
	}
	return b.value, true
}

// DataType returns the runtime type of the stored payload, used to
// synthesize MismatchedTypeError without having to type-assert first.
func (e *Entry[K]) DataType() reflect.Type {
	b := e.data.Load()
	if b == nil {
		return nil
	}
	return b.typ
}

// Err returns the stored fetcher error and whether one is present.
func (e *Entry[K]) Err() (error, bool) {
	b := e.err.Load()
	if b == nil {
		return nil, false
	}
	return b.err, true
}

// RetryCount returns the consecutive fetch-error count since last
// success.
func (e *Entry[K]) RetryCount() uint32 { return e.retryCount.Load() }

// LastDrawTime returns the timestamp of the last observation during a
// frame (the creation time until the first observation), and whether a
// timestamp is recorded; New always records one, so for entries built by
// New the second result is always true.
func (e *Entry[K]) LastDrawTime() (time.Time, bool) {
	t := e.lastDrawTime.Load()
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

// LastRequestTime returns the timestamp of the last fetch completion
// (ok or err), and whether one has occurred.
func (e *Entry[K]) LastRequestTime() (time.Time, bool) {
	t := e.lastRequestTime.Load()
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

// LastRequestTimePtr returns the last-request timestamp as a pointer,
// nil if there has not been one yet. Used by throttle checks that treat
// "no prior request" as "no constraint".
func (e *Entry[K]) LastRequestTimePtr() *time.Time { return e.lastRequestTime.Load() }

// MarkUsed sets USED_THIS_PASS and records now as last_draw_time. Called
// once per observation, on the UI thread.
func (e *Entry[K]) MarkUsed(now time.Time) {
	e.status.Set(UsedThisPass)
	e.lastDrawTime.Store(&now)
}

// SweepUsedThisPass atomically clears USED_THIS_PASS and reports whether
// it was set beforehand. Used by the GC pass.
func (e *Entry[K]) SweepUsedThisPass() bool { return e.status.TestAndClear(UsedThisPass) }

// SetAlive sets ALIVE.
func (e *Entry[K]) SetAlive() { e.status.Set(Alive) }

// SweepAlive atomically clears ALIVE and reports whether it was set
// beforehand.
func (e *Entry[K]) SweepAlive() bool { return e.status.TestAndClear(Alive) }

// Retain increments the strong-handle count and returns the new value.
func (e *Entry[K]) Retain() int32 { return e.strongCount.Add(1) }

// Release decrements the strong-handle count and returns the new value.
func (e *Entry[K]) Release() int32 { return e.strongCount.Add(-1) }

// StrongCount returns the current number of live Persisted handles.
func (e *Entry[K]) StrongCount() int32 { return e.strongCount.Load() }

// AddIntent ORs mask into the pending revalidation intent.
func (e *Entry[K]) AddIntent(mask uint32) { e.intent.Set(mask) }

// DrainIntent atomically reads and clears the pending revalidation
// intent.
func (e *Entry[K]) DrainIntent() uint32 { return e.intent.Take() }

// SetLoadingOrValidating sets LOADING if no data is present, else
// VALIDATING, per invariant 3. Must be called only after FetchTask.Insert
// has accepted the launch.
func (e *Entry[K]) SetLoadingOrValidating() {
	if e.status.Has(HasData) {
		e.status.Set(Validating)
	} else {
		e.status.Set(Loading)
	}
}

// InsertData records a successful fetch/mutate outcome: replaces data,
// clears LOADING|VALIDATING|HAS_ERROR, sets HAS_DATA, zeros retry_count,
// and (if now is non-zero) updates last_request_time. The previous data
// is dropped only after the new value has been published (invariant:
// insertion of data must drop any previously stored data after the new
// value is visible).
func (e *Entry[K]) InsertData(v any, now time.Time) {
	e.data.Store(&dataBox{value: v, typ: reflect.TypeOf(v)})
	e.status.Clear(Loading | Validating | HasError)
	e.status.Set(HasData)
	e.retryCount.Store(0)
	e.err.Store(nil)
	if !now.IsZero() {
		e.lastRequestTime.Store(&now)
	}
}

// InsertError records a failed fetch outcome: stores error, clears
// LOADING|VALIDATING, sets HAS_ERROR, updates last_request_time,
// increments retry_count. Existing data is preserved (invariant 6).
func (e *Entry[K]) InsertError(err error, now time.Time) {
	e.err.Store(&errBox{err: err})
	e.status.Clear(Loading | Validating)
	e.status.Set(HasError)
	e.retryCount.Add(1)
	e.lastRequestTime.Store(&now)
}

// ClearError drops the stored error without touching data. The mutate
// paths do not call it: InsertData already clears the error.
func (e *Entry[K]) ClearError() {
	e.err.Store(nil)
	e.status.Clear(HasError)
}

// AbortAllTasks requests cancellation of every task slot, used by the GC
// pass before an entry is dropped. (mutate_with aborts only FetchTask.)
func (e *Entry[K]) AbortAllTasks() {
	e.FetchTask.Abort()
	e.RefreshTask.Abort()
	e.RetryTask.Abort()
}

// Options returns the entry's current merged options.
func (e *Entry[K]) Options() swropts.Merged {
	e.optsMu.RLock()
	defer e.optsMu.RUnlock()
	return e.opts
}

// SetOptions replaces the entry's merged options wholesale.
// MergeCallOptions does not go through it.
func (e *Entry[K]) SetOptions(m swropts.Merged) {
	e.optsMu.Lock()
	e.opts = m
	e.optsMu.Unlock()
}

// MergeCallOptions folds a call site's per-call Options into the entry's
// merged policy and returns the result. A free function rather than a
// method because Go does not allow generic methods: Entry is generic
// only over K, while the payload type T varies per call site.
func MergeCallOptions[K comparable, T any](e *Entry[K], call swropts.Options[T]) swropts.Merged {
	e.optsMu.Lock()
	defer e.optsMu.Unlock()
	e.opts = swropts.Merge(e.opts, call)
	return e.opts
}
