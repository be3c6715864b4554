// Package swr implements a stale-while-revalidate data-fetching cache
// meant to be driven from an immediate-mode rendering loop: on every
// frame, UI code asks for a key's value and gets back whatever is
// currently cached, while a background revalidation is scheduled when
// warranted. Grounded on the teacher's cache/cache.go top-level Cache
// type (constructor shape, functional options) generalized from a plain
// key→value store to the full per-key state machine this package
// implements in internal/entry and revalidate.
package swr

import (
	"time"

	"github.com/swr-go/swr/fetcher"
	"github.com/swr-go/swr/hook"
	"github.com/swr-go/swr/internal/entry"
	"github.com/swr-go/swr/internal/store"
	"github.com/swr-go/swr/metrics"
	"github.com/swr-go/swr/revalidate"
	"github.com/swr-go/swr/runtime"
)

// SWR owns every entry for a single key type K and ties the cache map,
// revalidation engine, and external collaborators together. Safe for
// concurrent use.
type SWR[K comparable] struct {
	store   *store.Store[K, *entry.Entry[K]]
	fetcher fetcher.Fetcher[K]
	runtime runtime.Runtime
	hook    hook.Hook
	metrics metrics.Metrics
	now     func() time.Time
}

// Option configures an SWR at construction.
type Option[K comparable] func(*SWR[K])

// WithMetrics installs a Metrics sink. Defaults to metrics.Noop.
func WithMetrics[K comparable](m metrics.Metrics) Option[K] {
	return func(s *SWR[K]) { s.metrics = m }
}

// WithClock overrides time.Now, for deterministic tests.
func WithClock[K comparable](now func() time.Time) Option[K] {
	return func(s *SWR[K]) { s.now = now }
}

// New constructs an SWR and installs the end-of-frame GC callback on hk.
func New[K comparable](fc fetcher.Fetcher[K], rt runtime.Runtime, hk hook.Hook, opts ...Option[K]) *SWR[K] {
	s := &SWR[K]{
		store:   store.New[K, *entry.Entry[K]](),
		fetcher: fc,
		runtime: rt,
		hook:    hk,
		metrics: metrics.Noop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	hk.RegisterEndFrameCB(s.endFrame)
	return s
}

func (s *SWR[K]) deps() revalidate.Deps[K] {
	return revalidate.Deps[K]{
		Store:   s.store,
		Fetcher: s.fetcher,
		Hook:    s.hook,
		Runtime: s.runtime,
		Metrics: s.metrics,
		Now:     s.now,
	}
}

func (s *SWR[K]) getOrCreate(key K) (store.ID, *entry.Entry[K]) {
	id, created := s.store.GetOrCreate(key, func() *entry.Entry[K] {
		return entry.New(key, s.runtime, s.now())
	})
	if created {
		s.metrics.EntryCreated()
	}
	e, _ := s.store.Lookup(id)
	return id, e
}

// Revalidate schedules a manual revalidation for key, launching a fetch
// immediately (start mode Abort, so it preempts any soft-started fetch
// already in flight — the newest intent wins).
func (s *SWR[K]) Revalidate(key K) {
	id, e := s.getOrCreate(key)
	e.AddIntent(entry.ManuallyTriggered)
	if drained := e.DrainIntent(); drained != 0 {
		mode, reason := revalidate.DecideLaunch(drained)
		revalidate.LaunchFetch(s.deps(), id, e, mode, reason)
	}
}

// endFrame is installed once via hook.RegisterEndFrameCB and implements
// the sweep order of §4.5.
func (s *SWR[K]) endFrame() {
	inFlight := 0
	now := s.now()
	s.store.Retain(func(_ store.ID, e *entry.Entry[K]) bool {
		if e.SweepUsedThisPass() {
			e.SetAlive()
			if e.IsLoading() || e.IsValidating() {
				inFlight++
			}
			return true
		}
		if e.SweepAlive() {
			// One-frame grace: was alive, missed one frame, keep for now.
			if e.IsLoading() || e.IsValidating() {
				inFlight++
			}
			return true
		}
		if e.StrongCount() > 0 {
			if e.IsLoading() || e.IsValidating() {
				inFlight++
			}
			return true
		}

		lastDraw, hasDraw := e.LastDrawTime()
		timeout := e.Options().GarbageCollectTimeout
		shouldGC := hasDraw && timeout != nil && now.Sub(lastDraw) >= *timeout
		if !shouldGC {
			return true
		}
		e.AbortAllTasks()
		s.metrics.EntryEvicted()
		return false
	})
	s.metrics.InFlight(inFlight)
}
