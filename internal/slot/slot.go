// Package slot implements the task-slot abstraction: at most one
// background task per role (fetch/refresh/retry), started with
// soft/abort/override semantics. Grounded on the original source's
// util.rs TaskSlot (same three start modes, same is_finished/abort
// contract) and on the teacher's internal/singleflight. Insert checks the
// slot and spawns while holding the slot's mutex.
package slot

import (
	"context"
	"sync"

	"github.com/swr-go/swr/runtime"
)

// StartMode selects how Insert behaves when a task is already occupying
// the slot.
type StartMode int

const (
	// Soft does not spawn a new task if one is present and not finished.
	Soft StartMode = iota
	// Abort cancels the running task, then spawns unconditionally.
	Abort
	// Override spawns unconditionally; the old task keeps running but
	// its handle is discarded (this slot forgets it).
	Override
)

// Slot holds at most one in-flight background task.
type Slot struct {
	rt runtime.Runtime

	mu   sync.Mutex
	task runtime.Task
}

// New returns an empty Slot bound to rt.
func New(rt runtime.Runtime) *Slot {
	return &Slot{rt: rt}
}

// Insert attempts to start fn in the background per mode, returning
// whether a new task was actually spawned. Cancellation is cooperative:
// fn must observe ctx.Done() to stop promptly; nothing prevents it from
// running past Abort momentarily, so completion handlers inside fn must
// re-check entry state before acting (see package entry/revalidate).
func (s *Slot) Insert(mode StartMode, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	switch mode {
	case Soft:
		if s.task != nil && !s.task.IsFinished() {
			s.mu.Unlock()
			return false
		}
	case Abort:
		if s.task != nil {
			s.task.Abort()
		}
	case Override:
		// Spawn unconditionally; old task (if any) is simply forgotten.
	}
	s.task = s.rt.Spawn(fn)
	s.mu.Unlock()
	return true
}

// IsFinished reports true when the slot is empty or its task has
// returned.
func (s *Slot) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.task == nil || s.task.IsFinished()
}

// Abort cancels and drops any task occupying the slot.
func (s *Slot) Abort() {
	s.mu.Lock()
	if s.task != nil {
		s.task.Abort()
		s.task = nil
	}
	s.mu.Unlock()
}
