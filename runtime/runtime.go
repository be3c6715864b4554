// Package runtime declares the async-executor collaborator SWR spawns
// background fetch/refresh/retry/mutate work on. Implementations must be
// cheap to share across every entry in a cache (see runtime/goroutine for
// a default built on bare goroutines, grounded on the worker-goroutine
// style of the teacher's cmd/bench load generator).
package runtime

import (
	"context"
	"time"
)

// Task is a handle to work started by Runtime.Spawn. Execution continues
// even if every Task handle referencing it is dropped; Abort only
// requests cancellation, it does not guarantee the task has stopped by
// the time it returns.
type Task interface {
	// Abort requests cancellation. Cooperative: callers must tolerate the
	// task observing cancellation late, or not at all if it already
	// finished.
	Abort()

	// IsFinished reports whether the task has returned, whether normally
	// or due to Abort.
	IsFinished() bool
}

// Runtime spawns and times background work for the revalidation engine.
// Implementations must be safe for concurrent use and cheap to copy/share.
type Runtime interface {
	// Spawn starts fn in the background and returns a handle to it. fn
	// receives a context that is cancelled when the returned Task is
	// aborted.
	Spawn(fn func(ctx context.Context)) Task

	// Wait blocks the calling goroutine for d, or until ctx is cancelled,
	// whichever comes first. Returns ctx.Err() only when cancellation won
	// the race.
	Wait(ctx context.Context, d time.Duration) error
}
