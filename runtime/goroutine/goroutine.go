// Package goroutine provides the default Runtime: bare goroutines plus
// context cancellation and a time.Timer for Wait. Grounded on the
// teacher's cmd/bench worker-goroutine / context.WithTimeout style.
package goroutine

import (
	"context"
	"time"

	"github.com/swr-go/swr/runtime"
)

// Runtime implements runtime.Runtime with no worker pool or queueing:
// every Spawn call starts a new goroutine immediately.
type Runtime struct{}

// New returns a Runtime. There is no state to configure.
func New() Runtime { return Runtime{} }

type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (t *task) Abort() { t.cancel() }

func (t *task) IsFinished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Spawn starts fn on a new goroutine. A panic inside fn is not recovered:
// it crashes the host process, same as any other unrecovered goroutine
// panic in Go. Lock poisoning has no Go equivalent and runtime panics are
// meant to propagate, per the fatal-error policy background tasks are
// built against.
func (Runtime) Spawn(fn func(ctx context.Context)) runtime.Task {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t := &task{cancel: cancel, done: done}
	go func() {
		defer close(done)
		defer cancel()
		fn(ctx)
	}()
	return t
}

// Wait sleeps for d, or returns early with ctx.Err() if ctx is cancelled
// first. d <= 0 returns immediately.
func (Runtime) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
