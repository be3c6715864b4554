package revalidate

import (
	"time"

	"github.com/swr-go/swr/internal/entry"
	"github.com/swr-go/swr/internal/slot"
	"github.com/swr-go/swr/metrics"
	"github.com/swr-go/swr/swropts"
)

// ComputeIntent implements §4.4.1 steps 1–2: it does not mark the entry
// used or drain/launch anything, leaving that to the caller (Persisted's
// Get).
func ComputeIntent[K comparable](hookFocusTriggered bool, opts swropts.Merged, e *entry.Entry[K], now time.Time) uint32 {
	var intent uint32

	if hookFocusTriggered && opts.RevalidateOnFocus {
		lastDraw, hasDraw := e.LastDrawTime()
		var prev *time.Time
		if hasDraw {
			prev = &lastDraw
		}
		if swropts.Throttled(prev, opts.FocusThrottleInterval, now) {
			intent |= entry.ApplicationFocused
		}
	}

	if !e.IsAlive() {
		switch {
		case opts.FetchOnFirstUse && !e.HasData():
			intent |= entry.FirstUsage
		case e.IsLoading() && e.FetchTask.IsFinished():
			intent |= entry.FirstUsage
		default:
			intent |= entry.Stale
		}
	}

	return intent
}

// DecideLaunch maps drained intent bits to the start mode and the
// metrics reason recorded for the resulting launch_fetch call: Abort
// when MANUALLY_TRIGGERED is among the drained bits (the newest intent
// must win), Soft otherwise. The reported reason follows a fixed
// priority so a combined intent still yields one label.
func DecideLaunch(intent uint32) (slot.StartMode, metrics.Reason) {
	mode := slot.Soft
	if intent&entry.ManuallyTriggered != 0 {
		mode = slot.Abort
	}
	return mode, reasonFor(intent)
}

func reasonFor(intent uint32) metrics.Reason {
	switch {
	case intent&entry.Mutate != 0:
		return metrics.ReasonMutate
	case intent&entry.ManuallyTriggered != 0:
		return metrics.ReasonManual
	case intent&entry.RetryOnError != 0:
		return metrics.ReasonRetry
	case intent&entry.ApplicationFocused != 0:
		return metrics.ReasonFocus
	case intent&entry.FirstUsage != 0:
		return metrics.ReasonFirstUsage
	case intent&entry.RefreshIntervalIntent != 0:
		return metrics.ReasonRefresh
	default:
		return metrics.ReasonStale
	}
}
