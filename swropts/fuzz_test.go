//go:build go1.18

package swropts

import (
	"testing"
	"time"
)

// Fuzz the merge rule over arbitrary duration/count/bool combinations.
// Grounded on the teacher's cache/fuzz_test.go (guard against panics,
// assert core invariants rather than exact values). Merge must never
// panic and must always pick values no larger than either input.
func FuzzMerge(f *testing.F) {
	f.Add(int64(0), true, int64(0), true, 0, 0)
	f.Add(int64(time.Second), false, int64(0), false, 3, 5)
	f.Add(int64(-1), true, int64(time.Hour), false, -1, 0)

	f.Fuzz(func(t *testing.T, baseNanos int64, baseFocus bool, callNanos int64, callFocus bool, baseRetry, callRetry int) {
		baseDur := time.Duration(baseNanos)
		callDur := time.Duration(callNanos)

		base := Merged{
			RevalidateOnFocus: baseFocus,
			RefreshInterval:   &baseDur,
			ErrorRetryCount:   &baseRetry,
		}
		call := Options[int]{
			RevalidateOnFocus: callFocus,
			RefreshInterval:   &callDur,
			ErrorRetryCount:   &callRetry,
		}

		merged := Merge[int](base, call)

		if !merged.RevalidateOnFocus && (baseFocus || callFocus) {
			t.Fatalf("OR of booleans must be true if either input is true: base=%v call=%v merged=%v", baseFocus, callFocus, merged.RevalidateOnFocus)
		}
		if merged.RefreshInterval == nil {
			t.Fatalf("RefreshInterval must not be nil when both inputs are present")
		}
		if *merged.RefreshInterval != minOf(baseDur, callDur) {
			t.Fatalf("RefreshInterval must be the min of the two inputs: base=%v call=%v merged=%v", baseDur, callDur, *merged.RefreshInterval)
		}
		if merged.ErrorRetryCount == nil {
			t.Fatalf("ErrorRetryCount must not be nil when both inputs are present")
		}
		if *merged.ErrorRetryCount != minIntOf(baseRetry, callRetry) {
			t.Fatalf("ErrorRetryCount must be the min of the two inputs: base=%v call=%v merged=%v", baseRetry, callRetry, *merged.ErrorRetryCount)
		}

		// Merge must be idempotent when folding the result's own Merged
		// state back in as a call against itself.
		again := Merge[int](merged, Options[int]{
			RevalidateOnFocus: merged.RevalidateOnFocus,
			RefreshInterval:   merged.RefreshInterval,
			ErrorRetryCount:   merged.ErrorRetryCount,
		})
		if again != merged {
			t.Fatalf("merging a policy with itself must be a no-op: before=%+v after=%+v", merged, again)
		}
	})
}

func minOf(a, b time.Duration) time.Duration {
	if a <= b {
		return a
	}
	return b
}

func minIntOf(a, b int) int {
	if a <= b {
		return a
	}
	return b
}
