// Package bitflag provides a packed atomic status word: a single uint32
// manipulated with bitwise get/set/clear, used wherever this module needs
// several independent boolean flags to be readable and writable without a
// lock (entry status, revalidation intent).
package bitflag

import "sync/atomic"

// Word is an atomically manipulated set of bit flags.
type Word struct {
	v atomic.Uint32
}

// Load returns the current bits.
func (w *Word) Load() uint32 { return w.v.Load() }

// Has reports whether all bits in mask are currently set.
func (w *Word) Has(mask uint32) bool { return w.v.Load()&mask == mask }

// Any reports whether any bit in mask is currently set.
func (w *Word) Any(mask uint32) bool { return w.v.Load()&mask != 0 }

// Set ORs bits into the word and returns the value from before the OR.
func (w *Word) Set(mask uint32) uint32 { return w.v.Or(mask) }

// Clear ANDs the complement of bits into the word and returns the value
// from before the clear.
func (w *Word) Clear(mask uint32) uint32 { return w.v.And(^mask) }

// Store overwrites the word unconditionally.
func (w *Word) Store(v uint32) { w.v.Store(v) }

// Swap atomically replaces the word and returns the previous value.
func (w *Word) Swap(v uint32) uint32 { return w.v.Swap(v) }

// TestAndSet sets bits and reports whether any of them were already set.
func (w *Word) TestAndSet(mask uint32) bool { return w.Set(mask)&mask != 0 }

// TestAndClear clears bits and reports whether any of them were set
// beforehand. Used by the GC pass to atomically read-then-clear
// USED_THIS_PASS/ALIVE.
func (w *Word) TestAndClear(mask uint32) bool { return w.Clear(mask)&mask != 0 }

// Take clears the whole word and returns the bits it held, used to
// atomically drain the revalidation-intent bitset.
func (w *Word) Take() uint32 { return w.Swap(0) }
