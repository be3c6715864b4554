// Package swrerr defines the two error kinds a FetchResult can surface:
// a wrapped Fetcher error and a synthesized type-mismatch error. Grounded
// on the teacher's error handling (plain wrapped errors, no custom error
// package) generalized per the original source's error.rs taxonomy.
package swrerr

import (
	"fmt"
	"reflect"
)

// FetcherError wraps the embedder-supplied error returned by a failed
// Fetcher.Fetch call verbatim. Stored on the entry until a subsequent
// successful fetch or mutate clears it.
type FetcherError struct {
	Err error
}

func (e *FetcherError) Error() string { return "swr: fetch failed: " + e.Err.Error() }

// Unwrap exposes the embedder's error to errors.Is/errors.As.
func (e *FetcherError) Unwrap() error { return e.Err }

// MismatchedTypeError is synthesized per-call when the stored payload's
// runtime type does not match the type requested by the caller. Never
// stored on the entry; not retried, since it is a programming error.
type MismatchedTypeError struct {
	Stored reflect.Type
	Wanted reflect.Type
}

func (e *MismatchedTypeError) Error() string {
	return fmt.Sprintf("swr: type mismatch: entry holds %s, caller wants %s", e.Stored, e.Wanted)
}
