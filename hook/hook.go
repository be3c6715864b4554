// Package hook declares the GUI-integration collaborator: it lets SWR ask
// the host to redraw, lets it run the end-of-frame GC sweep, and lets the
// revalidation engine observe window-focus transitions.
package hook

// Hook connects SWR to a rendering loop.
type Hook interface {
	// RequestRedraw schedules a new frame. Idempotent: callers may invoke
	// it any number of times per frame.
	RequestRedraw()

	// RegisterEndFrameCB installs the function SWR runs after every
	// frame to sweep unused entries. Only the last registered callback
	// is kept; SWR.New calls this exactly once.
	RegisterEndFrameCB(cb func())

	// Focused reports whether the host window currently has focus.
	Focused() bool

	// WasFocusTriggered reports whether the current frame is the one in
	// which the window regained focus.
	WasFocusTriggered() bool
}
