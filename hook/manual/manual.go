// Package manual provides a Hook driven explicitly by test/example code
// rather than a GUI toolkit, grounded on the teacher's fakeClock test
// seam (cache/cache_test.go) and the original source's MockHook.
package manual

import "sync"

// Hook is a manually-driven hook.Hook. Safe for concurrent use.
type Hook struct {
	mu             sync.Mutex
	focused        bool
	focusTriggered bool
	wantsRedraw    bool
	endFrame       func()
}

// New returns a Hook that starts focused with no pending redraw.
func New() *Hook {
	return &Hook{focused: true}
}

// RequestRedraw implements hook.Hook.
func (h *Hook) RequestRedraw() {
	h.mu.Lock()
	h.wantsRedraw = true
	h.mu.Unlock()
}

// RegisterEndFrameCB implements hook.Hook.
func (h *Hook) RegisterEndFrameCB(cb func()) {
	h.mu.Lock()
	h.endFrame = cb
	h.mu.Unlock()
}

// Focused implements hook.Hook.
func (h *Hook) Focused() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused
}

// WasFocusTriggered implements hook.Hook.
func (h *Hook) WasFocusTriggered() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focusTriggered
}

// SetFocused sets the current focus state.
func (h *Hook) SetFocused(focused bool) {
	h.mu.Lock()
	h.focused = focused
	h.mu.Unlock()
}

// TriggerFocus marks the next frame as the one where focus was regained.
func (h *Hook) TriggerFocus(triggered bool) {
	h.mu.Lock()
	h.focusTriggered = triggered
	h.mu.Unlock()
}

// TakeWantsRedraw reports and clears whether a redraw was requested since
// the last call.
func (h *Hook) TakeWantsRedraw() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	v := h.wantsRedraw
	h.wantsRedraw = false
	return v
}

// EndFrame invokes the registered end-of-frame callback, i.e. the GC
// sweep, exactly as a real GUI host would after presenting a frame.
func (h *Hook) EndFrame() {
	h.mu.Lock()
	cb := h.endFrame
	h.mu.Unlock()
	if cb != nil {
		cb()
	}
}
