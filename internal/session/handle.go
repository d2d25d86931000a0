package session

import (
	"context"
	"io"
	"sync"
)

// streamHandle owns one stream generation's connection. stop tears it down
// exactly once no matter how many times it is called.
type streamHandle struct {
	generation uint64
	ctx        context.Context
	cancel     context.CancelFunc

	mu      sync.Mutex
	body    io.Closer
	stopped bool
	once    sync.Once
}

func newStreamHandle(parent context.Context, generation uint64) *streamHandle {
	ctx, cancel := context.WithCancel(parent)
	return &streamHandle{generation: generation, ctx: ctx, cancel: cancel}
}

// attach hands the opened body to the handle. It returns false, closing the
// body, when the handle was already stopped.
func (h *streamHandle) attach(body io.Closer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		body.Close()
		return false
	}
	h.body = body
	return true
}

func (h *streamHandle) stop() {
	h.once.Do(func() {
		h.cancel()

		h.mu.Lock()
		h.stopped = true
		body := h.body
		h.mu.Unlock()

		if body != nil {
			body.Close()
		}
	})
}
