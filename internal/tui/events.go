package tui

import (
	"sync"

	"github.com/handiism/gist-downloader/internal/download"
)

// eventBuffer keeps the most recent progress events for the view.
// The download goroutines write to it; the Bubble Tea loop drains it on each tick.
type eventBuffer struct {
	mu      sync.Mutex
	size    int
	pending []download.ProgressEvent
}

func newEventBuffer(size int) *eventBuffer {
	return &eventBuffer{size: size}
}

// push records e, dropping the oldest pending event when full.
func (b *eventBuffer) push(e download.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pending = append(b.pending, e)
	if len(b.pending) > b.size {
		b.pending = b.pending[len(b.pending)-b.size:]
	}
}

// drain returns and clears the pending events.
func (b *eventBuffer) drain() []download.ProgressEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.pending
	b.pending = nil
	return out
}
