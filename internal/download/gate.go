package download

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrInvalidCapacity is returned by NewGate for a capacity below 1.
var ErrInvalidCapacity = errors.New("gate capacity must be at least 1")

// Gate is a counting permit pool bounding concurrent downloads.
//
// Waiters are woken in FIFO order. The Gate also tracks how many permits are
// held right now and the highest number ever held at once.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int

	inFlight atomic.Int64
	peak     atomic.Int64
}

// NewGate creates a Gate with capacity permits.
func NewGate(capacity int) (*Gate, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}, nil
}

// Acquire blocks until a permit is free or ctx is done.
// On error no permit is held.
func (g *Gate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	n := g.inFlight.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return nil
}

// Release returns a permit taken by Acquire.
func (g *Gate) Release() {
	g.inFlight.Add(-1)
	g.sem.Release(1)
}

// Capacity returns the number of permits.
func (g *Gate) Capacity() int {
	return g.capacity
}

// InFlight returns the number of permits currently held.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}

// Peak returns the highest number of permits held at the same time.
func (g *Gate) Peak() int {
	return int(g.peak.Load())
}
