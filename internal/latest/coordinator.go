// Package latest coordinates keyed requests so that only the most recent request per key
// delivers a result. A new request cancels the one before it, and an optional debounce
// delay lets bursts of requests collapse into the last one.
package latest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routing/internal/platform/domain"
)

// ErrSuperseded is returned to callers whose request was replaced by a newer one.
var ErrSuperseded = domain.ErrSuperseded

// Coordinator tracks the in-flight request per key.
type Coordinator struct {
	debounce time.Duration

	mu    sync.Mutex
	seq   uint64
	slots map[string]*slot
}

type slot struct {
	gen    uint64
	cancel context.CancelCauseFunc
}

// NewCoordinator creates a Coordinator; debounce 0 dispatches immediately.
func NewCoordinator(debounce time.Duration) *Coordinator {
	if debounce < 0 {
		debounce = 0
	}
	return &Coordinator{
		debounce: debounce,
		slots:    make(map[string]*slot),
	}
}

// Debounce returns the configured debounce delay.
func (c *Coordinator) Debounce() time.Duration {
	return c.debounce
}

// Pending returns the number of keys with a request in flight.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// Do runs fn as the latest request for key. It waits out the debounce delay first, and
// returns ErrSuperseded if a newer request for the same key arrives before fn's result
// is delivered. An empty key runs fn directly.
func Do[T any](ctx context.Context, c *Coordinator, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if key == "" {
		return fn(ctx)
	}

	runCtx, gen, cancel := c.begin(ctx, key)
	defer cancel(nil)
	defer c.finish(key, gen)

	if c.debounce > 0 {
		timer := time.NewTimer(c.debounce)
		defer timer.Stop()
		select {
		case <-runCtx.Done():
			return zero, doneErr(ctx, runCtx)
		case <-timer.C:
		}
	}

	if !c.isLatest(key, gen) {
		return zero, ErrSuperseded
	}

	v, err := fn(runCtx)

	if !c.isLatest(key, gen) {
		return zero, ErrSuperseded
	}
	if err != nil && errors.Is(context.Cause(runCtx), ErrSuperseded) {
		return zero, ErrSuperseded
	}
	return v, err
}

func (c *Coordinator) begin(parent context.Context, key string) (context.Context, uint64, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	if prev, ok := c.slots[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	c.slots[key] = &slot{gen: c.seq, cancel: cancel}
	return ctx, c.seq, cancel
}

func (c *Coordinator) isLatest(key string, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[key]
	return ok && s.gen == gen
}

func (c *Coordinator) finish(key string, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.slots[key]; ok && s.gen == gen {
		delete(c.slots, key)
	}
}

func doneErr(parent, runCtx context.Context) error {
	if errors.Is(context.Cause(runCtx), ErrSuperseded) {
		return ErrSuperseded
	}
	if err := parent.Err(); err != nil {
		return err
	}
	return runCtx.Err()
}
