package resilience

import (
	"context"
	"fmt"
	"sync"
)

// SingleFlight collapses concurrent calls sharing a key into one execution.
//
// The shared execution runs on a context detached from every caller's
// cancellation, so one caller giving up does not fail the others. Each caller
// still stops waiting when its own context is done.
type SingleFlight struct {
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	done   chan struct{}
	val    any
	err    error
	dups   int
	shared bool
}

// Do runs fn once per in-flight key; shared reports whether the result was reused.
// A panic in fn is returned as an error to every waiting caller.
func (g *SingleFlight) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (v any, err error, shared bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*call)
	}
	if c, ok := g.calls[key]; ok {
		c.dups++
		g.mu.Unlock()
		return wait(ctx, c)
	}

	c := &call{done: make(chan struct{})}
	g.calls[key] = c
	g.mu.Unlock()

	go g.run(context.WithoutCancel(ctx), key, c, fn)
	return wait(ctx, c)
}

func (g *SingleFlight) run(ctx context.Context, key string, c *call, fn func(context.Context) (any, error)) {
	defer func() {
		if r := recover(); r != nil {
			c.val, c.err = nil, fmt.Errorf("singleflight %s panicked: %v", key, r)
		}
		g.mu.Lock()
		c.shared = c.dups > 0
		delete(g.calls, key)
		g.mu.Unlock()
		close(c.done)
	}()
	c.val, c.err = fn(ctx)
}

func wait(ctx context.Context, c *call) (any, error, bool) {
	select {
	case <-c.done:
		return c.val, c.err, c.shared
	case <-ctx.Done():
		return nil, ctx.Err(), false
	}
}
