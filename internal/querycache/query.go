// Package querycache keeps the last result of named read queries in memory and
// guarantees at most one in-flight fetch per key.
package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Client is a process-local query cache. The zero value is not usable; use NewClient.
type Client struct {
	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]*call
	now      func() time.Time
}

type entry struct {
	value     any
	stale     bool
	fetchedAt time.Time
}

// call is one fetch shared by every caller that asked for the key while it ran.
// Waiters block on done; value and err are written before done is closed.
type call struct {
	done        chan struct{}
	waiters     int
	invalidated bool

	value any
	err   error
}

func NewClient() *Client {
	return &Client{
		entries:  map[string]*entry{},
		inflight: map[string]*call{},
		now:      time.Now,
	}
}

// Query returns the cached value of key when it is fresh. Otherwise it joins the fetch
// in flight for key, or starts one, and blocks until it completes or ctx ends.
//
// The fetch runs detached from ctx so that other waiters still get the result when the
// caller that started it goes away. A failed fetch is not cached and every waiter of
// that fetch observes the same error.
func Query[T any](ctx context.Context, c *Client, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.stale {
		c.mu.Unlock()
		v, ok := e.value.(T)
		if !ok {
			return zero, fmt.Errorf("query %s: cached %T is not %T", key, e.value, zero)
		}
		return v, nil
	}

	cl, ok := c.inflight[key]
	if !ok {
		cl = &call{done: make(chan struct{})}
		c.inflight[key] = cl
		go c.run(context.WithoutCancel(ctx), key, cl, func(ctx context.Context) (any, error) {
			return fetch(ctx)
		})
	}
	cl.waiters++
	c.mu.Unlock()

	select {
	case <-cl.done:
	case <-ctx.Done():
		c.mu.Lock()
		cl.waiters--
		c.mu.Unlock()
		return zero, ctx.Err()
	}

	if cl.err != nil {
		return zero, cl.err
	}
	v, ok := cl.value.(T)
	if !ok {
		return zero, fmt.Errorf("query %s: fetched %T is not %T", key, cl.value, zero)
	}
	return v, nil
}

func (c *Client) run(ctx context.Context, key string, cl *call, fetch func(context.Context) (any, error)) {
	value, err := safeFetch(ctx, fetch)

	c.mu.Lock()
	if err == nil && c.mayStore(key, cl) {
		// Invalidated while in flight: waiters get the result, the next Query refetches.
		c.entries[key] = &entry{
			value:     value,
			stale:     cl.invalidated,
			fetchedAt: c.now(),
		}
	}
	if c.inflight[key] == cl {
		delete(c.inflight, key)
	}
	cl.value, cl.err = value, err
	c.mu.Unlock()

	close(cl.done)
}

// mayStore reports whether cl may write its result for key. A call superseded by
// Invalidate never overwrites a newer fetch, running or finished. c.mu must be held.
func (c *Client) mayStore(key string, cl *call) bool {
	if c.inflight[key] == cl {
		return true
	}
	if _, running := c.inflight[key]; running {
		return false
	}
	e, ok := c.entries[key]
	return !ok || e.stale
}

func safeFetch(ctx context.Context, fetch func(context.Context) (any, error)) (v any, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("fetch panicked: %v", rvr)
		}
	}()
	return fetch(ctx)
}

// Invalidate marks key stale so that the next Query fetches it again. A fetch already in
// flight is detached from key: its current waiters still get its result, but later
// callers start a new fetch and the old result is only ever stored as stale.
func (c *Client) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
	if cl, ok := c.inflight[key]; ok {
		cl.invalidated = true
		delete(c.inflight, key)
	}
}

// Snapshot is the state of a cache entry at one point in time.
type Snapshot[T any] struct {
	Value     T
	Stale     bool
	FetchedAt time.Time
	// Fetching reports a fetch in flight together with the number of callers waiting for it.
	Fetching bool
	Waiters  int
}

// Peek returns the current state of key without fetching. ok is false when nothing has
// been stored for key yet and no fetch is running.
func Peek[T any](c *Client, key string) (snap Snapshot[T], ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cl, running := c.inflight[key]; running {
		snap.Fetching = true
		snap.Waiters = cl.waiters
		ok = true
	}

	e, found := c.entries[key]
	if !found {
		return snap, ok
	}

	if v, typed := e.value.(T); typed {
		snap.Value = v
	}
	snap.Stale = e.stale
	snap.FetchedAt = e.fetchedAt
	return snap, true
}
