package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "idle"
}

// Key identifies a query by its name and parameters, e.g.
// Key{"priceChart", 42, "3m"}.
type Key []any

// String serializes the key. Equal parameters always give equal strings.
func (k Key) String() string {
	b, err := json.Marshal([]any(k))
	if err != nil {
		return fmt.Sprint([]any(k))
	}
	return string(b)
}

const maxRetryDelay = 30 * time.Second

// Policy controls freshness and retry for one kind of query.
type Policy struct {
	// StaleTime is the freshness window. Zero means every access refetches.
	StaleTime time.Duration
	// KeepPreviousData shows the last result as a placeholder while an
	// observer loads a new key.
	KeepPreviousData bool
	Retry            int
	RetryDelay       time.Duration
	// ShouldRetry filters retryable errors. Nil retries everything.
	ShouldRetry func(error) bool
}

type entry struct {
	status    Status
	data      any
	err       error
	updatedAt time.Time
}

// Client is a read-through response cache keyed by serialized parameters.
// Concurrent requests for the same key share one fetch.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	group   singleflight.Group
	gcTime  time.Duration
	logger  *zap.Logger

	timeNow func() time.Time // For testing
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewClient(gcTime time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		entries: make(map[string]*entry),
		gcTime:  gcTime,
		logger:  logger,
		timeNow: time.Now,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetch returns the cached value for key while it is fresh under policy,
// otherwise runs fn, sharing the call with any concurrent Fetch of the same key.
func Fetch[T any](ctx context.Context, c *Client, key Key, policy Policy, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	k := key.String()

	if v, ok := c.fresh(k, policy.StaleTime); ok {
		return v.(T), nil
	}

	// The shared fetch must outlive any single waiter.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(k, func() (any, error) {
		c.setLoading(k)
		v, err := c.run(fetchCtx, k, policy, func(ctx context.Context) (any, error) {
			v, err := fn(ctx)
			return v, err
		})
		c.store(k, v, err)
		return v, err
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *Client) run(ctx context.Context, key string, policy Policy, fn func(context.Context) (any, error)) (any, error) {
	var lastErr error
	for attempt := 0; attempt <= policy.Retry; attempt++ {
		if attempt > 0 {
			if policy.ShouldRetry != nil && !policy.ShouldRetry(lastErr) {
				break
			}
			delay := policy.RetryDelay << (attempt - 1)
			if delay > maxRetryDelay || delay < 0 {
				delay = maxRetryDelay
			}
			c.logger.Debug("Retrying query",
				zap.String("key", key),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fresh(key string, staleTime time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.status != StatusSuccess || e.updatedAt.IsZero() {
		return nil, false
	}
	if c.timeNow().Sub(e.updatedAt) >= staleTime {
		return nil, false
	}
	return e.data, true
}

func (c *Client) setLoading(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	e.status = StatusLoading
}

func (c *Client) store(key string, v any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	if err != nil {
		// Keep the last good data; only the status and error change.
		e.status = StatusError
		e.err = err
		c.logger.Debug("Query failed", zap.String("key", key), zap.Error(err))
		return
	}
	e.status = StatusSuccess
	e.data = v
	e.err = nil
	e.updatedAt = c.timeNow()
}

// Entry is a read-only view of a cache slot.
type Entry[T any] struct {
	Status    Status
	Data      T
	HasData   bool
	Err       error
	UpdatedAt time.Time
}

// Peek reads the cache without fetching.
func Peek[T any](c *Client, key Key) (Entry[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Entry[T]{}, false
	}
	out := Entry[T]{Status: e.status, Err: e.err, UpdatedAt: e.updatedAt}
	if v, ok := e.data.(T); ok {
		out.Data = v
		out.HasData = true
	}
	return out, true
}

func (c *Client) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key.String())
}

func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep drops entries not refreshed within the GC window and returns how many
// were removed. In-flight entries are kept.
func (c *Client) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.timeNow()
	removed := 0
	for k, e := range c.entries {
		if e.status == StatusLoading {
			continue
		}
		if now.Sub(e.updatedAt) >= c.gcTime {
			delete(c.entries, k)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("Swept query cache", zap.Int("removed", removed), zap.Int("remaining", len(c.entries)))
	}
	return removed
}
