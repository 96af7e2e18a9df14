package memory

import (
	"context"
	"sync"
	"time"

	"jots/internal/core/domain"
	"jots/internal/core/ports"
)

// cacheEntry tracks one idempotency key from reservation to finalization.
// RequestHash is immutable after creation; response fields must only be
// read after done is closed.
type cacheEntry struct {
	domain.IdempotencyEntry
	done      chan struct{}
	completed bool
}

// IdempotencyCache implements ports.IdempotencyCache with reserve-or-join
// semantics: the first caller for a key executes, concurrent callers wait
// for its outcome, later callers replay the stored entry. Entries never
// expire.
type IdempotencyCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

// NewIdempotencyCache creates an empty in-memory idempotency cache.
func NewIdempotencyCache() *IdempotencyCache {
	return &IdempotencyCache{entries: make(map[string]*cacheEntry)}
}

// Lookup returns the finalized entry for key, or nil if absent or in flight.
func (c *IdempotencyCache) Lookup(ctx context.Context, key string) (*domain.IdempotencyEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.completed {
		return nil, nil
	}
	cp := e.IdempotencyEntry
	return &cp, nil
}

// Reserve atomically claims key or joins the existing holder.
func (c *IdempotencyCache) Reserve(ctx context.Context, key, requestHash string) (*ports.Reservation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		if e.completed {
			cp := e.IdempotencyEntry
			return &ports.Reservation{State: ports.ReserveCompleted, Entry: &cp}, nil
		}
		return &ports.Reservation{
			State: ports.ReserveInFlight,
			Entry: &e.IdempotencyEntry,
			Done:  e.done,
		}, nil
	}

	e := &cacheEntry{
		IdempotencyEntry: domain.IdempotencyEntry{
			Key:         key,
			RequestHash: requestHash,
		},
		done: make(chan struct{}),
	}
	c.entries[key] = e
	return &ports.Reservation{State: ports.ReserveAcquired, Entry: &e.IdempotencyEntry}, nil
}

// Complete stores the outcome and releases all waiters.
func (c *IdempotencyCache) Complete(ctx context.Context, key string, body []byte, status int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.completed {
		return nil
	}
	e.ResponseBody = body
	e.ResponseStatus = status
	e.CreatedAt = time.Now().UTC()
	e.completed = true
	close(e.done)
	return nil
}

// Abandon frees a reservation that produced no outcome. Waiters wake and
// observe a zero ResponseStatus; the key may be reserved again.
func (c *IdempotencyCache) Abandon(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.completed {
		return nil
	}
	delete(c.entries, key)
	close(e.done)
	return nil
}
