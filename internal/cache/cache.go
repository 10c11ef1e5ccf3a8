package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Key identifies a cacheable query: the query name plus whatever parameter
// affects its result (the principal id for principal-scoped queries, empty
// for global ones). Typed keys keep principal-scoped entries from ever
// colliding across principals.
type Key struct {
	Query string
	Param string
}

func (k Key) String() string {
	return k.Query + "|" + k.Param
}

type entry struct {
	value       any
	invalidated bool
	fetchedAt   time.Time
}

// Cache is a keyed in-memory query cache with single-flight fetching and
// explicit invalidation. There is no eviction beyond invalidation; the
// working set is bounded per session so entries live for the process.
//
// Freshness rules:
//   - An explicitly invalidated entry is never served; the next Get
//     refetches before returning.
//   - An entry older than staleAfter is served immediately while a
//     background revalidation refreshes it.
//
// Each key carries a generation counter bumped by Invalidate. A fetch
// snapshots the generation before reading; if an invalidation lands while
// the fetch is in flight, the stored result is already marked stale, so an
// invalidation racing a concurrent fetch is never lost.
type Cache struct {
	mu          sync.RWMutex
	entries     map[Key]*entry
	generations map[Key]uint64
	group       singleflight.Group
	staleAfter  time.Duration
	logger      *zap.Logger
}

func New(staleAfter time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		entries:     map[Key]*entry{},
		generations: map[Key]uint64{},
		staleAfter:  staleAfter,
		logger:      logger,
	}
}

// Get returns the cached value for key, fetching through fn on miss or
// invalidation. Concurrent callers for the same key share one fetch.
func (c *Cache) Get(ctx context.Context, key Key, fn func(context.Context) (any, error)) (any, error) {
	var (
		cached any
		found  bool
		usable bool
		stale  bool
	)
	c.mu.RLock()
	if e, ok := c.entries[key]; ok {
		found = true
		cached = e.value
		usable = !e.invalidated
		stale = c.staleAfter > 0 && time.Since(e.fetchedAt) > c.staleAfter
	}
	c.mu.RUnlock()

	if usable {
		if stale {
			c.revalidate(ctx, key, fn)
		}
		return cached, nil
	}

	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		gen := c.generation(key)
		value, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, value, gen)
		return value, nil
	})
	if err != nil {
		// Serve the previous value, if any, rather than failing the read:
		// the refetch after an invalidation may hit a transient error.
		if found {
			return cached, nil
		}
		return nil, err
	}
	return v, nil
}

// revalidate refreshes a stale entry without blocking the caller. The
// fetch is detached from the caller's context so an unmounting consumer
// does not abort it mid-flight.
func (c *Cache) revalidate(ctx context.Context, key Key, fn func(context.Context) (any, error)) {
	bg := context.WithoutCancel(ctx)
	c.group.DoChan(key.String(), func() (any, error) {
		gen := c.generation(key)
		value, err := fn(bg)
		if err != nil {
			if c.logger != nil {
				c.logger.Debug("cache revalidation failed",
					zap.String("query", key.Query),
					zap.Error(err),
				)
			}
			return nil, err
		}
		c.store(key, value, gen)
		return value, nil
	})
}

// Invalidate marks the named keys so the next read refetches, and bumps
// their generations so any fetch already in flight stores its result as
// invalidated. Values are retained only for transient-failure fallback; an
// invalidated entry is never served as-is.
func (c *Cache) Invalidate(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.generations[key]++
		if e, ok := c.entries[key]; ok {
			e.invalidated = true
		}
	}
}

func (c *Cache) generation(key Key) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[key]
}

// store records a fetched value. A fetch that started before an
// invalidation lands as an already-invalidated entry: it may be older than
// the write that triggered the invalidation, so the next read refetches.
func (c *Cache) store(key Key, value any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{
		value:       value,
		invalidated: c.generations[key] != gen,
		fetchedAt:   time.Now(),
	}
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Fetch is the typed wrapper around Cache.Get.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Get(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: unexpected type for key %s", key.String())
	}
	return typed, nil
}
