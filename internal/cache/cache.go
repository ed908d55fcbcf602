package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"metaladmin/internal/telemetry"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Key identifies one cached query. Keys of the same Resource are dropped
// together by Invalidate.
type Key struct {
	Resource string
	Params   url.Values
}

func NewKey(resource string, params url.Values) Key {
	return Key{Resource: resource, Params: params}
}

// String renders the key canonically; url.Values.Encode sorts parameters.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Resource
	}
	return k.Resource + "?" + k.Params.Encode()
}

// Options tune one lookup. Zero fields fall back to the cache defaults.
type Options struct {
	StaleTime   time.Duration
	GCTime      time.Duration
	Retries     int
	RetryDelay  time.Duration
	IsRetryable func(error) bool
}

func (o Options) merge(def Options) Options {
	if o.StaleTime <= 0 {
		o.StaleTime = def.StaleTime
	}
	if o.GCTime <= 0 {
		o.GCTime = def.GCTime
	}
	if o.Retries == 0 {
		o.Retries = def.Retries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = def.RetryDelay
	}
	if o.IsRetryable == nil {
		o.IsRetryable = def.IsRetryable
	}
	return o
}

// DefaultOptions mirror the dashboard's query defaults: five minutes of
// freshness, ten minutes before an unused entry is dropped, three retries.
func DefaultOptions() Options {
	return Options{
		StaleTime:   5 * time.Minute,
		GCTime:      10 * time.Minute,
		Retries:     3,
		RetryDelay:  200 * time.Millisecond,
		IsRetryable: func(error) bool { return false },
	}
}

type entry struct {
	resource    string
	value       interface{}
	fetchedAt   time.Time
	lastUsed    time.Time
	staleTime   time.Duration
	gcTime      time.Duration
	invalidated bool
}

// Snapshot is the last known value of a key, fresh or not.
type Snapshot struct {
	Value     interface{}
	FetchedAt time.Time
	Stale     bool
}

// Cache is an in-memory query cache: the server stays the source of truth and
// entries are disposable copies.
type Cache struct {
	mu          sync.RWMutex
	entries     map[string]*entry
	generations map[string]uint64
	listeners   []func(resource string)
	group       singleflight.Group
	defaults    Options
	now         func() time.Time
}

func New(defaults Options) *Cache {
	return &Cache{
		entries:     make(map[string]*entry),
		generations: make(map[string]uint64),
		defaults:    defaults.merge(DefaultOptions()),
		now:         time.Now,
	}
}

// Fetcher loads the value of a key from the API.
type Fetcher func(ctx context.Context) (interface{}, error)

// Fetch returns the cached value of key when it is fresher than StaleTime and
// otherwise calls fetch. Concurrent callers for one key share a single fetch;
// each caller still returns early when its own ctx is done.
func (c *Cache) Fetch(ctx context.Context, key Key, opts Options, fetch Fetcher) (interface{}, error) {
	opts = opts.merge(c.defaults)
	id := key.String()

	c.mu.Lock()
	now := c.now()
	if e, ok := c.entries[id]; ok {
		e.lastUsed = now
		if !e.invalidated && now.Sub(e.fetchedAt) < opts.StaleTime {
			c.mu.Unlock()
			telemetry.CacheHits.WithLabelValues(key.Resource).Inc()
			return e.value, nil
		}
	}
	generation := c.generations[key.Resource]
	c.mu.Unlock()

	telemetry.CacheMisses.WithLabelValues(key.Resource).Inc()

	// The shared fetch outlives any single caller; the API client's timeout
	// bounds it.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(id, func() (interface{}, error) {
		value, err := c.retry(fetchCtx, key, opts, fetch)
		if err != nil {
			return nil, err
		}
		c.store(key, generation, value, opts)
		return value, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			telemetry.CacheSharedFetches.WithLabelValues(key.Resource).Inc()
		}
		return res.Val, res.Err
	}
}

func (c *Cache) retry(ctx context.Context, key Key, opts Options, fetch Fetcher) (interface{}, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = opts.RetryDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0.25
	eb.MaxElapsedTime = 0

	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)

	var value interface{}
	operation := func() error {
		v, err := fetch(ctx)
		if err != nil {
			if opts.IsRetryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		value = v
		return nil
	}
	notify := func(err error, wait time.Duration) {
		telemetry.CacheRetries.WithLabelValues(key.Resource).Inc()
		log.Warn().Err(err).Str("key", key.String()).Dur("wait", wait).Msg("retrying query")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return nil, perm.Err
		}
		return nil, err
	}
	return value, nil
}

// store saves value unless the resource was invalidated while the fetch was
// in flight; in that case the value is kept only as previous data.
func (c *Cache) store(key Key, generation uint64, value interface{}, opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key.String()] = &entry{
		resource:    key.Resource,
		value:       value,
		fetchedAt:   now,
		lastUsed:    now,
		staleTime:   opts.StaleTime,
		gcTime:      opts.GCTime,
		invalidated: c.generations[key.Resource] != generation,
	}
}

// Peek returns the last value of key without fetching, so a view can keep
// showing previous data while a refetch is in flight.
func (c *Cache) Peek(key Key) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		Value:     e.value,
		FetchedAt: e.fetchedAt,
		Stale:     e.invalidated || c.now().Sub(e.fetchedAt) >= e.staleTime,
	}, true
}

// Set primes key with a value, as after a mutation that returns the entity.
func (c *Cache) Set(key Key, value interface{}) {
	c.mu.Lock()
	generation := c.generations[key.Resource]
	c.mu.Unlock()
	c.store(key, generation, value, c.defaults)
}

// Invalidate marks every key of resource stale and notifies listeners. Values
// stay readable through Peek until they are refetched or swept.
func (c *Cache) Invalidate(resource string) {
	c.mu.Lock()
	c.generations[resource]++
	for id, e := range c.entries {
		if e.resource == resource {
			e.invalidated = true
			c.group.Forget(id)
		}
	}
	listeners := append([]func(string){}, c.listeners...)
	c.mu.Unlock()

	telemetry.CacheInvalidations.WithLabelValues(resource).Inc()
	log.Debug().Str("resource", resource).Msg("cache invalidated")

	for _, fn := range listeners {
		fn(resource)
	}
}

// OnInvalidate registers fn to run after every Invalidate.
func (c *Cache) OnInvalidate(fn func(resource string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Sweep drops entries unused for longer than their gc window and returns how
// many were removed.
func (c *Cache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for id, e := range c.entries {
		if now.Sub(e.lastUsed) > e.gcTime {
			delete(c.entries, id)
			removed++
		}
	}
	if removed > 0 {
		telemetry.CacheEvictions.Add(float64(removed))
	}
	return removed
}

// Len reports the number of entries held.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Start sweeps the cache every interval until ctx is done.
func (c *Cache) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Sweep(time.Now()); n > 0 {
				log.Debug().Int("evicted", n).Msg("cache sweep")
			}
		}
	}
}

// Query is the typed form of Fetch.
func Query[T any](ctx context.Context, c *Cache, key Key, opts Options, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, key, opts, func(ctx context.Context) (interface{}, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %s holds %T", key, v)
	}
	return typed, nil
}
