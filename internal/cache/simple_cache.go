package cache

import (
	"sync"
	"time"
)

// entry stores a cached value and its absolute expiration timestamp.
type entry[V any] struct {
	value     V
	expiresAt time.Time // zero means no expiration
}

func (e entry[V]) expired(at time.Time) bool {
	return !e.expiresAt.IsZero() && at.After(e.expiresAt)
}

// SimpleCache is a map-backed cache with optional concurrency safety.
// There is no background janitor: expired entries read as misses and are
// dropped by PurgeExpired.
type SimpleCache[K comparable, V any] struct {
	// nil when the cache is not goroutine-safe
	mu *sync.RWMutex

	items   map[K]entry[V]
	onEvict func(K, V)
}

// Options controls construction of a SimpleCache.
type Options[K comparable, V any] struct {
	// ConcurrencySafe guards every operation with a RWMutex.
	ConcurrencySafe bool

	// OnEvict is called for entries dropped by PurgeExpired, outside the lock.
	OnEvict func(key K, value V)
}

func NewSimpleCache[K comparable, V any](opts Options[K, V]) *SimpleCache[K, V] {
	var mu *sync.RWMutex
	if opts.ConcurrencySafe {
		mu = &sync.RWMutex{}
	}
	return &SimpleCache[K, V]{
		mu:      mu,
		items:   make(map[K]entry[V]),
		onEvict: opts.OnEvict,
	}
}

func (c *SimpleCache[K, V]) lockR() func() {
	if c.mu == nil {
		return func() {}
	}
	c.mu.RLock()
	return c.mu.RUnlock
}

func (c *SimpleCache[K, V]) lockW() func() {
	if c.mu == nil {
		return func() {}
	}
	c.mu.Lock()
	return c.mu.Unlock
}

// now is swapped by tests
var now = time.Now

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now().Add(ttl)
}

func (c *SimpleCache[K, V]) Get(key K) (V, bool) {
	unlock := c.lockR()
	defer unlock()

	var zero V
	e, ok := c.items[key]
	if !ok || e.expired(now()) {
		return zero, false
	}
	return e.value, true
}

func (c *SimpleCache[K, V]) Set(key K, value V, ttl time.Duration) {
	unlock := c.lockW()
	defer unlock()
	c.items[key] = entry[V]{value: value, expiresAt: expiry(ttl)}
}

func (c *SimpleCache[K, V]) Touch(key K, ttl time.Duration) bool {
	unlock := c.lockW()
	defer unlock()

	e, ok := c.items[key]
	if !ok || e.expired(now()) {
		return false
	}
	e.expiresAt = expiry(ttl)
	c.items[key] = e
	return true
}

func (c *SimpleCache[K, V]) Take(key K) (V, bool) {
	unlock := c.lockW()
	defer unlock()

	var zero V
	e, ok := c.items[key]
	if !ok {
		return zero, false
	}
	delete(c.items, key)
	if e.expired(now()) {
		return zero, false
	}
	return e.value, true
}

func (c *SimpleCache[K, V]) Delete(key K) {
	unlock := c.lockW()
	defer unlock()
	delete(c.items, key)
}

func (c *SimpleCache[K, V]) Has(key K) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *SimpleCache[K, V]) Len() int {
	unlock := c.lockR()
	defer unlock()
	at := now()
	count := 0
	for _, e := range c.items {
		if !e.expired(at) {
			count++
		}
	}
	return count
}

func (c *SimpleCache[K, V]) Clear() {
	unlock := c.lockW()
	defer unlock()
	c.items = make(map[K]entry[V])
}

func (c *SimpleCache[K, V]) PurgeExpired() {
	type evicted struct {
		key   K
		value V
	}
	var dropped []evicted

	unlock := c.lockW()
	at := now()
	for k, e := range c.items {
		if e.expired(at) {
			delete(c.items, k)
			dropped = append(dropped, evicted{k, e.value})
		}
	}
	unlock()

	if c.onEvict == nil {
		return
	}
	for _, d := range dropped {
		c.onEvict(d.key, d.value)
	}
}

var _ Cache[any, any] = (*SimpleCache[any, any])(nil)
