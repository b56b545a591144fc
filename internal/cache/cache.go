package cache

import "time"

// Cache is a key-value store with an optional TTL per entry.
type Cache[K comparable, V any] interface {
	// Get returns the value and whether it was present and not expired.
	Get(key K) (V, bool)

	// Set stores the value. If ttl <= 0, the entry does not expire.
	Set(key K, value V, ttl time.Duration)

	// Touch pushes the expiry of a live entry ttl into the future.
	Touch(key K, ttl time.Duration) bool

	// Take removes a live entry and returns it.
	Take(key K) (V, bool)

	Delete(key K)
	Has(key K) bool

	// Len returns the number of non-expired items currently stored.
	Len() int

	Clear()

	// PurgeExpired removes expired entries, reporting each to the eviction hook.
	PurgeExpired()
}
