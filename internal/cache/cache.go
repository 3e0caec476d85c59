// Package cache provides an in-process memoization cache for external
// adapter calls. Entries live for the process lifetime; key cardinality is
// bounded by the listing count so no eviction is performed.
package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes supplier results by key. Only results the supplier reports
// as found are stored: upstream data frequently appears after an initial
// miss, so a negative result must be allowed to succeed on a later lookup.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	group   singleflight.Group
}

// New creates an empty Cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]V),
	}
}

type lookup[V any] struct {
	value V
	found bool
}

// GetOrCompute returns the cached value for key, invoking supplier on a
// miss. The supplier reports (value, found, error); the value is cached only
// when found is true and err is nil. Concurrent calls for the same key are
// collapsed into a single supplier invocation via singleflight, so a slow
// upstream call is never duplicated by a racing caller.
func (c *Cache[V]) GetOrCompute(key string, supplier func() (V, bool, error)) (V, bool, error) {
	c.mu.RLock()
	value, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return value, true, nil
	}

	res, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A racing caller may have populated the entry while this call
		// waited on the flight group.
		c.mu.RLock()
		value, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return lookup[V]{value: value, found: true}, nil
		}

		value, found, err := supplier()
		if err != nil {
			return nil, err
		}
		if found {
			c.mu.Lock()
			c.entries[key] = value
			c.mu.Unlock()
		}
		return lookup[V]{value: value, found: found}, nil
	})
	if err != nil {
		var zero V
		return zero, false, err
	}

	result := res.(lookup[V])
	return result.value, result.found, nil
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
