// Package cache provides the bounded in-memory caches backing the document
// manager and the render pipeline. Eviction is batched approximate LRU: when
// a cache is full the oldest quarter of entries by last access time is
// dropped, falling back to insertion order when no access data exists. The
// O(n log n) sort per batch is acceptable because eviction is rare relative
// to lookups.
package cache

import (
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
)

// Stats is a point-in-time size report for one cache.
type Stats struct {
	Size    int
	MaxSize int
}

type entry[V any] struct {
	value V
	seq   uint64
}

// Cache is a bounded map with access-time LRU eviction.
//
// Access times live in their own table so that Delete intentionally leaves
// them behind; PruneOrphans reconciles the two. This mirrors how the caches
// are maintained by the periodic optimize pass rather than eagerly.
type Cache[K comparable, V any] struct {
	entries     map[K]entry[V]
	accessTimes map[K]time.Time
	maxSize     int
	nextSeq     uint64

	now func() time.Time
}

func New[K comparable, V any](maxSize int) *Cache[K, V] {
	return &Cache[K, V]{
		entries:     make(map[K]entry[V]),
		accessTimes: make(map[K]time.Time),
		maxSize:     maxSize,
		now:         time.Now,
	}
}

// Get returns the cached value and refreshes its access time.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.accessTimes[key] = c.now()
	return e.value, true
}

// Put inserts a value, evicting first when the cache is full so the size
// bound holds after every insertion.
func (c *Cache[K, V]) Put(key K, value V) {
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.EvictLRU()
	}
	c.nextSeq++
	c.entries[key] = entry[V]{value: value, seq: c.nextSeq}
	c.accessTimes[key] = c.now()
}

// Delete removes an entry. The access-time record is left for PruneOrphans.
func (c *Cache[K, V]) Delete(key K) {
	delete(c.entries, key)
}

// DeleteFunc removes every entry whose key matches.
func (c *Cache[K, V]) DeleteFunc(match func(K) bool) {
	for k := range c.entries {
		if match(k) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

func (c *Cache[K, V]) MaxSize() int {
	return c.maxSize
}

func (c *Cache[K, V]) Stats() Stats {
	return Stats{Size: len(c.entries), MaxSize: c.maxSize}
}

// Clear drops all entries and access records.
func (c *Cache[K, V]) Clear() {
	c.entries = make(map[K]entry[V])
	c.accessTimes = make(map[K]time.Time)
}

// EvictLRU removes the least recently used quarter of entries (at least one).
// Entries with no access record are evicted by insertion order.
func (c *Cache[K, V]) EvictLRU() {
	if len(c.entries) == 0 {
		return
	}

	type aged struct {
		key K
		at  time.Time
	}
	var tracked []aged
	for k := range c.entries {
		if t, ok := c.accessTimes[k]; ok {
			tracked = append(tracked, aged{key: k, at: t})
		}
	}

	remove := len(c.entries) / 4
	if remove < 1 {
		remove = 1
	}

	if len(tracked) == 0 {
		// Cold start: no access data, fall back to insertion order.
		type ordered struct {
			key K
			seq uint64
		}
		all := make([]ordered, 0, len(c.entries))
		for k, e := range c.entries {
			all = append(all, ordered{key: k, seq: e.seq})
		}
		sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
		for _, o := range all[:remove] {
			delete(c.entries, o.key)
		}
		return
	}

	sort.Slice(tracked, func(i, j int) bool { return tracked[i].at.Before(tracked[j].at) })
	if remove > len(tracked) {
		remove = len(tracked)
	}
	for _, a := range tracked[:remove] {
		delete(c.entries, a.key)
		delete(c.accessTimes, a.key)
	}

	logrus.Debugf("evicted %d LRU cache entries", remove)
}

// OverThreshold reports whether the cache is past the given fill fraction.
func (c *Cache[K, V]) OverThreshold(fraction float64) bool {
	return float64(len(c.entries)) > float64(c.maxSize)*fraction
}

// PruneOrphans drops access-time records whose entries are gone and returns
// how many were removed.
func (c *Cache[K, V]) PruneOrphans() int {
	valid := mapset.NewSetWithSize[K](len(c.entries))
	for k := range c.entries {
		valid.Add(k)
	}

	recorded := mapset.NewSetWithSize[K](len(c.accessTimes))
	for k := range c.accessTimes {
		recorded.Add(k)
	}

	orphans := recorded.Difference(valid)
	orphans.Each(func(k K) bool {
		delete(c.accessTimes, k)
		return false
	})

	return orphans.Cardinality()
}
