package optimizer

import (
	"container/list"
	"context"
	"fmt"
	"hash/fnv"
	"sync"
)

// contentKey deterministically hashes scored content into a cache key.
func contentKey(content string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(content))
	return fmt.Sprintf("pred:%x", h.Sum64())
}

// SecondLevelCache is an optional shared cache (redis) consulted on L1
// misses. Failures are best-effort: a broken second level never affects
// the caller.
type SecondLevelCache interface {
	GetRate(ctx context.Context, key string) (float64, bool, error)
	SetRate(ctx context.Context, key string, rate float64) error
}

// PredictionCache is a bounded LRU mapping content hashes to predicted
// engagement rates. All bookkeeping (lookup, promote, insert, evict) runs
// under one mutex: duplicate external calls under race are tolerable,
// corrupted eviction order is not.
type PredictionCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used

	second SecondLevelCache
}

type cacheEntry struct {
	key  string
	rate float64
}

func NewPredictionCache(capacity int, second SecondLevelCache) *PredictionCache {
	if capacity <= 0 {
		capacity = defaultCacheCapacity
	}
	return &PredictionCache{
		capacity: capacity,
		entries:  make(map[string]*list.Element, capacity),
		order:    list.New(),
		second:   second,
	}
}

// Get returns the cached rate for a key, promoting it to most recently
// used. A miss in L1 falls through to the second level, populating L1 on
// a hit there.
func (c *PredictionCache) Get(ctx context.Context, key string) (float64, bool) {
	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		rate := el.Value.(*cacheEntry).rate
		c.mu.Unlock()
		CacheHits.Inc()
		return rate, true
	}
	c.mu.Unlock()

	if c.second != nil {
		if rate, ok, err := c.second.GetRate(ctx, key); err == nil && ok {
			CacheHits.Inc()
			c.put(key, rate)
			return rate, true
		}
	}

	CacheMisses.Inc()
	return 0, false
}

// Put stores a rate in both levels.
func (c *PredictionCache) Put(ctx context.Context, key string, rate float64) {
	c.put(key, rate)

	if c.second != nil {
		_ = c.second.SetRate(ctx, key, rate)
	}
}

func (c *PredictionCache) put(key string, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).rate = rate
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{key: key, rate: rate})
	c.entries[key] = el

	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Len reports the current entry count.
func (c *PredictionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
