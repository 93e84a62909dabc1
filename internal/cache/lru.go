// internal/cache/lru.go
//
// Small least-recently-used cache with per-entry expiry.  The Vault client
// keeps resolved secrets here so a config that references the same secret
// from several options makes one round trip.  Safe for concurrent use.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU holds at most cap entries.  Keys must be comparable.
type LRU[K comparable, V any] struct {
	mu   sync.Mutex
	cap  int
	ll   *list.List
	dict map[K]*list.Element
	now  func() time.Time
}

type entry[K comparable, V any] struct {
	key K
	val V
	exp time.Time // zero means no expiry
}

// New returns an LRU with the given capacity.  Panics on cap < 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		panic("cache: capacity must be ≥1")
	}
	return &LRU[K, V]{
		cap:  capacity,
		ll:   list.New(),
		dict: make(map[K]*list.Element, capacity),
		now:  time.Now,
	}
}

// Get retrieves a live value and marks it MRU.  Expired entries are dropped.
func (c *LRU[K, V]) Get(key K) (val V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, hit := c.dict[key]
	if !hit {
		return val, false
	}
	e := ele.Value.(entry[K, V])
	if !e.exp.IsZero() && !c.now().Before(e.exp) {
		c.ll.Remove(ele)
		delete(c.dict, key)
		return val, false
	}
	c.ll.MoveToFront(ele)
	return e.val, true
}

// Add inserts or updates a value.  ttl <= 0 keeps it until evicted.
func (c *LRU[K, V]) Add(key K, val V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry[K, V]{key: key, val: val}
	if ttl > 0 {
		e.exp = c.now().Add(ttl)
	}
	if ele, hit := c.dict[key]; hit {
		ele.Value = e
		c.ll.MoveToFront(ele)
		return
	}
	c.dict[key] = c.ll.PushFront(e)
	if c.ll.Len() > c.cap {
		last := c.ll.Back()
		c.ll.Remove(last)
		delete(c.dict, last.Value.(entry[K, V]).key)
	}
}

// Len reports current size, expired entries included.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
