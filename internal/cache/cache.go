// Package cache provides a small threadsafe LRU with per-entry TTL.
// The gateway fronts repeated conversions with it, keyed by a content
// hash, and the sound client fronts repeated library searches.
package cache

import (
	"container/list"
	"sync"
	"time"
)

type record[K comparable, V any] struct {
	key     K
	value   V
	cost    int
	expires time.Time
}

// LRU evicts least-recently-used entries once the entry or cost budget
// is exceeded, and lazily drops entries past their TTL on read.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	order   *list.List
	byKey   map[K]*list.Element
	maxLen  int
	maxCost int
	cost    int
	ttl     time.Duration
}

// New builds an LRU holding at most maxLen entries. A maxCost of zero
// disables cost accounting; a non-positive TTL falls back to a minute.
func New[K comparable, V any](maxLen, maxCost int, ttl time.Duration) *LRU[K, V] {
	if maxLen <= 0 {
		maxLen = 1
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &LRU[K, V]{
		order:   list.New(),
		byKey:   make(map[K]*list.Element),
		maxLen:  maxLen,
		maxCost: maxCost,
		ttl:     ttl,
	}
}

// Get returns the cached value and refreshes its recency. Expired
// entries are removed and reported as absent.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ele, ok := c.byKey[key]
	if !ok {
		return zero, false
	}
	rec := ele.Value.(*record[K, V])
	if time.Now().After(rec.expires) {
		c.drop(ele)
		return zero, false
	}
	c.order.MoveToFront(ele)
	return rec.value, true
}

// Set stores value under key with the given cost, replacing any
// previous entry and restarting its TTL.
func (c *LRU[K, V]) Set(key K, value V, cost int) {
	if c == nil {
		return
	}
	if cost < 0 {
		cost = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := time.Now().Add(c.ttl)
	if ele, ok := c.byKey[key]; ok {
		rec := ele.Value.(*record[K, V])
		c.cost += cost - rec.cost
		rec.value = value
		rec.cost = cost
		rec.expires = expires
		c.order.MoveToFront(ele)
		c.trim()
		return
	}

	ele := c.order.PushFront(&record[K, V]{key: key, value: value, cost: cost, expires: expires})
	c.byKey[key] = ele
	c.cost += cost
	c.trim()
}

// Delete removes key if present.
func (c *LRU[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ele, ok := c.byKey[key]; ok {
		c.drop(ele)
	}
}

// Len reports the number of live entries, expired or not.
func (c *LRU[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *LRU[K, V]) trim() {
	for c.order.Len() > 0 {
		withinLen := c.order.Len() <= c.maxLen
		withinCost := c.maxCost <= 0 || c.cost <= c.maxCost
		if withinLen && withinCost {
			return
		}
		c.drop(c.order.Back())
	}
}

func (c *LRU[K, V]) drop(ele *list.Element) {
	if ele == nil {
		return
	}
	c.order.Remove(ele)
	rec := ele.Value.(*record[K, V])
	delete(c.byKey, rec.key)
	c.cost -= rec.cost
	if c.cost < 0 {
		c.cost = 0
	}
}
