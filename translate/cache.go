package translate

import (
	"container/list"
	"sync"
)

// Cache is a bounded translation cache keyed by (from, to, text). Eviction is
// strictly oldest-inserted-first: updating an existing key does not refresh
// its position, and lookups do not either.
type Cache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front = oldest inserted

	hits   int64
	misses int64
}

type cacheEntry struct {
	key   string
	value string
}

// NewCache creates a cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Key builds the cache key for a translation request.
func Key(from, to, text string) string {
	return from + "\x00" + to + "\x00" + text
}

// Get returns the cached translation for the key.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return "", false
	}
	c.hits++
	return elem.Value.(*cacheEntry).value, true
}

// Put stores a translation, evicting the oldest-inserted entry when the
// cache is over capacity.
func (c *Cache) Put(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*cacheEntry).value = value
		return
	}

	elem := c.order.PushBack(&cacheEntry{key: key, value: value})
	c.items[key] = elem

	for c.order.Len() > c.capacity {
		oldest := c.order.Front()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
