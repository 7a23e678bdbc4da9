package catalog

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies one lookup. Components stay separate so search query, page
// and limit can never collide the way a concatenated string would.
type Key struct {
	Kind  string
	Query string
	Page  int
	Limit int
	ID    string
}

func SearchKey(query string, page, limit int) Key {
	return Key{Kind: "search", Query: query, Page: page, Limit: limit}
}

func DetailKey(id string) Key {
	return Key{Kind: "detail", ID: id}
}

func ISBNKey(isbn string) Key {
	return Key{Kind: "isbn", ID: isbn}
}

// flightKey quotes each component so the single-flight group inherits the
// same collision guarantees as the struct key.
func (k Key) flightKey() string {
	return fmt.Sprintf("%s|%q|%d|%d|%q", k.Kind, k.Query, k.Page, k.Limit, k.ID)
}

type cacheItem struct {
	value      any
	expiration int64
}

// Cache memoizes lookup results with a per-entry TTL. Concurrent callers for
// the same key share one in-flight compute; a failed compute is never stored,
// so a transient upstream error cannot poison subsequent attempts.
type Cache struct {
	mu    sync.RWMutex
	items map[Key]cacheItem
	group singleflight.Group
}

func NewCache() *Cache {
	return &Cache{items: make(map[Key]cacheItem)}
}

// GetOrCompute returns the cached value for key, or runs compute and caches
// its result for ttl.
func (c *Cache) GetOrCompute(key Key, ttl time.Duration, compute func() (any, error)) (any, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key.flightKey(), func() (any, error) {
		// A concurrent caller may have filled the entry while we waited.
		if v, ok := c.get(key); ok {
			return v, nil
		}
		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(key, v, ttl)
		return v, nil
	})
	return v, err
}

func (c *Cache) get(key Key) (any, bool) {
	c.mu.RLock()
	item, found := c.items[key]
	c.mu.RUnlock()
	if !found {
		return nil, false
	}
	if item.expiration > 0 && time.Now().UnixNano() > item.expiration {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}
	return item.value, true
}

func (c *Cache) set(key Key, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl).UnixNano(),
	}
}

// Len returns the number of cached entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
