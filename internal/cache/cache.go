// Package cache provides a size-bounded least-recently-used map.
package cache

import (
	"container/list"
)

// LRUCache is not safe for concurrent use; callers guard it.
type LRUCache[K comparable, V any] struct {
	size      int
	evictList *list.List
	items     map[K]*list.Element
	onEvict   func(K, V)
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRUCache returns a cache holding at most size entries. A non-positive
// size disables the bound.
func NewLRUCache[K comparable, V any](size int) *LRUCache[K, V] {
	return &LRUCache[K, V]{
		size:      size,
		evictList: list.New(),
		items:     make(map[K]*list.Element),
	}
}

// OnEvict registers fn to run for every entry dropped by the size bound.
func (c *LRUCache[K, V]) OnEvict(fn func(K, V)) {
	c.onEvict = fn
}

func (c *LRUCache[K, V]) Get(key K) (value V, ok bool) {
	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		return ele.Value.(*entry[K, V]).value, true
	}
	return
}

// Peek returns the value without touching recency.
func (c *LRUCache[K, V]) Peek(key K) (value V, ok bool) {
	if ele, hit := c.items[key]; hit {
		return ele.Value.(*entry[K, V]).value, true
	}
	return
}

func (c *LRUCache[K, V]) Put(key K, value V) {
	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		ele.Value.(*entry[K, V]).value = value
		return
	}

	ele := c.evictList.PushFront(&entry[K, V]{key, value})
	c.items[key] = ele

	if c.size > 0 && c.evictList.Len() > c.size {
		c.removeOldest()
	}
}

// Remove deletes key without calling the eviction callback.
func (c *LRUCache[K, V]) Remove(key K) bool {
	if ele, hit := c.items[key]; hit {
		c.removeElement(ele)
		return true
	}
	return false
}

func (c *LRUCache[K, V]) Len() int {
	return c.evictList.Len()
}

// Keys returns keys from most to least recently used.
func (c *LRUCache[K, V]) Keys() []K {
	keys := make([]K, 0, c.evictList.Len())
	for ele := c.evictList.Front(); ele != nil; ele = ele.Next() {
		keys = append(keys, ele.Value.(*entry[K, V]).key)
	}
	return keys
}

func (c *LRUCache[K, V]) removeOldest() {
	ele := c.evictList.Back()
	if ele != nil {
		kv := c.removeElement(ele)
		if c.onEvict != nil {
			c.onEvict(kv.key, kv.value)
		}
	}
}

func (c *LRUCache[K, V]) removeElement(e *list.Element) *entry[K, V] {
	c.evictList.Remove(e)
	kv := e.Value.(*entry[K, V])
	delete(c.items, kv.key)
	return kv
}
