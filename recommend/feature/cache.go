// Couchwise - On-Device Personalization for Entertainment Content
// Copyright 2026 Ben Meredith (bmeredith)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bmeredith/couchwise

package feature

import (
	"github.com/bmeredith/couchwise/catalog"
)

// cacheEntry is a node in the cache's doubly-linked recency list.
type cacheEntry struct {
	id     string
	vector Vector
	prev   *cacheEntry
	next   *cacheEntry
}

// Cache is a bounded LRU cache of content embeddings. Lookups move entries
// to the front; inserting at capacity evicts the least recently used entry.
//
// It uses a doubly-linked list for ordering and a map for lookups, giving
// O(1) Get, Set, and eviction. Like the rest of the engine it relies on the
// owner's single-writer discipline and is not internally locked.
type Cache struct {
	capacity int
	items    map[string]*cacheEntry

	// head.next is the most recently used, tail.prev the least.
	head *cacheEntry
	tail *cacheEntry

	hits   int64
	misses int64
}

// DefaultCacheCapacity is used when no capacity is configured.
const DefaultCacheCapacity = 128

// NewCache creates an embedding cache with the given capacity.
// Non-positive capacities fall back to DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}

	c := &Cache{
		capacity: capacity,
		items:    make(map[string]*cacheEntry, capacity),
		head:     &cacheEntry{},
		tail:     &cacheEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the cached vector for a content ID. The boolean result is
// the explicit "absent" signal; found entries become most recently used.
func (c *Cache) Get(id string) (Vector, bool) {
	entry, ok := c.items[id]
	if !ok {
		c.misses++
		return nil, false
	}

	c.moveToFront(entry)
	c.hits++
	return entry.vector, true
}

// Set inserts or replaces the vector for a content ID, evicting the least
// recently used entry if at capacity.
func (c *Cache) Set(id string, v Vector) {
	if entry, ok := c.items[id]; ok {
		entry.vector = v
		c.moveToFront(entry)
		return
	}

	entry := &cacheEntry{id: id, vector: v}
	c.addToFront(entry)
	c.items[id] = entry

	for len(c.items) > c.capacity {
		c.evictOldest()
	}
}

// GetOrCompute returns the cached vector for the item's ID, computing it
// through the encoder and storing it on a miss.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (c *Cache) GetOrCompute(item catalog.ContentItem, enc *Encoder) Vector {
	if v, ok := c.Get(item.ID); ok {
		return v
	}

	v := enc.EncodeContent(item)
	c.Set(item.ID, v)
	return v
}

// Len returns the current occupancy.
func (c *Cache) Len() int {
	return len(c.items)
}

// Cap returns the configured capacity.
func (c *Cache) Cap() int {
	return c.capacity
}

// Stats returns hit/miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits, c.misses
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.items = make(map[string]*cacheEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

// addToFront links an entry in as most recently used.
func (c *Cache) addToFront(entry *cacheEntry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

// moveToFront re-links an existing entry as most recently used.
func (c *Cache) moveToFront(entry *cacheEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	c.addToFront(entry)
}

// evictOldest removes the least recently used entry.
func (c *Cache) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}
	oldest.prev.next = oldest.next
	oldest.next.prev = oldest.prev
	delete(c.items, oldest.id)
}
