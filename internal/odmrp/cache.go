package odmrp

import (
	"container/list"
	"sync"
)

// CacheEntry identifies one originated flood by (source, sequence number).
// Equality is exact: two entries match only if both fields match.
type CacheEntry struct {
	SourceAddress string
	PacketID      uint32
}

// MessageCache is the bounded, FIFO-evicting duplicate-suppression cache:
// it lets a node recognize a Join Query it has already forwarded and drop
// the re-flooded copy silently.
//
// Contains is backed by a map, giving O(1) lookup, comfortably inside an
// O(log n) requirement; insertion order for eviction is tracked with
// a container/list so both AddEntry and the eviction it triggers are O(1).
// This is adapted from the fixed-size circular buffer in
// kabili207-meshcore-go's core/dedupe package: that buffer tracks truncated
// hashes in a byte ring with no lookup structure beyond a linear scan, which
// is fine at its capacity (128) but would not meet this cache's O(log n)
// requirement at a capacity of 2048, so the ring is replaced with a
// list+map pair that keeps the same "bounded FIFO of recent fingerprints"
// idea.
// Guarded by its own mutex: the protocol step mutates it on the scheduler
// worker goroutine while the control surface's `query` command reads its
// size concurrently from the REPL goroutine.
type MessageCache struct {
	mu       sync.RWMutex
	capacity int
	order    *list.List // front = oldest
	index    map[CacheEntry]*list.Element
}

// NewMessageCache returns an empty cache with the given capacity. A
// non-positive capacity is treated as 1 (a cache of zero offers no
// suppression at all, which is never useful).
func NewMessageCache(capacity int) *MessageCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &MessageCache{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[CacheEntry]*list.Element),
	}
}

// Contains reports whether e has already been recorded.
func (c *MessageCache) Contains(e CacheEntry) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[e]
	return ok
}

// AddEntry records e if it is not already present and reports whether it
// was newly inserted. If the insertion brings the cache to capacity, the
// oldest entry is evicted.
func (c *MessageCache) AddEntry(e CacheEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[e]; ok {
		return false
	}

	elem := c.order.PushBack(e)
	c.index[e] = elem

	if c.order.Len() >= c.capacity {
		c.evictOldest()
	}
	return true
}

func (c *MessageCache) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}
	c.order.Remove(front)
	delete(c.index, front.Value.(CacheEntry))
}

// Len returns the current number of cached fingerprints.
func (c *MessageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Capacity returns the cache's maximum size.
func (c *MessageCache) Capacity() int {
	return c.capacity
}
