package cache

import "sync"

// FIFOCache is a thread-safe, capacity-bounded string cache with
// oldest-insertion eviction. Eviction order is insertion order, never
// access order: re-reading an entry does not extend its life.
//
// An empty value is a valid entry; the image resolver stores "" as an
// explicit negative result so known-failing links are not refetched.
type FIFOCache struct {
	mutex    sync.Mutex
	capacity int
	order    []string
	entries  map[string]string
}

// NewFIFOCache creates a FIFO cache holding at most capacity entries
func NewFIFOCache(capacity int) *FIFOCache {
	if capacity <= 0 {
		capacity = 256
	}

	return &FIFOCache{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		entries:  make(map[string]string, capacity),
	}
}

// Get retrieves a value from the cache. The second return value reports
// whether the key was present, so a cached "" is distinguishable from a miss.
func (c *FIFOCache) Get(key string) (string, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	value, ok := c.entries[key]
	return value, ok
}

// Set stores a value. Inserting a new key past capacity evicts the
// oldest-inserted entry. Overwriting an existing key keeps its original
// insertion position.
func (c *FIFOCache) Set(key, value string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = value
		return
	}

	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	c.order = append(c.order, key)
	c.entries[key] = value
}

// Len returns the current number of entries (for tests and monitoring)
func (c *FIFOCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.entries)
}
