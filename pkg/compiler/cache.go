package compiler

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Cache memoizes compiled functions by a hash of their name and source so
// that unchanged rule files skip recompilation. It is safe for concurrent
// use; each entry keeps its execution engine alive until the cache is
// disposed.
type Cache struct {
	mu      sync.Mutex
	entries map[uint64]*CompiledFunction
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[uint64]*CompiledFunction)}
}

// Key hashes a function name together with its source text.
func Key(name, source string) uint64 {
	h := xxhash.New()
	h.WriteString(name)
	h.Write([]byte{0})
	h.WriteString(source)
	return h.Sum64()
}

// Get returns the cached function for a key, if any.
func (c *Cache) Get(key uint64) (*CompiledFunction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.entries[key]
	return f, ok
}

// Put stores a compiled function under a key, replacing and disposing any
// previous entry.
func (c *Cache) Put(key uint64, f *CompiledFunction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[key]; ok && old != f {
		old.Dispose()
	}
	c.entries[key] = f
}

// Len reports the number of cached functions.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Dispose releases every cached function.
func (c *Cache) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, f := range c.entries {
		f.Dispose()
		delete(c.entries, k)
	}
}
