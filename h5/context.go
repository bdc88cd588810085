package h5

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Context is the shared, thread-safe read context passed to every
// Asset.Open call in a bundle.Bundle. It deduplicates concurrent reads
// of the same (resource, dataset, row-range) block so that two beams
// sharing a resource (e.g. two pairs on the same ground track) never
// issue the same GetObject twice. Per §9's "Heterogeneous async reads"
// note, this is the bundle's one piece of owned shared mutable state
// beyond the array handles themselves.
type Context struct {
	mu    sync.Mutex
	cache *lru.Cache[string, any]
}

// NewContext creates a dedup-cache context with room for size distinct
// blocks. Sized by the caller; reader.New uses a fixed size of 64.
func NewContext(size int) *Context {
	if size < 1 {
		size = 1
	}
	c, _ := lru.New[string, any](size)
	return &Context{cache: c}
}

func blockKey(resource, datasetPath string, firstRow, numRows int64) string {
	return fmt.Sprintf("%s|%s|%d|%d", resource, datasetPath, firstRow, numRows)
}

// GetOrCreate returns the cached value for the block key, or calls
// create and caches its result if absent. create must be safe to call
// without the Context's lock held by the caller (it commonly launches
// the async read itself); GetOrCreate ensures create runs at most once
// per key even if called concurrently from multiple beam workers.
func (c *Context) GetOrCreate(resource, datasetPath string, firstRow, numRows int64, create func() any) any {
	key := blockKey(resource, datasetPath, firstRow, numRows)
	c.mu.Lock()
	if v, ok := c.cache.Get(key); ok {
		c.mu.Unlock()
		return v
	}
	v := create()
	c.cache.Add(key, v)
	c.mu.Unlock()
	return v
}
