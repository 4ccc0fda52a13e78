package router

import (
	"sync"

	"github.com/rbaliyan/bucketindex/ring"
)

// ringCache is the per-router cache of built rings, keyed by partition
// path.
//
// Population and invalidation are mutually exclusive critical sections: a
// concurrent lookup observes either the fully-old or the fully-new cache
// state, never a partially cleared one. The cache is unbounded; a router
// holds at most one ring per partition it has touched, and entries are
// dropped wholesale on invalidation.
type ringCache struct {
	mu    sync.Mutex
	rings map[string]*ring.Ring
}

func newRingCache() *ringCache {
	return &ringCache{rings: make(map[string]*ring.Ring)}
}

// getOrBuild returns the cached ring for a partition, building and caching
// it with build on a miss. build runs under the cache lock so a clear
// cannot interleave with a half-done population.
func (c *ringCache) getOrBuild(partition string, build func() (*ring.Ring, error)) (*ring.Ring, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rg, ok := c.rings[partition]; ok {
		return rg, nil
	}
	rg, err := build()
	if err != nil {
		return nil, err
	}
	c.rings[partition] = rg
	return rg, nil
}

// get returns the cached ring for a partition, or nil.
func (c *ringCache) get(partition string) *ring.Ring {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rings[partition]
}

// clear drops every cached ring.
func (c *ringCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rings = make(map[string]*ring.Ring)
}

// len returns the number of cached rings.
func (c *ringCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rings)
}
