// Package cache provides caching utilities for query resolution.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/usestring/jsonkeys/pkg/pathquery"
)

// QueryCache provides thread-safe LRU caching of parsed path queries.
type QueryCache struct {
	cache *lru.Cache[string, []string]
}

// NewQueryCache creates a new LRU cache with the specified maximum number of items.
func NewQueryCache(maxItems int) (*QueryCache, error) {
	c, err := lru.New[string, []string](maxItems)
	if err != nil {
		return nil, err
	}
	return &QueryCache{cache: c}, nil
}

// Parse returns the segments of query, parsing it on a cache miss.
// Parse errors are not cached.
func (c *QueryCache) Parse(query string) ([]string, error) {
	if segments, ok := c.cache.Get(query); ok {
		return segments, nil
	}
	segments, err := pathquery.Parse(query)
	if err != nil {
		return nil, err
	}
	c.cache.Add(query, segments)
	return segments, nil
}

// Len returns the current number of items in the cache.
func (c *QueryCache) Len() int {
	return c.cache.Len()
}
