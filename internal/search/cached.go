package search

import (
	"context"
	"github.com/patrickmn/go-cache"
	"strings"
	"time"
)

// Cached remembers successful searches for a while. Failed searches are not
// cached.
type Cached struct {
	searcher Searcher
	cache    *cache.Cache
}

func NewCached(searcher Searcher, ttl time.Duration) *Cached {
	return &Cached{
		searcher: searcher,
		cache:    cache.New(ttl, 2*ttl),
	}
}

func (c *Cached) Search(ctx context.Context, query string) ([]Result, error) {
	key := strings.ToLower(strings.Join(strings.Fields(query), " "))
	if v, ok := c.cache.Get(key); ok {
		return append([]Result(nil), v.([]Result)...), nil
	}
	results, err := c.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, append([]Result(nil), results...))
	return results, nil
}

func (c *Cached) Len() int {
	return c.cache.ItemCount()
}
