package store

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

// SearchCache memoizes Store.Search results. It is invalidated wholesale
// (via Invalidate) whenever the Reconciler commits a batch, since a
// single upsert can change which rows any cached query would return.
type SearchCache struct {
	store   *Store
	cache   *lru.Cache[string, []core.MatchRow]
	version atomic.Uint64
}

// NewSearchCache wraps store with an LRU cache of up to size recent
// search results.
func NewSearchCache(store *Store, size int) (*SearchCache, error) {
	if size <= 0 {
		size = 256
	}
	c, err := lru.New[string, []core.MatchRow](size)
	if err != nil {
		return nil, fmt.Errorf("constructing search cache: %w", err)
	}
	return &SearchCache{store: store, cache: c}, nil
}

// Invalidate drops every cached entry; called after each committed batch.
func (sc *SearchCache) Invalidate() {
	sc.version.Add(1)
	sc.cache.Purge()
}

// Search serves from cache when possible, falling back to Store.Search.
func (sc *SearchCache) Search(ctx context.Context, term string, filters SearchFilters, limit int) ([]core.MatchRow, error) {
	key := fmt.Sprintf("%d|%s|%+v|%d", sc.version.Load(), term, filters, limit)
	if cached, ok := sc.cache.Get(key); ok {
		return cached, nil
	}

	result, err := sc.store.Search(ctx, nil, term, filters, limit)
	if err != nil {
		return nil, err
	}
	sc.cache.Add(key, result)
	return result, nil
}
