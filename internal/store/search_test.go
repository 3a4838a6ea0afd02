package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"cold", "brew"}, tokenize("Cold-Brew"))
	assert.Equal(t, []string{"12oz", "latte"}, tokenize("12oz_Latte"))
	assert.Equal(t, []string{"a", "b"}, tokenize("a a b"))
}

func TestMatchesTokens_SingleVsMulti(t *testing.T) {
	assert.True(t, matchesTokens("Cold Brew Coffee", []string{"brew"}))
	assert.True(t, matchesTokens("Cold Brew Coffee", []string{"cold", "coffee"}))
	assert.False(t, matchesTokens("Cold Brew Coffee", []string{"cold", "tea"}))
}

func TestSearch_ByName(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertItem(ctx, nil, core.Item{Base: core.Base{ID: "i1", Version: 1}, Name: "Cold Brew Coffee"})
	require.NoError(t, err)
	_, err = s.UpsertItem(ctx, nil, core.Item{Base: core.Base{ID: "i2", Version: 1}, Name: "Hot Tea"})
	require.NoError(t, err)

	results, err := s.Search(ctx, nil, "cold brew", SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "i1", results[0].ItemID)
	assert.Equal(t, core.MatchName, results[0].MatchType)
}

func TestSearch_BySKU(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sku := "SKU-123"
	_, err := s.UpsertItem(ctx, nil, core.Item{Base: core.Base{ID: "i1", Version: 1}, Name: "Widget"})
	require.NoError(t, err)
	_, err = s.UpsertVariation(ctx, nil, core.ItemVariation{
		Base: core.Base{ID: "v1", Version: 1}, ItemID: "i1", SKU: &sku,
	})
	require.NoError(t, err)

	results, err := s.Search(ctx, nil, "sku-123", SearchFilters{SKU: true}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.MatchSKU, results[0].MatchType)
}

func TestSearchCache_InvalidatesOnDemand(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	cache, err := NewSearchCache(s, 16)
	require.NoError(t, err)

	_, err = s.UpsertItem(ctx, nil, core.Item{Base: core.Base{ID: "i1", Version: 1}, Name: "Original"})
	require.NoError(t, err)

	first, err := cache.Search(ctx, "original", SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = s.UpsertItem(ctx, nil, core.Item{Base: core.Base{ID: "i2", Version: 1}, Name: "Original Too"})
	require.NoError(t, err)

	stale, err := cache.Search(ctx, "original", SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, stale, 1, "still cached until Invalidate")

	cache.Invalidate()
	fresh, err := cache.Search(ctx, "original", SearchFilters{}, 10)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
}
