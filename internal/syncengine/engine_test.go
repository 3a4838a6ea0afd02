package syncengine

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuscommerce/catalogsync/internal/core"
	"github.com/nimbuscommerce/catalogsync/internal/events"
	"github.com/nimbuscommerce/catalogsync/internal/reconciler"
	"github.com/nimbuscommerce/catalogsync/internal/remote"
	"github.com/nimbuscommerce/catalogsync/internal/resilience"
	"github.com/nimbuscommerce/catalogsync/internal/store"
)

func testObject(t *testing.T, m map[string]any) core.CatalogObject {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	return core.CatalogObject{ID: m["id"].(string), Type: core.Kind(m["type"].(string)), Raw: raw}
}

func newTestEngine(t *testing.T, fake *remote.FakeRemoteCatalog) (*Engine, *store.Store) {
	t.Helper()
	s, err := store.Open(context.Background(), store.DefaultConfig(":memory:"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	recon := reconciler.New(s, nil, nil)
	res := resilience.New(
		resilience.RetryConfig{MaxAttempts: 3, BaseDelay: 5 * time.Millisecond, MaxDelay: 20 * time.Millisecond, Jitter: false},
		resilience.DefaultCircuitBreakerConfig(),
		nil, nil, nil,
	)
	cfg := DefaultConfig()
	cfg.PerSyncDeadline = 10 * time.Second
	cfg.PerFetchTimeout = 5 * time.Second

	eng := New(fake, &remote.FakeAuthProvider{Authenticated: true}, res, recon, s, nil, nil, cfg, nil)
	return eng, s
}

func TestPerformSync_FirstFullSyncEmptyStore(t *testing.T) {
	fake := remote.NewFakeRemoteCatalog()
	fake.EnqueueListPage(remote.Page{
		Objects: []core.CatalogObject{testObject(t, map[string]any{"id": "c1", "type": "CATEGORY", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "category_data": map[string]any{"name": "Beverages"}})},
		Cursor:  strPtr("p2"),
	})
	fake.EnqueueListPage(remote.Page{
		Objects: []core.CatalogObject{
			testObject(t, map[string]any{"id": "i1", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "item_data": map[string]any{"name": "Cold Brew", "category_id": "c1"}}),
			testObject(t, map[string]any{"id": "v1i1", "type": "ITEM_VARIATION", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "item_variation_data": map[string]any{"item_id": "i1", "price_amount": 1299, "price_currency": "USD"}}),
		},
		Cursor: strPtr("p3"),
	})
	fake.EnqueueListPage(remote.Page{
		Objects: []core.CatalogObject{testObject(t, map[string]any{"id": "img1", "type": "IMAGE", "updated_at": "2024-01-01T00:00:00Z", "version": 1})},
		Cursor:  nil,
	})

	eng, s := newTestEngine(t, fake)
	result, err := eng.PerformSync(context.Background())
	require.NoError(t, err)

	assert.Equal(t, events.ModeFull, result.Mode)
	assert.Equal(t, 4, result.Counters.Inserted)
	assert.Equal(t, 0, result.Counters.Updated)
	assert.Equal(t, 0, result.Counters.Deleted)

	item, err := s.GetItem(context.Background(), nil, "i1")
	require.NoError(t, err)
	require.NotNil(t, item.CategoryID)
	assert.Equal(t, "c1", *item.CategoryID)

	variation, err := s.GetVariation(context.Background(), nil, "v1i1")
	require.NoError(t, err)
	assert.Equal(t, "i1", variation.ItemID)

	status, err := s.GetSyncStatus(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, status.LastFullSyncAt)
}

func TestPerformSync_IncrementalVersionSkip(t *testing.T) {
	fake := remote.NewFakeRemoteCatalog()
	eng, s := newTestEngine(t, fake)

	// Seed the store with a newer item, then mark a full sync already done
	// recently so mode selection picks Incremental.
	_, err := s.UpsertItem(context.Background(), nil, core.Item{Base: core.Base{ID: "i1", Version: 5}, Name: "Existing"})
	require.NoError(t, err)
	now := time.Now().Format(time.RFC3339)
	require.NoError(t, s.PutSyncStatus(context.Background(), nil, core.SyncStatus{LastFullSyncAt: &now, LastIncrementalSyncAt: &now}))

	fake.EnqueueSearchPage(remote.Page{
		Objects: []core.CatalogObject{testObject(t, map[string]any{"id": "i1", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 3, "item_data": map[string]any{"name": "Stale"}})},
	})

	result, err := eng.PerformSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events.ModeIncremental, result.Mode)
	assert.Equal(t, 1, result.Counters.Skipped)
	assert.Equal(t, 0, result.Counters.Updated)

	item, err := s.GetItem(context.Background(), nil, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Existing", item.Name)
}

func TestPerformSync_DeletionViaFlag(t *testing.T) {
	fake := remote.NewFakeRemoteCatalog()
	eng, s := newTestEngine(t, fake)

	_, err := s.UpsertItem(context.Background(), nil, core.Item{Base: core.Base{ID: "i1", Version: 5}, Name: "Existing"})
	require.NoError(t, err)
	now := time.Now().Format(time.RFC3339)
	require.NoError(t, s.PutSyncStatus(context.Background(), nil, core.SyncStatus{LastFullSyncAt: &now, LastIncrementalSyncAt: &now}))

	fake.EnqueueSearchPage(remote.Page{
		Objects: []core.CatalogObject{testObject(t, map[string]any{"id": "i1", "type": "ITEM", "updated_at": "2024-01-02T00:00:00Z", "version": 6, "is_deleted": true})},
	})

	result, err := eng.PerformSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counters.Deleted)

	_, err = s.GetItem(context.Background(), nil, "i1")
	require.NoError(t, err) // tombstoned, not physically removed
	item, _ := s.GetItem(context.Background(), nil, "i1")
	assert.True(t, item.IsDeleted)
}

func TestPerformSync_FullSyncCleanupTombstonesAbsent(t *testing.T) {
	fake := remote.NewFakeRemoteCatalog()
	eng, s := newTestEngine(t, fake)

	for _, id := range []string{"i1", "i2", "i3", "i4", "i5"} {
		_, err := s.UpsertItem(context.Background(), nil, core.Item{Base: core.Base{ID: id, Version: 1}, Name: id})
		require.NoError(t, err)
	}

	fake.EnqueueListPage(remote.Page{
		Objects: []core.CatalogObject{
			testObject(t, map[string]any{"id": "i1", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "item_data": map[string]any{"name": "i1"}}),
			testObject(t, map[string]any{"id": "i2", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "item_data": map[string]any{"name": "i2"}}),
			testObject(t, map[string]any{"id": "i3", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "item_data": map[string]any{"name": "i3"}}),
		},
	})

	result, err := eng.PerformSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, events.ModeFull, result.Mode)
	assert.Equal(t, 2, result.Counters.Deleted, "i4 and i5 are cleaned up as absent")

	for _, id := range []string{"i4", "i5"} {
		item, err := s.GetItem(context.Background(), nil, id)
		require.NoError(t, err)
		assert.True(t, item.IsDeleted)
	}
}

func TestPerformSync_RateLimitedBurstRecovers(t *testing.T) {
	fake := remote.NewFakeRemoteCatalog()
	fake.EnqueueListErr(&resilience.RemoteError{Kind: resilience.KindRateLimited, Message: "rate limited"})
	fake.EnqueueListErr(&resilience.RemoteError{Kind: resilience.KindRateLimited, Message: "rate limited"})
	fake.EnqueueListPage(remote.Page{
		Objects: []core.CatalogObject{testObject(t, map[string]any{"id": "i1", "type": "ITEM", "updated_at": "2024-01-01T00:00:00Z", "version": 1, "item_data": map[string]any{"name": "Cold Brew"}})},
	})

	eng, s := newTestEngine(t, fake)
	result, err := eng.PerformSync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counters.Inserted)
	assert.Equal(t, resilience.StateClosed, eng.resilience.BreakerState("remote.list"))

	status, err := s.GetSyncStatus(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, status.LastFullSyncAt)
}

func TestPerformSync_ConcurrentInvocationsSingleFlight(t *testing.T) {
	fake := remote.NewFakeRemoteCatalog()
	block := make(chan struct{})
	fake.EnqueueListPage(remote.Page{}) // first call will be slow via a blocking auth provider below

	eng, _ := newTestEngine(t, fake)
	eng.auth = &blockingAuth{release: block}

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = eng.PerformSync(context.Background())
	}()

	// give the first call time to acquire the single-flight lock
	time.Sleep(20 * time.Millisecond)

	go func() {
		defer wg.Done()
		_, results[1] = eng.PerformSync(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	close(block)
	wg.Wait()

	inProgressCount := 0
	for _, err := range results {
		if err != nil {
			se := core.AsSyncError(err)
			if se != nil && se.Kind == core.ErrInProgress {
				inProgressCount++
			}
		}
	}
	assert.Equal(t, 1, inProgressCount, "exactly one invocation should observe InProgress")
}

type blockingAuth struct {
	release chan struct{}
}

func (b *blockingAuth) IsAuthenticated(ctx context.Context) bool { return true }

func (b *blockingAuth) EnsureValidToken(ctx context.Context) (*remote.Token, error) {
	<-b.release
	return &remote.Token{AccessToken: "tok"}, nil
}

func (b *blockingAuth) SignOut(ctx context.Context) {}

func strPtr(s string) *string { return &s }
