package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/nimbuscommerce/catalogsync/internal/core"
	"github.com/nimbuscommerce/catalogsync/internal/events"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSyncLock_AcquireThenReleaseAllowsReacquire(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	l1 := New(client, "catalogsync:perform_sync", 30*time.Second, nil)
	ok, err := l1.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, l1.IsAcquired())

	l2 := New(client, "catalogsync:perform_sync", 30*time.Second, nil)
	ok, err = l2.Acquire(ctx)
	require.NoError(t, err)
	require.False(t, ok, "second holder must not acquire while the first still holds it")

	require.NoError(t, l1.Release(ctx))
	require.False(t, l1.IsAcquired())

	ok, err = l2.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok, "lock must be acquirable once released")
}

func TestSyncLock_ReleaseDoesNotStealAnotherHoldersLock(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	l1 := New(client, "catalogsync:perform_sync", 30*time.Second, nil)
	ok, err := l1.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// Simulate l1's TTL expiring and a new holder taking the key.
	require.NoError(t, client.Del(ctx, "catalogsync:perform_sync").Err())
	l2 := New(client, "catalogsync:perform_sync", 30*time.Second, nil)
	ok, err = l2.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	// l1 still believes it holds the lock; Release must not delete l2's key.
	require.NoError(t, l1.Release(ctx))
	require.True(t, l2.IsAcquired())
	exists, err := client.Exists(ctx, "catalogsync:perform_sync").Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), exists)
}

func TestSyncLock_ReleaseWithoutAcquireIsNoop(t *testing.T) {
	client := newTestClient(t)
	l := New(client, "catalogsync:perform_sync", 30*time.Second, nil)
	require.NoError(t, l.Release(context.Background()))
}

type fakeEngine struct {
	calls   int
	result  events.SyncResult
	err     error
	cancels int
}

func (f *fakeEngine) PerformSync(ctx context.Context) (events.SyncResult, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeEngine) Cancel() { f.cancels++ }

func TestLockedEngine_SkipsWhenLockHeldElsewhere(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	holder := New(client, "catalogsync:perform_sync", 30*time.Second, nil)
	ok, err := holder.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	inner := &fakeEngine{result: events.SyncResult{Mode: events.ModeFull}}
	contender := New(client, "catalogsync:perform_sync", 30*time.Second, nil)
	le := NewLockedEngine(inner, contender, nil)

	_, err = le.PerformSync(ctx)
	require.Error(t, err)
	require.Equal(t, core.ErrInProgress, core.AsSyncError(err).Kind)
	require.Equal(t, 0, inner.calls, "inner engine must not run while another process holds the lock")
}

func TestLockedEngine_RunsAndReleasesWhenLockIsFree(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	inner := &fakeEngine{result: events.SyncResult{Mode: events.ModeIncremental}}
	l := New(client, "catalogsync:perform_sync", 30*time.Second, nil)
	le := NewLockedEngine(inner, l, nil)

	result, err := le.PerformSync(ctx)
	require.NoError(t, err)
	require.Equal(t, events.ModeIncremental, result.Mode)
	require.Equal(t, 1, inner.calls)

	exists, err := client.Exists(ctx, "catalogsync:perform_sync").Result()
	require.NoError(t, err)
	require.Equal(t, int64(0), exists, "lock must be released once the inner sync completes")
}

func TestLockedEngine_CancelDelegatesToInner(t *testing.T) {
	inner := &fakeEngine{}
	le := NewLockedEngine(inner, New(newTestClient(t), "k", time.Second, nil), nil)
	le.Cancel()
	require.Equal(t, 1, inner.cancels)
}
