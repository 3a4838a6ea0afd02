package events

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

func TestSyncProgress_EqualDisregardsResultExceptMode(t *testing.T) {
	a := SyncProgress{Phase: PhaseCompleted, Mode: ModeFull, Fraction: 1, Result: &SyncResult{Mode: ModeFull, Counters: countersWith(5)}}
	b := SyncProgress{Phase: PhaseCompleted, Mode: ModeFull, Fraction: 1, Result: &SyncResult{Mode: ModeFull, Counters: countersWith(99)}}
	assert.True(t, a.Equal(b))

	c := SyncProgress{Phase: PhaseCompleted, Mode: ModeFull, Fraction: 1, Result: &SyncResult{Mode: ModeIncremental}}
	assert.False(t, a.Equal(c))
}

func TestSyncProgress_EqualRequiresSamePhaseAndFraction(t *testing.T) {
	a := SyncProgress{Phase: PhaseSyncing, Mode: ModeFull, Fraction: 0.5}
	b := SyncProgress{Phase: PhaseSyncing, Mode: ModeFull, Fraction: 0.6}
	assert.False(t, a.Equal(b))
}

func TestBus_PublishDeliversToAllSubscribers(t *testing.T) {
	b := NewBus(slog.Default())
	s1 := b.Subscribe(4)
	s2 := b.Subscribe(4)

	b.Publish(SyncProgress{Phase: PhasePreparing, Mode: ModeFull})

	select {
	case p := <-s1.C():
		assert.Equal(t, PhasePreparing, p.Phase)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for s1")
	}
	select {
	case p := <-s2.C():
		assert.Equal(t, PhasePreparing, p.Phase)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for s2")
	}
}

func TestBus_UnsubscribeStopsDelivery(t *testing.T) {
	b := NewBus(slog.Default())
	s := b.Subscribe(4)
	b.Unsubscribe(s)
	require.Equal(t, 0, b.Count())

	b.Publish(SyncProgress{Phase: PhaseIdle})
	_, ok := <-s.C()
	assert.False(t, ok, "channel should be closed after unsubscribe")
}

func TestBus_SlowSubscriberDropsRatherThanBlocks(t *testing.T) {
	b := NewBus(slog.Default())
	s := b.Subscribe(1)

	b.Publish(SyncProgress{Phase: PhasePreparing})
	done := make(chan struct{})
	go func() {
		b.Publish(SyncProgress{Phase: PhaseSyncing, Fraction: 0.5})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber channel")
	}
	<-s.C()
}

func countersWith(n int) core.BatchCounters {
	return core.BatchCounters{Inserted: n}
}
