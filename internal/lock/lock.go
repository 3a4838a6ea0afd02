// Package lock provides a Redis-backed mutual-exclusion lock used to
// coordinate perform_sync across multiple catalogsyncd processes
// sharing one remote catalog account, per spec §6.4's optional
// distributed-lock configuration.
package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// SyncLock is a single named Redis lock, acquired with SET NX and
// released only by the holder that acquired it (checked via a Lua
// script comparing the stored value).
type SyncLock struct {
	redis  *redis.Client
	key    string
	value  string
	ttl    time.Duration
	logger *slog.Logger

	acquired bool
}

// New returns a SyncLock for key, unacquired. ttl bounds how long the
// lock is held before Redis expires it unilaterally, guarding against a
// crashed holder never releasing.
func New(client *redis.Client, key string, ttl time.Duration, logger *slog.Logger) *SyncLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncLock{
		redis:  client,
		key:    key,
		value:  generateValue(),
		ttl:    ttl,
		logger: logger,
	}
}

func generateValue() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("catalogsync_%d", time.Now().UnixNano())
	}
	return "catalogsync_" + hex.EncodeToString(buf)
}

// Acquire makes a single attempt to take the lock. It does not retry or
// block — callers that want a sync skipped rather than queued when the
// lock is held (this module's only caller does) treat a false result as
// "another process owns this cycle."
func (l *SyncLock) Acquire(ctx context.Context) (bool, error) {
	ok, err := l.redis.SetNX(ctx, l.key, l.value, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	l.acquired = ok
	if ok {
		l.logger.Debug("lock acquired", "key", l.key, "ttl", l.ttl)
	}
	return ok, nil
}

// releaseScript deletes the key only if it still holds this instance's
// value, so a lock this process lost to TTL expiry (and that another
// process has since acquired) is never deleted out from under its new
// holder.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// Release gives up the lock if this instance still holds it. A no-op if
// Acquire was never called or did not succeed.
func (l *SyncLock) Release(ctx context.Context) error {
	if !l.acquired {
		return nil
	}
	res, err := l.redis.Eval(ctx, releaseScript, []string{l.key}, l.value).Result()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	l.acquired = false
	if n, _ := res.(int64); n == 0 {
		l.logger.Warn("lock already expired or reassigned before release", "key", l.key)
	}
	return nil
}

// IsAcquired reports whether this instance currently holds the lock.
func (l *SyncLock) IsAcquired() bool { return l.acquired }
