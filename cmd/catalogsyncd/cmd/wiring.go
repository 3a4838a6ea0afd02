package cmd

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/nimbuscommerce/catalogsync/internal/config"
	"github.com/nimbuscommerce/catalogsync/internal/events"
	"github.com/nimbuscommerce/catalogsync/internal/lock"
	"github.com/nimbuscommerce/catalogsync/internal/reconciler"
	"github.com/nimbuscommerce/catalogsync/internal/remote"
	"github.com/nimbuscommerce/catalogsync/internal/resilience"
	"github.com/nimbuscommerce/catalogsync/internal/store"
	"github.com/nimbuscommerce/catalogsync/internal/syncengine"
	"github.com/nimbuscommerce/catalogsync/pkg/logger"
	"github.com/nimbuscommerce/catalogsync/pkg/metrics"
)

// syncEngine is the perform_sync surface both the sync and serve
// subcommands drive, whether or not a cross-process lock wraps it.
type syncEngine interface {
	PerformSync(ctx context.Context) (events.SyncResult, error)
	Cancel()
}

// app bundles the engine and the components its owner (sync/serve) is
// responsible for shutting down cleanly.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	bus    *events.Bus
	engine syncEngine
}

// buildApp wires every component per the dependency graph config -> logger
// -> metrics -> store -> remote collaborator -> resilience -> reconciler
// -> events bus -> sync engine. Shared by the sync and serve subcommands.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		Filename:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAgeDays,
	})

	sanitized := config.NewDefaultSanitizer().Sanitize(cfg)
	log.Info("configuration loaded", "config", sanitized)

	registry := metrics.DefaultRegistry()
	recorder := metrics.NewResilienceRecorder(registry)

	st, err := store.Open(ctx, store.Config{
		Path:   cfg.Store.Path,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	cache, err := store.NewSearchCache(st, 256)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build search cache: %w", err)
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Remote.RateLimitPerSec), cfg.Remote.RateLimitBurst)
	res := resilience.New(
		resilience.RetryConfig{
			MaxAttempts: cfg.Sync.MaxRetryAttempts,
			BaseDelay:   cfg.Sync.BackoffBase,
			MaxDelay:    cfg.Sync.BackoffMax,
			Jitter:      true,
		},
		resilience.CircuitBreakerConfig{
			FailureThreshold: cfg.Sync.CircuitBreakerThreshold,
			SuccessThreshold: 1,
			Timeout:          cfg.Sync.CircuitBreakerTimeout,
		},
		log, recorder, limiter,
	)

	recon := reconciler.New(st, cache, log)
	bus := events.NewBus(log)

	// No production RemoteCatalog/AuthProvider collaborator ships with
	// this module (remote transport and OAuth are out of scope); the
	// in-memory fake stands in as the wired collaborator until an
	// operator supplies one.
	remoteCatalog := remote.NewFakeRemoteCatalog()
	var auth remote.AuthProvider

	baseEngine := syncengine.New(remoteCatalog, auth, res, recon, st, bus, nil, syncengine.Config{
		BatchSize:       cfg.Sync.BatchSize,
		PageSize:        cfg.Sync.PageSize,
		FullInterval:    cfg.Sync.FullInterval,
		PerFetchTimeout: cfg.Sync.PerFetchTimeout,
		PerSyncDeadline: cfg.Sync.PerSyncDeadline,
	}, log)

	var engine syncEngine = baseEngine
	if cfg.Lock.Enabled {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.Lock.RedisAddr})
		syncLock := lock.New(redisClient, cfg.Lock.LockKey, cfg.Lock.LeaseTTL, log)
		engine = lock.NewLockedEngine(baseEngine, syncLock, log)
	}

	return &app{cfg: cfg, logger: log, store: st, bus: bus, engine: engine}, nil
}

func (a *app) Close() {
	a.store.Close()
}
