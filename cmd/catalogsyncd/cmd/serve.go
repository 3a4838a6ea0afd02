package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nimbuscommerce/catalogsync/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler, syncing on a timer until interrupted",
	Long: `serve starts the periodic sync scheduler and, if metrics are
enabled, a /metrics endpoint, then blocks until SIGINT or SIGTERM is
received. On shutdown it stops the scheduler, letting any in-flight
sync finish or be cooperatively cancelled, before exiting.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.logger
	sched := scheduler.New(a.engine, a.cfg.Sync.IncrementalInterval, log)
	sched.Start(ctx)

	var metricsSrv *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.Metrics.Path, promhttp.Handler())
		metricsSrv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}
		go func() {
			log.Info("metrics server listening", "addr", a.cfg.Metrics.Addr, "path", a.cfg.Metrics.Path)
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	log.Info("catalogsyncd started",
		"incremental_interval", a.cfg.Sync.IncrementalInterval,
		"full_interval", a.cfg.Sync.FullInterval,
	)

	<-ctx.Done()
	log.Info("shutdown signal received, stopping")

	sched.Stop()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("metrics server shutdown error", "error", err)
		}
	}

	log.Info("catalogsyncd stopped")
	return nil
}
