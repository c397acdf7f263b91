package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/invoker/pkg/config"
	"github.com/cuemby/invoker/pkg/feed"
	"github.com/cuemby/invoker/pkg/health"
	"github.com/cuemby/invoker/pkg/log"
	"github.com/cuemby/invoker/pkg/metrics"
	"github.com/cuemby/invoker/pkg/operator"
	"github.com/cuemby/invoker/pkg/pool"
	"github.com/cuemby/invoker/pkg/proxy"
	"github.com/cuemby/invoker/pkg/runtime"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pool supervisor, feed adapter, and operator HTTP surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return runInvoker(cfg)
	},
}

func runInvoker(cfg config.Config) error {
	logger := log.WithComponent("invoker")

	driver, err := runtime.NewContainerdDriver(cfg.Runtime.ContainerdSocket, runtime.StaticImageResolver(cfg.Runtime.Images))
	if err != nil {
		return fmt.Errorf("connect to containerd: %w", err)
	}

	exec := proxy.NewHTTPExecutor()
	checks := func(ip string) health.Checker {
		return health.NewHTTPChecker(fmt.Sprintf("http://%s:%d/health", ip, exec.Port))
	}

	sup, err := pool.NewSupervisor(cfg.ToPoolConfig(), driver, exec, checks, nil)
	if err != nil {
		return fmt.Errorf("construct supervisor: %w", err)
	}

	adapter := feed.NewAdapter(sup, cfg.Feed.MaxInFlight)
	sup.SetFeed(adapter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	metrics.RegisterPoolSnapshot(func() metrics.PoolSnapshot {
		snap := sup.Snapshot()
		return metrics.PoolSnapshot{
			Free:      snap.Free,
			Busy:      snap.Busy,
			Prewarmed: snap.Prewarmed,
			Capacity:  snap.Capacity,
		}
	})

	collector := metrics.NewCollector(func() (free, busy, prewarmed int) {
		snap := sup.Snapshot()
		return snap.Free, snap.Busy, snap.Prewarmed
	}, 15*time.Second)
	collector.Start()
	defer collector.Stop()

	opServer := operator.New(func() (free, busy, prewarmed, capacity int) {
		snap := sup.Snapshot()
		return snap.Free, snap.Busy, snap.Prewarmed, snap.Capacity
	})
	httpServer := &http.Server{Addr: cfg.Operator.ListenAddr, Handler: opServer}

	go func() {
		logger.Info().Str("addr", cfg.Operator.ListenAddr).Msg("operator HTTP surface listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("operator HTTP surface failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)

	if err := sup.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("pool did not drain cleanly")
		return err
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
