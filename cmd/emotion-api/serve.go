package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/spacesedan/emotionflow/internal/api"
	"github.com/spacesedan/emotionflow/internal/inference"
	"github.com/spacesedan/emotionflow/internal/monitoring"
)

// healthProbeText is classified by the background health check.
const healthProbeText = "I am happy today"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP prediction service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := monitoring.NewMetrics(reg)

	lifecycle := &monitoring.Lifecycle{}
	lifecycle.BeginLoading()

	bundle, err := loadBundle(cfg)
	if err != nil {
		lifecycle.MarkFailed(err)
		slog.Error("[Main] Failed to load artifacts", slog.String("error", err.Error()))
		return err
	}
	defer bundle.Close()

	cache, closeCache, err := newCache(cfg)
	if err != nil {
		lifecycle.MarkFailed(err)
		return err
	}
	defer closeCache()

	pipeline := inference.New(bundle, append(pipelineOptions(cfg, cache), inference.WithMetrics(metrics))...)
	lifecycle.MarkReady()

	healthy := &atomic.Bool{}
	healthy.Store(true)
	go monitoring.MonitorClassifierHealth(ctx, func(ctx context.Context) error {
		return pipeline.Probe(ctx, healthProbeText)
	}, cfg.Classifier.HealthInterval, healthy, metrics)

	server := api.NewServer(pipeline, api.Options{
		Lifecycle: lifecycle,
		Healthy:   healthy,
		Metrics:   metrics,
		Gatherer:  reg,
		Labels:    bundle.Labels,
		Polarity:  cfg.Enrich.Polarity,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server.Addr(), cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	slog.Info("[Main] Server stopped")
	return nil
}
