package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15 * time.Second

// Probe runs one canary classification.
type Probe func(ctx context.Context) error

// MonitorClassifierHealth runs probe immediately and then every interval
// until ctx is done, storing the outcome in healthy.
func MonitorClassifierHealth(ctx context.Context, probe Probe, interval time.Duration, healthy *atomic.Bool, metrics *Metrics) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		err := probe(probeCtx)
		isHealthy := err == nil
		if healthy.Swap(isHealthy) != isHealthy || !isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Classifier is healthy")
			} else {
				slog.Warn("[HealthCheck] Classifier is unhealthy", slog.String("error", err.Error()))
			}
		}
		metrics.SetClassifierHealthy(isHealthy)
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
