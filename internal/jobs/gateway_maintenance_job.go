package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sony/gobreaker"

	"dispatch/internal/adapters/out/routing"
)

// warmCacheBatchSize caps how many queued requests one maintenance pass
// replays against the provider.
const warmCacheBatchSize = 10

// GatewayMaintenanceJob keeps the routing gateway's retry queue healthy.
// Every minute it drops requests that went stale while the provider was
// down and, once the circuit breaker has closed again, replays a batch of
// queued requests to warm the plan cache.
type GatewayMaintenanceJob struct {
	gateway *routing.Gateway
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewGatewayMaintenanceJob creates the maintenance job for the gateway.
func NewGatewayMaintenanceJob(gateway *routing.Gateway, logger *slog.Logger) *GatewayMaintenanceJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &GatewayMaintenanceJob{
		gateway: gateway,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "gateway_maintenance_job"),
	}
}

// Start schedules the job to run once a minute.
func (j *GatewayMaintenanceJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", j.runOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("gateway maintenance job started")
	return nil
}

// Stop stops the job.
func (j *GatewayMaintenanceJob) Stop() {
	j.cron.Stop()
	j.logger.Info("gateway maintenance job stopped")
}

func (j *GatewayMaintenanceJob) runOnce() {
	ctx := context.Background()

	dropped := j.gateway.RetryQueueRef().SweepStale(time.Now())
	if dropped > 0 {
		j.logger.InfoContext(ctx, "dropped stale retry requests", "count", dropped)
	}

	if j.gateway.BreakerState() != gobreaker.StateClosed {
		return
	}

	warmed := j.gateway.WarmCache(ctx, warmCacheBatchSize)
	if warmed > 0 {
		j.logger.InfoContext(ctx, "warmed plan cache from retry queue", "count", warmed)
	}
}
