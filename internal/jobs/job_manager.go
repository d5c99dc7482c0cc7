// Package jobs provides the background workers of the dispatch engine:
// the adjustment queue, the scheduled daily optimization and the routing
// gateway maintenance pass. Scheduled jobs use github.com/robfig/cron/v3.
package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates the background workers of the dispatch engine:
// the adjustment engine, the daily optimization schedule and the routing
// gateway maintenance pass.
type JobManager struct {
	adjustmentEngine *AdjustmentEngine
	optimizationJob  *DailyOptimizationJob
	maintenanceJob   *GatewayMaintenanceJob

	logger *slog.Logger
}

// NewJobManager wires the background workers together.
func NewJobManager(
	adjustmentEngine *AdjustmentEngine,
	optimizationJob *DailyOptimizationJob,
	maintenanceJob *GatewayMaintenanceJob,
	logger *slog.Logger,
) *JobManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobManager{
		adjustmentEngine: adjustmentEngine,
		optimizationJob:  optimizationJob,
		maintenanceJob:   maintenanceJob,
		logger:           logger.With("component", "job_manager"),
	}
}

// StartAll starts every background worker. If one fails to start the
// already running ones are stopped again.
func (jm *JobManager) StartAll() error {
	jm.adjustmentEngine.Start()

	if err := jm.optimizationJob.Start(); err != nil {
		jm.adjustmentEngine.Stop()
		return fmt.Errorf("start daily optimization job: %w", err)
	}

	if err := jm.maintenanceJob.Start(); err != nil {
		jm.optimizationJob.Stop()
		jm.adjustmentEngine.Stop()
		return fmt.Errorf("start gateway maintenance job: %w", err)
	}

	jm.logger.Info("all background jobs started")
	return nil
}

// StopAll stops every background worker, waiting for in-flight adjustment
// processing to finish.
func (jm *JobManager) StopAll() {
	jm.maintenanceJob.Stop()
	jm.optimizationJob.Stop()
	jm.adjustmentEngine.Stop()
	jm.logger.Info("all background jobs stopped")
}
