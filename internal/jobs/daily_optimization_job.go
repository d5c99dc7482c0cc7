package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"dispatch/internal/core/application/usecases/commands"
)

// DefaultOptimizationSchedule runs the batch optimization at 05:00 every
// day, before the depot opens.
const DefaultOptimizationSchedule = "0 0 5 * * *"

// DailyOptimizationJob runs the batch route optimization for the current
// date on a fixed schedule.
type DailyOptimizationJob struct {
	handler  commands.OptimizeRoutesCommandHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewDailyOptimizationJob creates the scheduled optimization job. An empty
// schedule falls back to DefaultOptimizationSchedule.
func NewDailyOptimizationJob(
	handler commands.OptimizeRoutesCommandHandler,
	schedule string,
	logger *slog.Logger,
) *DailyOptimizationJob {
	if schedule == "" {
		schedule = DefaultOptimizationSchedule
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DailyOptimizationJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "daily_optimization_job"),
	}
}

// Start schedules the job.
func (j *DailyOptimizationJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.runOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("daily optimization job started", "schedule", j.schedule)
	return nil
}

// Stop stops the job.
func (j *DailyOptimizationJob) Stop() {
	j.cron.Stop()
	j.logger.Info("daily optimization job stopped")
}

func (j *DailyOptimizationJob) runOnce() {
	ctx := context.Background()

	cmd, err := commands.NewOptimizeRoutesCommand(time.Now())
	if err != nil {
		j.logger.ErrorContext(ctx, "optimization command rejected", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "daily optimization failed", "error", err)
		return
	}

	j.logger.InfoContext(ctx, "daily optimization finished",
		"routes", len(result.RouteIDs),
		"assigned", result.AssignedCount,
		"unassigned", len(result.UnassignedIDs))
}
