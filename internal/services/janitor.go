package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/glatasks/backend/pkg/timeutil"
	"github.com/glatasks/backend/repository"
)

// JanitorConfig tunes the periodic purge of tasks marked deleted.
type JanitorConfig struct {
	Schedule  string
	Retention time.Duration
}

// Janitor permanently removes tasks that have carried the deleted status
// longer than the retention window. Clients keep soft-deleted rows around
// for undo; the janitor is what finally forgets them.
type Janitor struct {
	tasks     repository.TaskRepository
	scoper    repository.Scoper
	loc       *time.Location
	retention time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewJanitor(tasks repository.TaskRepository, scoper repository.Scoper, loc *time.Location, cfg JanitorConfig, logger *zap.Logger) *Janitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 30 * 24 * time.Hour
	}
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "0 0 4 * * *"
	}

	j := &Janitor{
		tasks:     tasks,
		scoper:    scoper,
		loc:       loc,
		retention: cfg.Retention,
		cron:      cron.New(cron.WithSeconds()),
		logger:    logger,
	}

	_, _ = j.cron.AddFunc(schedule, j.sweep)
	return j
}

// Start launches the cron scheduler.
func (j *Janitor) Start() {
	if j == nil || j.cron == nil {
		return
	}
	j.cron.Start()
	j.logger.Info("janitor started", zap.Duration("retention", j.retention))
}

// Stop halts the scheduler, waiting for an in-flight sweep to finish.
func (j *Janitor) Stop(ctx context.Context) {
	if j == nil || j.cron == nil {
		return
	}
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		j.logger.Warn("janitor stop timed out")
	}
}

func (j *Janitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := timeutil.Now(j.loc).Add(-j.retention)

	var purged int64
	err := j.scoper.Run(ctx, func(scoped context.Context) error {
		var err error
		purged, err = j.tasks.PurgeDeleted(scoped, cutoff)
		return err
	})
	if err != nil {
		j.logger.Error("janitor sweep failed", zap.Error(err))
		return
	}
	if purged > 0 {
		j.logger.Info("purged deleted tasks", zap.Int64("count", purged))
	}
}
