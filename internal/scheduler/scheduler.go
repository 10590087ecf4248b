package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Backuper is a store that can snapshot itself and trim old snapshots.
type Backuper interface {
	BackupTo(dir string) (string, error)
	PruneBackups(dir string, keep int) (int, error)
}

// Scheduler periodically snapshots the activity store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Backuper
	dir       string
	keep      int
	interval  time.Duration
	log       *zap.SugaredLogger
}

// New creates a new Scheduler.
func New(target Backuper, dir string, keep int, interval time.Duration, log *zap.SugaredLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// The first snapshot is taken one interval after startup.
	s.WaitForScheduleAll()
	return &Scheduler{
		scheduler: s,
		target:    target,
		dir:       dir,
		keep:      keep,
		interval:  interval,
		log:       log.Named("scheduler"),
	}
}

// Start schedules the backup job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info("backup interval not set; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if err := s.RunOnce(); err != nil {
			s.log.Errorw("backup job failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce writes one snapshot and prunes the oldest beyond the retention count.
func (s *Scheduler) RunOnce() error {
	path, err := s.target.BackupTo(s.dir)
	if err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	s.log.Infow("backup written", "file", path)

	removed, err := s.target.PruneBackups(s.dir, s.keep)
	if err != nil {
		return fmt.Errorf("prune backups: %w", err)
	}
	if removed > 0 {
		s.log.Infow("old backups removed", "count", removed)
	}
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
