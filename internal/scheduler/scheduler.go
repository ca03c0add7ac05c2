package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultInterval is used when the configured prune interval is not positive.
const DefaultInterval = 15 * time.Minute

// Pruner drops expired entries and reports how many were removed.
type Pruner interface {
	Prune() int
}

// Scheduler periodically prunes the series cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	target    Pruner
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(target Pruner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		target:    target,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the prune job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.target == nil {
		s.logger.Info("scheduler: nothing to prune; not scheduling")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.prune)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: cache pruning started", "interval", s.interval)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) prune() {
	removed := s.target.Prune()
	s.logger.Debug("scheduler: pruned series cache", "removed", removed)
}
