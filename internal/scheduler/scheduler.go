package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-history/internal/dashboard"
)

// Sweeper is the part of the session store the scheduler needs.
type Sweeper interface {
	Sweep() []*dashboard.Controller
}

// Scheduler periodically tears down idle dashboards.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Sweeper
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(store Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		store:     store,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Minute
	}

	_, err := s.scheduler.Every(interval).Do(s.SweepOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler: idle dashboard sweep started", "interval", interval)
	return nil
}

// SweepOnce closes every dashboard the store considers idle.
func (s *Scheduler) SweepOnce() int {
	evicted := s.store.Sweep()
	for _, c := range evicted {
		c.Close()
	}
	if len(evicted) > 0 {
		s.logger.Info("scheduler: closed idle dashboards", "count", len(evicted))
	}
	return len(evicted)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
