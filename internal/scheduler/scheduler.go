package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper drops expired cache entries and reports how many were removed.
type Sweeper interface {
	Sweep() int
}

// Warmer refreshes data ahead of page loads.
type Warmer interface {
	WarmTopMovers(ctx context.Context)
}

// Scheduler runs the cache maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	warmer  Warmer
	ctx     context.Context
	logger  *zap.Logger
}

func NewScheduler(ctx context.Context, sweeper Sweeper, warmer Warmer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		warmer:  warmer,
		ctx:     ctx,
		logger:  logger,
	}
}

// Register adds the sweep and warm jobs. An empty warmCron leaves warming off.
func (s *Scheduler) Register(sweepCron, warmCron string) error {
	if _, err := s.cron.AddFunc(sweepCron, s.RunSweep); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	if warmCron == "" || s.warmer == nil {
		return nil
	}
	if _, err := s.cron.AddFunc(warmCron, s.RunWarm); err != nil {
		return fmt.Errorf("register warm task: %w", err)
	}
	return nil
}

// Jobs is the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", s.Jobs()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) RunSweep() {
	removed := s.sweeper.Sweep()
	s.logger.Debug("Cache sweep finished", zap.Int("removed", removed))
}

func (s *Scheduler) RunWarm() {
	if s.ctx.Err() != nil {
		return
	}
	s.warmer.WarmTopMovers(s.ctx)
}
