package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cleaner removes expired entries and reports how many it removed.
type Cleaner interface {
	Cleanup(ctx context.Context) (int, error)
}

// Sweeper runs a Cleaner on a fixed interval until stopped.
type Sweeper struct {
	name     string
	cleaner  Cleaner
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSweeper(name string, cleaner Cleaner, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		name:     name,
		cleaner:  cleaner,
		interval: interval,
		logger:   logger.With(zap.String("task", name)),
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop in the background.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("starting sweeper", zap.Duration("interval", s.interval))
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("sweeper cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	removed, err := s.cleaner.Cleanup(ctx)
	if err != nil {
		s.logger.Error("sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Debug("sweep completed", zap.Int("removed", removed))
	}
}
