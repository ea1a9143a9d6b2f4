package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vitrinalab/vitrina/internal/config"
)

// Scheduler periodically hands due scheduled drafts to the dispatcher.
type Scheduler struct {
	config     *config.SchedulerConfig
	logger     *zap.Logger
	dispatcher *Dispatcher
	ticker     *time.Ticker
	stopCh     chan struct{}
}

func NewScheduler(cfg *config.SchedulerConfig, logger *zap.Logger, dispatcher *Dispatcher) *Scheduler {
	return &Scheduler{
		config:     cfg,
		logger:     logger,
		dispatcher: dispatcher,
		stopCh:     make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled")
		return nil
	}

	interval, err := time.ParseDuration(s.config.DispatchInterval)
	if err != nil {
		s.logger.Error("Invalid dispatch interval", zap.String("interval", s.config.DispatchInterval), zap.Error(err))
		return err
	}

	s.logger.Info("Starting scheduler", zap.String("dispatch_interval", s.config.DispatchInterval))

	s.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.runDispatch(ctx)
			case <-s.stopCh:
				s.logger.Info("Scheduler stopped")
				return
			case <-ctx.Done():
				s.logger.Info("Scheduler context cancelled")
				return
			}
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
	s.logger.Info("Scheduler shutdown completed")
}

func (s *Scheduler) runDispatch(ctx context.Context) {
	start := time.Now()
	err := s.dispatcher.DispatchDue(ctx, start)
	duration := time.Since(start)

	if err != nil {
		s.logger.Error("Dispatch run failed",
			zap.Error(err),
			zap.Duration("duration", duration))
		return
	}

	s.logger.Debug("Dispatch run completed",
		zap.Duration("duration", duration))
}
