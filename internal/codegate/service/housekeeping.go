package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/codegate/internal/codegate/metrics"
	"github.com/aussiebroadwan/codegate/internal/codegate/store"
)

// HousekeepingService periodically deletes claimed codes whose retention
// window has passed. Purging is advisory: token validity never depends on it.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Metrics  metrics.Recorder
	Now      func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(s store.Store, logger *slog.Logger, interval time.Duration, m metrics.Recorder) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if m == nil {
		m = metrics.NewNoopMetrics()
	}

	return &HousekeepingService{
		Store:    s,
		Logger:   logger,
		Interval: interval,
		Metrics:  m,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Purge(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Purge(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Purge runs one sweep and reports how many records went.
func (s *HousekeepingService) Purge(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.Interval)
	defer cancel()

	n, err := s.Store.AccessCodes().DeletePurgeable(ctx, s.Now())
	if err != nil {
		s.Logger.Error("failed to purge access codes", "error", err)
		return 0
	}

	s.Metrics.CodesPurged(n)
	s.Logger.Info("housekeeping cleanup completed", "purged", n)
	return n
}
