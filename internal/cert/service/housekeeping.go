package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/audit"
	"github.com/cypheracademy/certvault/internal/cert/domain"
	"github.com/cypheracademy/certvault/internal/cert/store"
)

// HousekeepingService periodically prunes old audit events so the
// table stays bounded.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Audit     *audit.Recorder
	Interval  time.Duration
	Retention time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the service. Non-positive interval
// defaults to 1 hour, non-positive retention to 90 days.
func NewHousekeepingService(s store.Store, logger *slog.Logger, auditRec *audit.Recorder, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:     s,
		Logger:    logger,
		Audit:     auditRec,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut
// it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop gracefully shuts down the worker, blocking until any
// in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.Retention)
	deleted, err := s.Store.AuditEvents().DeleteAuditEventsOlderThan(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to prune audit events", "err", err)
		return
	}

	if deleted > 0 {
		s.Logger.Info("pruned audit events", "deleted", deleted, "cutoff", cutoff)
		if s.Audit != nil {
			s.Audit.Record(domain.AuditHousekeepingSweep, "", "", "")
		}
	}
}
