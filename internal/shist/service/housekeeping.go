package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shist-app/shist/internal/shist/store"
	"github.com/shist-app/shist/pkg/httpx"
	"github.com/shist-app/shist/pkg/idemx"
)

// HousekeepingService periodically cleans up expired state: pending
// invitations past their expiry, idle rate-limiter keys, and spent
// idempotency entries. Without it the process-local maps grow without
// bound across distinct never-repeated keys.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	Limiters []*httpx.Limiter
	Idem     *idemx.Store

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration, idem *idemx.Store, limiters ...*httpx.Limiter) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		Limiters: limiters,
		Idem:     idem,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
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
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup performs the actual sweeps. Each sweep is independent; a failure
// in one won't stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	s.Logger.Debug("starting housekeeping cleanup")

	if err := s.Store.Invitations().DeleteExpiredInvitations(ctx); err != nil {
		s.Logger.Error("failed to delete expired invitations", "error", err)
	}

	var evicted int
	for _, l := range s.Limiters {
		evicted += l.Sweep()
	}
	if s.Idem != nil {
		evicted += s.Idem.Sweep()
	}

	s.Logger.Debug("housekeeping cleanup completed", "evicted_keys", evicted)
}
