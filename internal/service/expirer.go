package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harshitk-cp/informed/internal/domain"
)

const (
	defaultExpirerInterval = 5 * time.Minute
	defaultSessionIdleTTL  = 30 * time.Minute
)

// ExpirerService drops sessions that have seen no activity for longer than
// the idle TTL.
type ExpirerService struct {
	sessionStore domain.SessionStore
	logger       *zap.Logger

	interval time.Duration
	idleTTL  time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewExpirerService(ss domain.SessionStore, logger *zap.Logger) *ExpirerService {
	return &ExpirerService{
		sessionStore: ss,
		logger:       logger,
		interval:     defaultExpirerInterval,
		idleTTL:      defaultSessionIdleTTL,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
}

func (s *ExpirerService) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

func (s *ExpirerService) SetIdleTTL(d time.Duration) {
	if d > 0 {
		s.idleTTL = d
	}
}

// Start runs the expirer on a periodic schedule in a background goroutine.
func (s *ExpirerService) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("session expirer started",
			zap.Duration("interval", s.interval),
			zap.Duration("idle_ttl", s.idleTTL))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				s.run(ctx)
				cancel()
			case <-s.stopCh:
				s.logger.Info("session expirer stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the expirer.
func (s *ExpirerService) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *ExpirerService) run(ctx context.Context) int64 {
	cutoff := s.now().UTC().Add(-s.idleTTL)
	deleted, err := s.sessionStore.DeleteIdle(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to delete idle sessions", zap.Error(err))
		return 0
	}
	if deleted > 0 {
		s.logger.Info("deleted idle sessions",
			zap.Int64("count", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted
}
