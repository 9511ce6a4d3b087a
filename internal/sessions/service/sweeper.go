package service

import (
	"context"
	"sync"
	"time"

	"mentorbook/internal/sessions/repository"
	"mentorbook/pkg/logger"
)

// LockSweeper periodically deletes expired booking locks. The TTL index
// also removes them, but its monitor only runs about once a minute.
type LockSweeper struct {
	lockRepo repository.BookingLockRepository
	interval time.Duration
	timeout  time.Duration
	metrics  *Metrics
	log      *logger.Logger
	now      func() time.Time

	stopCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewLockSweeper(lockRepo repository.BookingLockRepository, interval, timeout time.Duration, metrics *Metrics, log *logger.Logger) *LockSweeper {
	return &LockSweeper{
		lockRepo: lockRepo,
		interval: interval,
		timeout:  timeout,
		metrics:  metrics,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop. Calls after the first are no-ops.
func (s *LockSweeper) Start() {
	s.startOnce.Do(s.run)
}

func (s *LockSweeper) run() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep(context.Background())
			case <-s.stopCh:
				return
			}
		}
	}()

	s.log.Info("Booking lock sweeper started", "interval", s.interval)
}

// Sweep runs one deletion pass and returns the number of locks removed.
func (s *LockSweeper) Sweep(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deleted, err := s.lockRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Warn("Booking lock sweep failed", "error", err)
		return 0
	}

	s.metrics.swept(deleted)
	if deleted > 0 {
		s.log.Debug("Swept expired booking locks", "deleted", deleted)
	}
	return deleted
}

// Stop halts the sweeper and waits for an in-progress pass to finish.
func (s *LockSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}
