package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"mentorbook/pkg/logger"
	"mentorbook/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type failingLockRepo struct{ *memoryStore }

func (failingLockRepo) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestLockSweeper_SweepRemovesOnlyExpired(t *testing.T) {
	store := newMemoryStore()
	ctx := context.Background()
	now := time.Now().UTC()

	_ = store.Create(ctx, &model.BookingLock{Key: "a", Owner: "1", ExpiresAt: now.Add(-time.Minute)})
	_ = store.Create(ctx, &model.BookingLock{Key: "b", Owner: "2", ExpiresAt: now.Add(-time.Second)})
	_ = store.Create(ctx, &model.BookingLock{Key: "c", Owner: "3", ExpiresAt: now.Add(time.Minute)})

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	sweeper := NewLockSweeper(store, time.Hour, time.Second, metrics, logger.Discard())
	sweeper.now = func() time.Time { return now }

	if deleted := sweeper.Sweep(ctx); deleted != 2 {
		t.Errorf("expected 2 locks swept, got %d", deleted)
	}
	if _, live := store.locks["c"]; !live || store.lockCount() != 1 {
		t.Error("live lock must survive the sweep")
	}
	if got := testutil.ToFloat64(metrics.locksSwept); got != 2 {
		t.Errorf("booking_locks_swept_total = %v, want 2", got)
	}
}

func TestLockSweeper_SweepErrorIsSwallowed(t *testing.T) {
	sweeper := NewLockSweeper(failingLockRepo{newMemoryStore()}, time.Hour, time.Second, nil, logger.Discard())

	if deleted := sweeper.Sweep(context.Background()); deleted != 0 {
		t.Errorf("expected 0 on failure, got %d", deleted)
	}
}

func TestLockSweeper_StartStop(t *testing.T) {
	store := newMemoryStore()
	_ = store.Create(context.Background(), &model.BookingLock{Key: "stale", Owner: "x", ExpiresAt: time.Now().Add(-time.Minute)})

	sweeper := NewLockSweeper(store, 10*time.Millisecond, time.Second, nil, logger.Discard())
	sweeper.Start()

	deadline := time.Now().Add(2 * time.Second)
	for store.lockCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	sweeper.Stop()
	sweeper.Stop()

	if store.lockCount() != 0 {
		t.Error("expected background sweep to remove the stale lock")
	}
}

// blockingLockRepo parks every sweep until release is closed and records the
// highest number of sweeps in flight at once.
type blockingLockRepo struct {
	*memoryStore
	release   chan struct{}
	entered   chan struct{}
	active    int32
	maxActive int32
}

func (b *blockingLockRepo) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	n := atomic.AddInt32(&b.active, 1)
	defer atomic.AddInt32(&b.active, -1)
	for {
		seen := atomic.LoadInt32(&b.maxActive)
		if n <= seen || atomic.CompareAndSwapInt32(&b.maxActive, seen, n) {
			break
		}
	}
	select {
	case b.entered <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return 0, nil
}

func TestLockSweeper_StartTwiceRunsOneLoop(t *testing.T) {
	repo := &blockingLockRepo{
		memoryStore: newMemoryStore(),
		release:     make(chan struct{}),
		entered:     make(chan struct{}, 1),
	}
	sweeper := NewLockSweeper(repo, time.Millisecond, 5*time.Second, nil, logger.Discard())
	sweeper.Start()
	sweeper.Start()

	select {
	case <-repo.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper never ran")
	}
	time.Sleep(50 * time.Millisecond)

	close(repo.release)
	sweeper.Stop()

	if got := atomic.LoadInt32(&repo.maxActive); got != 1 {
		t.Errorf("expected a single sweep loop, saw %d concurrent sweeps", got)
	}
}

func TestMetrics_BookingOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	metrics.bookingOutcome(outcomeBooked, 0.01)
	metrics.bookingOutcome(outcomeSlotFull, 0.02)
	metrics.bookingOutcome(outcomeSlotFull, 0.02)
	metrics.lockReclaimed()

	if got := testutil.ToFloat64(metrics.bookings.WithLabelValues(outcomeSlotFull)); got != 2 {
		t.Errorf("slot_full = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.lockReclaims); got != 1 {
		t.Errorf("reclaims = %v, want 1", got)
	}

	var nilMetrics *Metrics
	nilMetrics.bookingOutcome(outcomeBooked, 1)
	nilMetrics.lockReclaimed()
	nilMetrics.swept(3)
}
