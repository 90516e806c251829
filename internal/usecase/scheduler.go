package usecase

import (
	"context"
	"sync"
	"time"

	"CoinSight/pkg/cache"
	"CoinSight/pkg/logger"
	"CoinSight/pkg/queue"
)

// Scheduler periodically enqueues retrain jobs for every configured
// instrument. A short-lived cache lock keeps replicas from enqueueing the
// same cycle twice.
type Scheduler struct {
	q           queue.Service
	locks       cache.Service
	l           *logger.Logger
	instruments []string
	every       time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(q queue.Service, locks cache.Service, l *logger.Logger, instruments []string, every time.Duration) *Scheduler {
	return &Scheduler{
		q:           q,
		locks:       locks,
		l:           l,
		instruments: instruments,
		every:       every,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.every <= 0 {
		return nil
	}
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.enqueueRetrains(ctx)
			}
		}
	}()
	return nil
}

func (s *Scheduler) enqueueRetrains(ctx context.Context) {
	lockKey := cache.Key("lock", "retrain-cycle")
	if s.locks != nil {
		ok, err := s.locks.TryLock(ctx, lockKey, s.every/2)
		if err != nil {
			s.l.Warn("retrain lock check failed", logger.Error(err))
			return
		}
		if !ok {
			// another replica owns this cycle
			return
		}
	}

	for _, id := range s.instruments {
		if err := s.q.PublishMessage(ctx, TypeRetrain, RetrainPayload{InstrumentID: id}); err != nil {
			s.l.Warn("retrain enqueue failed",
				logger.String("instrument", id),
				logger.Error(err))
			continue
		}
		s.l.Debug("retrain enqueued", logger.String("instrument", id))
	}
}

func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
