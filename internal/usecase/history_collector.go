package usecase

import (
	"context"
	"sync"
	"time"

	drepo "CoinSight/internal/domain/repository"
	"CoinSight/pkg/logger"
)

// HistoryCollector polls the market-data API for each configured instrument
// and feeds the fetched daily series through the processor. Re-fetching an
// overlapping window is safe: the price store deduplicates on
// (instrument, timestamp).
type HistoryCollector struct {
	source      drepo.PriceSource
	proc        *PriceProcessor
	metrics     drepo.Metrics
	l           *logger.Logger
	instruments []string
	historyDays int
	interval    time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHistoryCollector(
	source drepo.PriceSource,
	proc *PriceProcessor,
	metrics drepo.Metrics,
	l *logger.Logger,
	instruments []string,
	historyDays int,
	interval time.Duration,
) *HistoryCollector {
	return &HistoryCollector{
		source:      source,
		proc:        proc,
		metrics:     metrics,
		l:           l,
		instruments: instruments,
		historyDays: historyDays,
		interval:    interval,
	}
}

// Start runs an initial collection for every instrument, then keeps polling
// at the configured interval until Stop or context cancellation.
func (c *HistoryCollector) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.collectAll(ctx)

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.collectAll(ctx)
			}
		}
	}()
	return nil
}

// CollectOne fetches and ingests history for a single instrument.
func (c *HistoryCollector) CollectOne(ctx context.Context, instrumentID string, days int) (int, error) {
	if days <= 0 {
		days = c.historyDays
	}
	points, err := c.source.FetchHistory(ctx, instrumentID, days)
	if err != nil {
		c.metrics.RecordError("collect_fetch")
		return 0, err
	}
	if err := c.proc.ProcessBatch(ctx, points); err != nil {
		return 0, err
	}
	return len(points), nil
}

func (c *HistoryCollector) collectAll(ctx context.Context) {
	for _, id := range c.instruments {
		if ctx.Err() != nil {
			return
		}
		n, err := c.CollectOne(ctx, id, c.historyDays)
		if err != nil {
			c.l.Warn("history collection failed",
				logger.String("instrument", id),
				logger.Error(err))
			continue
		}
		c.l.Info("history collected",
			logger.String("instrument", id),
			logger.Int("points", n))
	}
}

func (c *HistoryCollector) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
