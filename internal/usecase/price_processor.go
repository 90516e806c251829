package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
)

// PriceProcessor routes ingested price points to the configured backend:
// "kafka" publishes for the consumer side to persist, "clickhouse" writes
// directly to the time-series store.
type PriceProcessor struct {
	pub     drepo.Publisher
	store   drepo.PriceStore
	metrics drepo.Metrics
	backend string
}

func NewPriceProcessor(
	pub drepo.Publisher,
	store drepo.PriceStore,
	metrics drepo.Metrics,
	backend string,
) *PriceProcessor {
	return &PriceProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single point.
func (p *PriceProcessor) Process(ctx context.Context, pt models.PricePoint) error {
	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, pt)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, []models.PricePoint{pt})
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process point: %w", err)
	}

	p.metrics.RecordPointsIngested(p.backend, pt.InstrumentID, 1)
	p.metrics.RecordLastPrice(pt.InstrumentID, pt.Price)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes a batch of points.
func (p *PriceProcessor) ProcessBatch(ctx context.Context, points []models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, points)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, points)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	counts := make(map[string]int, 4)
	lastPrice := make(map[string]float64, 4)
	for _, pt := range points {
		counts[pt.InstrumentID]++
		lastPrice[pt.InstrumentID] = pt.Price
	}
	for id, n := range counts {
		p.metrics.RecordPointsIngested(p.backend, id, n)
		p.metrics.RecordLastPrice(id, lastPrice[id])
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *PriceProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
