package usecase

import (
	"context"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	mid "CoinSight/internal/middleware"
)

// TickerCollector consumes the realtime ticker stream and feeds points
// through the ingest pipeline.
type TickerCollector struct {
	stream  drepo.TickerStream
	proc    *PriceProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

func NewTickerCollector(stream drepo.TickerStream, proc *PriceProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *TickerCollector {
	return &TickerCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected reports whether the stream connection is up.
func (c *TickerCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TickerCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	tickCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, tickCh, errCh)
	return nil
}

func (c *TickerCollector) consume(ctx context.Context, tickCh <-chan *models.Ticker, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
			}
			// the read loop closes both channels when it ends, so a
			// closed errCh means the feed is dead until we resubscribe
			if err != nil || !ok {
				if !c.reestablish(ctx) {
					return
				}
				tickCh, errCh = c.stream.Read(ctx)
			}
		case t, ok := <-tickCh:
			if !ok {
				if !c.reestablish(ctx) {
					return
				}
				tickCh, errCh = c.stream.Read(ctx)
				continue
			}
			if t == nil {
				continue
			}
			pt := models.PricePoint{
				InstrumentID: t.InstrumentID,
				Timestamp:    time.Unix(t.Timestamp, 0).UTC(),
				Price:        t.Price,
				Volume:       t.Volume,
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, pt)
			} else {
				_ = c.proc.Process(ctx, pt)
			}
		}
	}
}

// reestablish retries Reconnect until it succeeds or the context ends.
func (c *TickerCollector) reestablish(ctx context.Context) bool {
	for {
		if ctx.Err() != nil {
			return false
		}
		if err := c.stream.Reconnect(ctx); err == nil {
			return true
		}
		c.metrics.RecordError("stream")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}
	}
}

// Shutdown stops the pipeline and closes the stream.
func (c *TickerCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
