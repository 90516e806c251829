package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CoinSight/internal/domain/models"
	domrepo "CoinSight/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline forwards to.
type Proc interface {
	Process(ctx context.Context, p models.PricePoint) error
}

// IngestPipeline sits between the realtime ticker stream and the storage
// backend. It validates, throttles per instrument, and buffers points when
// the downstream store is temporarily unavailable.
type IngestPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan models.PricePoint
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time
}

type PipelineOption func(*IngestPipeline)

// WithMaxRPS caps accepted points per second per instrument.
func WithMaxRPS(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer capacity.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   5,
		bufSize:  1000,
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.PricePoint, p.bufSize)
	return p
}

// Start launches background flushing of buffered points.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	go func() {
		defer close(doneCh)
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case pt := <-p.bufCh:
				if err := p.proc.Process(ctx, pt); err != nil {
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					// the backoff wait must stay interruptible so shutdown
					// is never held hostage by a failing downstream
					select {
					case <-ctx.Done():
						return
					case <-stopCh:
						return
					case <-time.After(backoff):
					}
					select {
					case p.bufCh <- pt:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing and waits for the flush goroutine.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// Process validates, throttles, and forwards one point, buffering on
// downstream failure.
func (p *IngestPipeline) Process(ctx context.Context, pt models.PricePoint) error {
	start := time.Now()
	if err := validatePoint(pt); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(pt.InstrumentID, start) {
		// throttled points are dropped, not errors
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, pt); err != nil {
		p.metrics.RecordError("pipeline_process")
		select {
		case p.bufCh <- pt:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validatePoint(pt models.PricePoint) error {
	if pt.InstrumentID == "" {
		return fmt.Errorf("%w: empty instrument id", models.ErrUpstreamData)
	}
	if pt.Timestamp.IsZero() {
		return fmt.Errorf("%w: zero timestamp", models.ErrUpstreamData)
	}
	if pt.Price <= 0 || pt.Volume < 0 {
		return fmt.Errorf("%w: non-positive price or negative volume", models.ErrUpstreamData)
	}
	return nil
}

func (p *IngestPipeline) allow(instrumentID string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	last := p.lastSeen[instrumentID]
	if last.IsZero() || now.Sub(last) >= time.Second/time.Duration(p.maxRPS) {
		p.lastSeen[instrumentID] = now
		return true
	}
	return false
}
