package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"CoinSight/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopMetrics struct{}

func (nopMetrics) RecordPointsIngested(backend, instrument string, n int)           {}
func (nopMetrics) RecordError(kind string)                                          {}
func (nopMetrics) RecordLastPrice(instrument string, price float64)                 {}
func (nopMetrics) RecordLatency(op string, seconds float64)                         {}
func (nopMetrics) RecordTrainingRun(instrument string, horizonDays int, sel string) {}
func (nopMetrics) RecordPrediction(instrument string, horizonDays int)              {}

// stubProc fails the first failN calls, then accepts.
type stubProc struct {
	mu    sync.Mutex
	calls int
	failN int
	seen  []models.PricePoint
}

func (p *stubProc) Process(ctx context.Context, pt models.PricePoint) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.failN {
		return errors.New("store unavailable")
	}
	p.seen = append(p.seen, pt)
	return nil
}

func (p *stubProc) accepted() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

func point(id string) models.PricePoint {
	return models.PricePoint{
		InstrumentID: id,
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Price:        100,
		Volume:       10,
	}
}

func TestIngestPipeline_RejectsInvalidPoints(t *testing.T) {
	p := NewIngestPipeline(&stubProc{}, nopMetrics{})
	ctx := context.Background()

	bad := []models.PricePoint{
		{Timestamp: time.Now(), Price: 100},                        // no instrument
		{InstrumentID: "bitcoin", Price: 100},                      // zero timestamp
		{InstrumentID: "bitcoin", Timestamp: time.Now(), Price: 0}, // non-positive price
	}
	for _, pt := range bad {
		err := p.Process(ctx, pt)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrUpstreamData))
	}
}

func TestIngestPipeline_BuffersThenFlushes(t *testing.T) {
	proc := &stubProc{failN: 1}
	p := NewIngestPipeline(proc, nopMetrics{}, WithMaxRPS(1000))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	// first attempt fails and lands in the buffer; the flusher retries
	// after backoff against the recovered downstream
	err := p.Process(ctx, point("bitcoin"))
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return proc.accepted() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIngestPipeline_StopInterruptsBackoff(t *testing.T) {
	proc := &stubProc{failN: 1 << 30}
	p := NewIngestPipeline(proc, nopMetrics{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	// seed a point that keeps failing so the flusher climbs its backoff
	_ = p.Process(ctx, point("bitcoin"))
	time.Sleep(400 * time.Millisecond)

	start := time.Now()
	p.Stop()
	assert.Less(t, time.Since(start), 200*time.Millisecond)
}
