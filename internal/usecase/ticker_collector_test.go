package usecase

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

// safeStore is a goroutine-safe PriceStore capturing stored batches.
type safeStore struct {
	mu     sync.Mutex
	points []models.PricePoint
}

func (s *safeStore) StoreBatch(ctx context.Context, points []models.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, points...)
	return nil
}

func (s *safeStore) GetHistory(ctx context.Context, instrumentID string, from, to time.Time) ([]models.PricePoint, error) {
	return nil, nil
}

func (s *safeStore) GetSeries(ctx context.Context, instrumentID string) ([]models.PricePoint, error) {
	return nil, nil
}

func (s *safeStore) PriceOn(ctx context.Context, instrumentID string, date time.Time) (float64, bool, error) {
	return 0, false, nil
}

func (s *safeStore) Health(ctx context.Context) error { return nil }

func (s *safeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}

// flakyStream fails its first read loop, then serves ticks after reconnect.
type flakyStream struct {
	mu         sync.Mutex
	reads      int
	reconnects int
	connected  bool
}

func (s *flakyStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	return nil
}

func (s *flakyStream) Subscribe(ctx context.Context) error { return nil }

func (s *flakyStream) Read(ctx context.Context) (<-chan *models.Ticker, <-chan error) {
	s.mu.Lock()
	s.reads++
	attempt := s.reads
	s.mu.Unlock()

	ticks := make(chan *models.Ticker, 8)
	errs := make(chan error, 1)
	if attempt == 1 {
		errs <- errors.New("read: connection reset by peer")
		close(ticks)
		close(errs)
		return ticks, errs
	}

	ticks <- &models.Ticker{
		InstrumentID: "bitcoin",
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Unix(),
		Price:        65000,
		Volume:       12,
	}
	return ticks, errs
}

func (s *flakyStream) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnects++
	s.connected = true
	return nil
}

func (s *flakyStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	return nil
}

func (s *flakyStream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *flakyStream) stats() (reads, reconnects int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads, s.reconnects
}

func TestTickerCollector_ResumesAfterReadError(t *testing.T) {
	stream := &flakyStream{}
	store := &safeStore{}
	proc := NewPriceProcessor(nil, store, nopMetrics{}, "clickhouse")
	collector := NewTickerCollector(stream, proc, nopMetrics{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, collector.Start(ctx))

	// the first read loop dies immediately; the collector must reconnect,
	// re-read, and keep ingesting
	require.Eventually(t, func() bool {
		return store.count() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	reads, reconnects := stream.stats()
	assert.GreaterOrEqual(t, reads, 2)
	assert.GreaterOrEqual(t, reconnects, 1)
	assert.True(t, collector.IsConnected())

	require.NoError(t, collector.Shutdown(context.Background()))
}
