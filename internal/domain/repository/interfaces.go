package repository

import (
	"context"
	"time"

	"CoinSight/internal/domain/models"
)

// PriceSource provides historical price series from an external market-data
// API. Implementations must return the series deduplicated and ascending by
// timestamp.
type PriceSource interface {
	FetchHistory(ctx context.Context, instrumentID string, days int) ([]models.PricePoint, error)
}

// TickerStream is a realtime price feed (WebSocket or similar).
type TickerStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Ticker, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// PriceStore is the time-series store for raw price history.
type PriceStore interface {
	StoreBatch(ctx context.Context, points []models.PricePoint) error
	GetHistory(ctx context.Context, instrumentID string, from, to time.Time) ([]models.PricePoint, error)
	// GetSeries returns the full ascending series for an instrument.
	GetSeries(ctx context.Context, instrumentID string) ([]models.PricePoint, error)
	// PriceOn returns the recorded price for the instrument on a calendar date.
	PriceOn(ctx context.Context, instrumentID string, date time.Time) (float64, bool, error)
	Health(ctx context.Context) error
}

// Publisher fans collected price points out to a message backend.
type Publisher interface {
	Publish(ctx context.Context, p models.PricePoint) error
	PublishBatch(ctx context.Context, points []models.PricePoint) error
	Close() error
}

// IndicatorStore persists derived indicator rows, replace-on-recompute.
type IndicatorStore interface {
	ReplaceAll(ctx context.Context, instrumentID string, rows []models.IndicatorRow) error
	Latest(ctx context.Context, instrumentID string, limit int) ([]models.IndicatorRow, error)
}

// FeatureStore persists derived feature rows, replace-on-recompute.
type FeatureStore interface {
	ReplaceAll(ctx context.Context, instrumentID string, rows []models.FeatureRow) error
	Series(ctx context.Context, instrumentID string) ([]models.FeatureRow, error)
	Latest(ctx context.Context, instrumentID string, limit int) ([]models.FeatureRow, error)
}

// ModelStore persists trained models keyed by (instrument, horizon).
// Put replaces atomically: a reader never observes a partial model.
type ModelStore interface {
	Put(ctx context.Context, m models.TrainedModel) error
	Get(ctx context.Context, instrumentID string, horizonDays int) (models.TrainedModel, error)
	Exists(ctx context.Context, instrumentID string, horizonDays int) (bool, error)
}

// PredictionStore is append-only for new predictions; the evaluation step
// backfills actuals.
type PredictionStore interface {
	Append(ctx context.Context, p models.Prediction) error
	Query(ctx context.Context, instrumentID string) ([]models.Prediction, error)
	// Unresolved returns predictions whose target date has passed but whose
	// actual price is not yet recorded.
	Unresolved(ctx context.Context, instrumentID string, before time.Time) ([]models.Prediction, error)
	SetActual(ctx context.Context, instrumentID string, predictionDate, targetDate time.Time, actual, errorPct float64) error
}

// Metrics abstracts the Prometheus recorder.
type Metrics interface {
	RecordPointsIngested(backend, instrument string, n int)
	RecordError(kind string)
	RecordLastPrice(instrument string, price float64)
	RecordLatency(op string, seconds float64)
	RecordTrainingRun(instrument string, horizonDays int, selected string)
	RecordPrediction(instrument string, horizonDays int)
}
