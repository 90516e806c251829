package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/pkg/cache"
	"CoinSight/pkg/logger"
)

const (
	defaultQueryLimit = 1000
	maxQueryLimit     = 10000
)

// CacheTTLs holds per-dataset cache lifetimes for read queries.
type CacheTTLs struct {
	Prices      time.Duration
	Indicators  time.Duration
	Features    time.Duration
	Predictions time.Duration
}

// QueryUseCase serves the read side of the API with cache-aside lookups.
type QueryUseCase struct {
	prices      drepo.PriceStore
	indicators  drepo.IndicatorStore
	features    drepo.FeatureStore
	predictions drepo.PredictionStore
	cache       cache.Service
	ttls        CacheTTLs
	l           *logger.Logger
}

func NewQueryUseCase(
	prices drepo.PriceStore,
	ind drepo.IndicatorStore,
	feat drepo.FeatureStore,
	pred drepo.PredictionStore,
	c cache.Service,
	ttls CacheTTLs,
	l *logger.Logger,
) *QueryUseCase {
	return &QueryUseCase{
		prices:      prices,
		indicators:  ind,
		features:    feat,
		predictions: pred,
		cache:       c,
		ttls:        ttls,
		l:           l,
	}
}

type GetPricesParams struct {
	InstrumentID string
	From         time.Time
	To           time.Time
	Limit        int
}

// GetPrices returns the raw price series in a window, ascending, capped at
// the query limit.
func (uc *QueryUseCase) GetPrices(ctx context.Context, p GetPricesParams) ([]models.PricePoint, error) {
	if p.InstrumentID == "" {
		return nil, fmt.Errorf("instrument id required")
	}
	if p.To.IsZero() {
		p.To = time.Now().UTC()
	}
	if p.From.IsZero() {
		p.From = p.To.AddDate(0, 0, -365)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must not be after to")
	}
	p.Limit = clampLimit(p.Limit)

	key := cache.Key("prices", p.InstrumentID,
		p.From.UTC().Format("20060102"), p.To.UTC().Format("20060102"),
		fmt.Sprintf("%d", p.Limit))
	if points, ok := fromCache[[]models.PricePoint](ctx, uc.cache, key); ok {
		return points, nil
	}

	points, err := uc.prices.GetHistory(ctx, p.InstrumentID, p.From, p.To)
	if err != nil {
		return nil, err
	}
	if len(points) > p.Limit {
		points = points[len(points)-p.Limit:]
	}

	uc.toCache(ctx, key, points, uc.ttls.Prices)
	return points, nil
}

// GetIndicators returns the most recent indicator rows, ascending by date.
func (uc *QueryUseCase) GetIndicators(ctx context.Context, instrumentID string, limit int) ([]models.IndicatorRow, error) {
	if instrumentID == "" {
		return nil, fmt.Errorf("instrument id required")
	}
	limit = clampLimit(limit)

	key := cache.Key("indicators", instrumentID, fmt.Sprintf("%d", limit))
	if rows, ok := fromCache[[]models.IndicatorRow](ctx, uc.cache, key); ok {
		return rows, nil
	}

	rows, err := uc.indicators.Latest(ctx, instrumentID, limit)
	if err != nil {
		return nil, err
	}
	uc.toCache(ctx, key, rows, uc.ttls.Indicators)
	return rows, nil
}

// GetFeatures returns the most recent feature rows, ascending by date.
func (uc *QueryUseCase) GetFeatures(ctx context.Context, instrumentID string, limit int) ([]models.FeatureRow, error) {
	if instrumentID == "" {
		return nil, fmt.Errorf("instrument id required")
	}
	limit = clampLimit(limit)

	key := cache.Key("features", instrumentID, fmt.Sprintf("%d", limit))
	if rows, ok := fromCache[[]models.FeatureRow](ctx, uc.cache, key); ok {
		return rows, nil
	}

	rows, err := uc.features.Latest(ctx, instrumentID, limit)
	if err != nil {
		return nil, err
	}
	uc.toCache(ctx, key, rows, uc.ttls.Features)
	return rows, nil
}

// GetPredictions returns every stored prediction for the instrument.
func (uc *QueryUseCase) GetPredictions(ctx context.Context, instrumentID string) ([]models.Prediction, error) {
	if instrumentID == "" {
		return nil, fmt.Errorf("instrument id required")
	}

	key := cache.Key("predictions", instrumentID)
	if preds, ok := fromCache[[]models.Prediction](ctx, uc.cache, key); ok {
		return preds, nil
	}

	preds, err := uc.predictions.Query(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	uc.toCache(ctx, key, preds, uc.ttls.Predictions)
	return preds, nil
}

func (uc *QueryUseCase) toCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if uc.cache == nil || ttl <= 0 {
		return
	}
	if err := uc.cache.Set(ctx, key, value, ttl); err != nil {
		uc.l.Debug("cache set failed", logger.String("key", key), logger.Error(err))
	}
}

func fromCache[T any](ctx context.Context, c cache.Service, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	v, err := cache.GetTyped[T](ctx, c, key)
	if err != nil {
		return zero, false
	}
	return v, true
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultQueryLimit
	}
	if limit > maxQueryLimit {
		return maxQueryLimit
	}
	return limit
}
