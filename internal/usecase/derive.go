package usecase

import (
	"context"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/internal/services/features"
	"CoinSight/internal/services/indicators"
	"CoinSight/pkg/cache"
	"CoinSight/pkg/logger"
)

// DeriveUseCase recomputes indicator and feature rows from the raw price
// series. Both derived sets are replaced wholesale so they always describe
// one consistent snapshot of the series.
type DeriveUseCase struct {
	prices     drepo.PriceStore
	indicators drepo.IndicatorStore
	features   drepo.FeatureStore
	cache      cache.Service
	metrics    drepo.Metrics
	l          *logger.Logger
}

func NewDeriveUseCase(
	prices drepo.PriceStore,
	ind drepo.IndicatorStore,
	feat drepo.FeatureStore,
	c cache.Service,
	metrics drepo.Metrics,
	l *logger.Logger,
) *DeriveUseCase {
	return &DeriveUseCase{
		prices:     prices,
		indicators: ind,
		features:   feat,
		cache:      c,
		metrics:    metrics,
		l:          l,
	}
}

// DeriveResult reports row counts of one recompute run.
type DeriveResult struct {
	InstrumentID  string
	PricePoints   int
	IndicatorRows int
	FeatureRows   int
}

// Recompute rebuilds indicators and features for one instrument from the
// full stored price series.
func (uc *DeriveUseCase) Recompute(ctx context.Context, instrumentID string) (*DeriveResult, error) {
	start := time.Now()

	series, err := uc.prices.GetSeries(ctx, instrumentID)
	if err != nil {
		uc.metrics.RecordError("derive_load")
		return nil, err
	}
	if len(series) == 0 {
		return nil, &models.InsufficientDataError{
			InstrumentID: instrumentID,
			Op:           "recompute",
			Have:         0,
			Need:         1,
		}
	}

	rows := indicators.Compute(series)
	if err := uc.indicators.ReplaceAll(ctx, instrumentID, rows); err != nil {
		uc.metrics.RecordError("derive_store")
		return nil, err
	}

	feats := features.Build(series, rows)
	if err := uc.features.ReplaceAll(ctx, instrumentID, feats); err != nil {
		uc.metrics.RecordError("derive_store")
		return nil, err
	}

	uc.invalidate(ctx, instrumentID)
	uc.metrics.RecordLatency("recompute", time.Since(start).Seconds())

	uc.l.Info("derived data recomputed",
		logger.String("instrument", instrumentID),
		logger.Int("indicator_rows", len(rows)),
		logger.Int("feature_rows", len(feats)),
		logger.Duration("took", time.Since(start)))

	return &DeriveResult{
		InstrumentID:  instrumentID,
		PricePoints:   len(series),
		IndicatorRows: len(rows),
		FeatureRows:   len(feats),
	}, nil
}

func (uc *DeriveUseCase) invalidate(ctx context.Context, instrumentID string) {
	if uc.cache == nil {
		return
	}
	for _, kind := range []string{"indicators", "features"} {
		if err := uc.cache.DeleteByPattern(ctx, cache.Pattern(kind, instrumentID)); err != nil {
			uc.l.Debug("cache invalidation failed",
				logger.String("instrument", instrumentID),
				logger.Error(err))
		}
	}
}
