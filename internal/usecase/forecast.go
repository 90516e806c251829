package usecase

import (
	"context"
	"errors"
	"time"

	"CoinSight/internal/domain/models"
	drepo "CoinSight/internal/domain/repository"
	"CoinSight/internal/services/forecast"
	"CoinSight/pkg/cache"
	"CoinSight/pkg/logger"
)

// ForecastUseCase covers the model lifecycle: training, prediction, and
// evaluation against realized prices.
type ForecastUseCase struct {
	features    drepo.FeatureStore
	prices      drepo.PriceStore
	modelStore  drepo.ModelStore
	predictions drepo.PredictionStore
	cache       cache.Service
	metrics     drepo.Metrics
	l           *logger.Logger
	trainerCfg  forecast.TrainerConfig
}

func NewForecastUseCase(
	features drepo.FeatureStore,
	prices drepo.PriceStore,
	modelStore drepo.ModelStore,
	predictions drepo.PredictionStore,
	c cache.Service,
	metrics drepo.Metrics,
	l *logger.Logger,
	trainerCfg forecast.TrainerConfig,
) *ForecastUseCase {
	return &ForecastUseCase{
		features:    features,
		prices:      prices,
		modelStore:  modelStore,
		predictions: predictions,
		cache:       c,
		metrics:     metrics,
		l:           l,
		trainerCfg:  trainerCfg,
	}
}

// Train fits all candidate models for one (instrument, horizon) pair and
// persists the winner, replacing any previous model for that pair.
func (uc *ForecastUseCase) Train(ctx context.Context, instrumentID string, horizonDays int) (*models.TrainingReport, error) {
	horizonDays = drepo.NormalizeHorizon(horizonDays)
	start := time.Now()

	rows, err := uc.features.Series(ctx, instrumentID)
	if err != nil {
		uc.metrics.RecordError("train_load")
		return nil, err
	}

	result, err := forecast.Train(rows, instrumentID, horizonDays, uc.trainerCfg)
	if err != nil {
		uc.metrics.RecordError("train")
		return nil, err
	}

	if err := uc.modelStore.Put(ctx, result.Model); err != nil {
		uc.metrics.RecordError("train_store")
		return nil, err
	}

	uc.metrics.RecordTrainingRun(instrumentID, horizonDays, string(result.Report.Selected))
	uc.metrics.RecordLatency("train", time.Since(start).Seconds())

	uc.l.Info("model trained",
		logger.String("instrument", instrumentID),
		logger.Int("horizon_days", horizonDays),
		logger.String("selected", string(result.Report.Selected)),
		logger.Float64("test_r2", result.Model.TestR2),
		logger.Duration("took", time.Since(start)))

	return &result.Report, nil
}

// TrainAll trains every standard horizon for one instrument. Horizons
// failing on insufficient data are skipped, other errors abort.
func (uc *ForecastUseCase) TrainAll(ctx context.Context, instrumentID string) ([]models.TrainingReport, error) {
	reports := make([]models.TrainingReport, 0, len(drepo.Horizons))
	for _, h := range drepo.Horizons {
		rep, err := uc.Train(ctx, instrumentID, h)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientData) {
				uc.l.Warn("horizon skipped",
					logger.String("instrument", instrumentID),
					logger.Int("horizon_days", h),
					logger.Error(err))
				continue
			}
			return reports, err
		}
		reports = append(reports, *rep)
	}
	return reports, nil
}

// Predict produces a point forecast from the latest feature row using the
// persisted model for the horizon. There is no auto-train: a missing model
// surfaces as ErrModelNotFound.
func (uc *ForecastUseCase) Predict(ctx context.Context, instrumentID string, horizonDays int) (*models.Prediction, error) {
	horizonDays = drepo.NormalizeHorizon(horizonDays)

	tm, err := uc.modelStore.Get(ctx, instrumentID, horizonDays)
	if err != nil {
		return nil, err
	}

	latest, err := uc.features.Latest(ctx, instrumentID, 1)
	if err != nil {
		uc.metrics.RecordError("predict_load")
		return nil, err
	}
	if len(latest) == 0 {
		return nil, &models.InsufficientDataError{
			InstrumentID: instrumentID,
			Op:           "predict",
			Have:         0,
			Need:         1,
		}
	}

	pred, err := forecast.Predict(tm, latest[len(latest)-1], time.Now())
	if err != nil {
		uc.metrics.RecordError("predict")
		return nil, err
	}

	if err := uc.predictions.Append(ctx, pred); err != nil {
		uc.metrics.RecordError("predict_store")
		return nil, err
	}

	uc.metrics.RecordPrediction(instrumentID, horizonDays)
	if uc.cache != nil {
		_ = uc.cache.DeleteByPattern(ctx, cache.Pattern("predictions", instrumentID))
	}

	return &pred, nil
}

// Evaluate backfills realized prices into matured predictions and reports
// aggregate accuracy over every resolved prediction of the instrument.
func (uc *ForecastUseCase) Evaluate(ctx context.Context, instrumentID string) (*models.EvaluationReport, error) {
	now := time.Now().UTC()

	unresolved, err := uc.predictions.Unresolved(ctx, instrumentID, now)
	if err != nil {
		return nil, err
	}
	for _, p := range unresolved {
		actual, ok, err := uc.prices.PriceOn(ctx, instrumentID, p.TargetDate)
		if err != nil {
			uc.metrics.RecordError("evaluate_load")
			return nil, err
		}
		if !ok || actual <= 0 {
			// no realized price recorded for that date yet
			continue
		}
		errPct := (p.PredictedPrice - actual) / actual * 100
		if err := uc.predictions.SetActual(ctx, instrumentID, p.PredictionDate, p.TargetDate, actual, errPct); err != nil {
			uc.metrics.RecordError("evaluate_store")
			return nil, err
		}
	}

	all, err := uc.predictions.Query(ctx, instrumentID)
	if err != nil {
		return nil, err
	}

	var actuals, predicted []float64
	var directionHits, resolved int
	for _, p := range all {
		if p.ActualPrice == nil {
			continue
		}
		resolved++
		actuals = append(actuals, *p.ActualPrice)
		predicted = append(predicted, p.PredictedPrice)
		predictedUp := p.PredictedPrice >= p.CurrentPrice
		actualUp := *p.ActualPrice >= p.CurrentPrice
		if predictedUp == actualUp {
			directionHits++
		}
	}

	report := &models.EvaluationReport{
		InstrumentID: instrumentID,
		Predictions:  resolved,
	}
	if resolved > 0 {
		report.MAE = forecast.MAE(actuals, predicted)
		report.MSE = forecast.MSE(actuals, predicted)
		report.R2 = forecast.R2(actuals, predicted)
		report.DirectionalAccuracy = float64(directionHits) / float64(resolved)
	}
	return report, nil
}
