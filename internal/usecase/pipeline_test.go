package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
	"CoinSight/internal/repository"
	"CoinSight/internal/services/forecast"
	"CoinSight/pkg/cache"
	"CoinSight/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePriceStore serves a fixed in-memory series.
type fakePriceStore struct {
	series []models.PricePoint
}

func (f *fakePriceStore) StoreBatch(ctx context.Context, points []models.PricePoint) error {
	f.series = append(f.series, points...)
	return nil
}

func (f *fakePriceStore) GetHistory(ctx context.Context, instrumentID string, from, to time.Time) ([]models.PricePoint, error) {
	var out []models.PricePoint
	for _, p := range f.series {
		if p.InstrumentID == instrumentID && !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePriceStore) GetSeries(ctx context.Context, instrumentID string) ([]models.PricePoint, error) {
	var out []models.PricePoint
	for _, p := range f.series {
		if p.InstrumentID == instrumentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePriceStore) PriceOn(ctx context.Context, instrumentID string, date time.Time) (float64, bool, error) {
	d := date.UTC().Truncate(24 * time.Hour)
	for _, p := range f.series {
		if p.InstrumentID == instrumentID && p.Date().Equal(d) {
			return p.Price, true, nil
		}
	}
	return 0, false, nil
}

func (f *fakePriceStore) Health(ctx context.Context) error { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordPointsIngested(backend, instrument string, n int)            {}
func (nopMetrics) RecordError(kind string)                                           {}
func (nopMetrics) RecordLastPrice(instrument string, price float64)                  {}
func (nopMetrics) RecordLatency(op string, seconds float64)                          {}
func (nopMetrics) RecordTrainingRun(instrument string, horizonDays int, sel string)  {}
func (nopMetrics) RecordPrediction(instrument string, horizonDays int)               {}

func syntheticSeries(days int) []models.PricePoint {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, days)
	for i := range out {
		out[i] = models.PricePoint{
			InstrumentID: "bitcoin",
			Timestamp:    base.AddDate(0, 0, i),
			Price:        1000 + 3*float64(i) + 40*math.Sin(float64(i)/9),
			Volume:       5000 + 100*math.Cos(float64(i)/5),
		}
	}
	return out
}

type pipelineEnv struct {
	prices      *fakePriceStore
	derive      *DeriveUseCase
	forecasts   *ForecastUseCase
	modelStore  *repository.GormModelStore
	predictions *repository.GormPredictionStore
}

func setupPipeline(t *testing.T, days int) *pipelineEnv {
	t.Helper()

	db, err := repository.OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)

	prices := &fakePriceStore{series: syntheticSeries(days)}
	ind := repository.NewGormIndicatorStore(db)
	feat := repository.NewGormFeatureStore(db)
	modelStore := repository.NewGormModelStore(db)
	predStore := repository.NewGormPredictionStore(db)

	c := cache.NewMemoryCache()
	t.Cleanup(func() { _ = c.Close() })
	lgr := logger.Nop()
	m := nopMetrics{}

	return &pipelineEnv{
		prices:      prices,
		derive:      NewDeriveUseCase(prices, ind, feat, c, m, lgr),
		forecasts:   NewForecastUseCase(feat, prices, modelStore, predStore, c, m, lgr, forecast.DefaultTrainerConfig()),
		modelStore:  modelStore,
		predictions: predStore,
	}
}

func TestDeriveUseCase_Recompute(t *testing.T) {
	env := setupPipeline(t, 200)
	ctx := context.Background()

	res, err := env.derive.Recompute(ctx, "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, 200, res.PricePoints)
	assert.Equal(t, 200, res.IndicatorRows)
	assert.Equal(t, 170, res.FeatureRows)
}

func TestDeriveUseCase_NoData(t *testing.T) {
	env := setupPipeline(t, 200)
	_, err := env.derive.Recompute(context.Background(), "unknown-coin")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientData))
}

func TestForecastUseCase_TrainThenPredict(t *testing.T) {
	env := setupPipeline(t, 400)
	ctx := context.Background()

	_, err := env.derive.Recompute(ctx, "bitcoin")
	require.NoError(t, err)

	report, err := env.forecasts.Train(ctx, "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, report.HorizonDays)
	assert.NotEmpty(t, report.Selected)

	ok, err := env.modelStore.Exists(ctx, "bitcoin", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	pred, err := env.forecasts.Predict(ctx, "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, pred.HorizonDays)
	assert.Greater(t, pred.PredictedPrice, 0.0)

	stored, err := env.predictions.Query(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestForecastUseCase_PredictWithoutModel(t *testing.T) {
	env := setupPipeline(t, 400)
	ctx := context.Background()

	_, err := env.derive.Recompute(ctx, "bitcoin")
	require.NoError(t, err)

	_, err = env.forecasts.Predict(ctx, "bitcoin", 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrModelNotFound))
}

func TestForecastUseCase_Evaluate(t *testing.T) {
	env := setupPipeline(t, 400)
	ctx := context.Background()

	// a matured prediction whose target date lies inside the stored series
	target := env.prices.series[350]
	matured := models.Prediction{
		InstrumentID:   "bitcoin",
		PredictionDate: env.prices.series[349].Date(),
		TargetDate:     target.Date(),
		HorizonDays:    1,
		CurrentPrice:   env.prices.series[349].Price,
		PredictedPrice: target.Price * 1.02,
		Confidence:     0.75,
		ModelKind:      models.ModelLinear,
		ModelVersion:   "v1",
	}
	require.NoError(t, env.predictions.Append(ctx, matured))

	report, err := env.forecasts.Evaluate(ctx, "bitcoin")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Predictions)
	assert.InDelta(t, target.Price*0.02, report.MAE, 1e-6)
	// predicted up, actual up: direction matches
	assert.InDelta(t, 1.0, report.DirectionalAccuracy, 1e-9)
}

func TestPriceProcessor_UnknownBackend(t *testing.T) {
	proc := NewPriceProcessor(nil, &fakePriceStore{}, nopMetrics{}, "filesystem")

	err := proc.Process(context.Background(), models.PricePoint{
		InstrumentID: "bitcoin",
		Timestamp:    time.Now(),
		Price:        100,
	})
	assert.Error(t, err)
}

func TestPriceProcessor_ClickHouseBackend(t *testing.T) {
	store := &fakePriceStore{}
	proc := NewPriceProcessor(nil, store, nopMetrics{}, "clickhouse")

	pts := []models.PricePoint{
		{InstrumentID: "bitcoin", Timestamp: time.Now(), Price: 100, Volume: 1},
		{InstrumentID: "ethereum", Timestamp: time.Now(), Price: 50, Volume: 2},
	}
	require.NoError(t, proc.ProcessBatch(context.Background(), pts))
	assert.Len(t, store.series, 2)
}
