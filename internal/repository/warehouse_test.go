package repository

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"CoinSight/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(offset int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func indicatorRows(instrument string, n int) []models.IndicatorRow {
	rows := make([]models.IndicatorRow, n)
	for i := range rows {
		rows[i] = models.IndicatorRow{
			InstrumentID: instrument,
			Date:         day(i),
			SMA7:         100 + float64(i),
			RSI14:        50,
		}
	}
	return rows
}

func TestGormIndicatorStore_ReplaceAllAndLatest(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormIndicatorStore(db)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, "bitcoin", indicatorRows("bitcoin", 10)))

	got, err := store.Latest(ctx, "bitcoin", 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// ascending by date, trailing rows of the series
	assert.True(t, got[0].Date.Before(got[1].Date))
	assert.True(t, got[2].Date.Equal(day(9)))
	assert.InDelta(t, 109.0, got[2].SMA7, 1e-9)
}

func TestGormIndicatorStore_WarmupNaNRoundTrips(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormIndicatorStore(db)
	ctx := context.Background()

	warmup := models.IndicatorRow{
		InstrumentID: "bitcoin",
		Date:         day(0),
		SMA7:         math.NaN(),
		SMA30:        math.NaN(),
		RSI14:        math.NaN(),
		MACD:         1.5,
	}
	require.NoError(t, store.ReplaceAll(ctx, "bitcoin", []models.IndicatorRow{warmup}))

	got, err := store.Latest(ctx, "bitcoin", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// undefined warm-up values stay NaN, they never collapse to 0
	assert.True(t, math.IsNaN(got[0].SMA7))
	assert.True(t, math.IsNaN(got[0].SMA30))
	assert.True(t, math.IsNaN(got[0].RSI14))
	assert.InDelta(t, 1.5, got[0].MACD, 1e-9)
}

func TestGormIndicatorStore_ReplaceIsWholesale(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormIndicatorStore(db)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, "bitcoin", indicatorRows("bitcoin", 10)))
	require.NoError(t, store.ReplaceAll(ctx, "bitcoin", indicatorRows("bitcoin", 4)))

	got, err := store.Latest(ctx, "bitcoin", 0)
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestGormIndicatorStore_InstrumentsIsolated(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormIndicatorStore(db)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, "bitcoin", indicatorRows("bitcoin", 5)))
	require.NoError(t, store.ReplaceAll(ctx, "ethereum", indicatorRows("ethereum", 3)))
	require.NoError(t, store.ReplaceAll(ctx, "bitcoin", nil))

	btc, err := store.Latest(ctx, "bitcoin", 0)
	require.NoError(t, err)
	assert.Empty(t, btc)

	eth, err := store.Latest(ctx, "ethereum", 0)
	require.NoError(t, err)
	assert.Len(t, eth, 3)
}

func featureRows(instrument string, n int) []models.FeatureRow {
	rows := make([]models.FeatureRow, n)
	for i := range rows {
		rows[i] = models.FeatureRow{
			InstrumentID: instrument,
			Date:         day(i),
			PriceCurrent: 200 + float64(i),
			Price1dAgo:   199 + float64(i),
			RSI14:        55,
		}
	}
	return rows
}

func TestGormFeatureStore_SeriesAndLatest(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormFeatureStore(db)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, "bitcoin", featureRows("bitcoin", 8)))

	all, err := store.Series(ctx, "bitcoin")
	require.NoError(t, err)
	require.Len(t, all, 8)
	assert.True(t, all[0].Date.Before(all[7].Date))
	assert.InDelta(t, 200.0, all[0].PriceCurrent, 1e-9)

	latest, err := store.Latest(ctx, "bitcoin", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.True(t, latest[1].Date.Equal(day(7)))
	assert.InDelta(t, 207.0, latest[1].PriceCurrent, 1e-9)
}

func TestGormModelStore_PutGetExists(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormModelStore(db)
	ctx := context.Background()

	tm := models.TrainedModel{
		InstrumentID: "bitcoin",
		HorizonDays:  7,
		Kind:         models.ModelRandomForest,
		Version:      "random_forest-7d-20250601120000",
		Params:       []byte(`{"trees":[]}`),
		Scaler:       []byte(`{}`),
		TrainedAt:    day(0),
		TestR2:       0.91,
	}
	require.NoError(t, store.Put(ctx, tm))

	got, err := store.Get(ctx, "bitcoin", 7)
	require.NoError(t, err)
	assert.Equal(t, tm.Kind, got.Kind)
	assert.Equal(t, tm.Version, got.Version)
	assert.Equal(t, tm.Params, got.Params)
	assert.InDelta(t, 0.91, got.TestR2, 1e-9)

	ok, err := store.Exists(ctx, "bitcoin", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "bitcoin", 30)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormModelStore_PutReplaces(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormModelStore(db)
	ctx := context.Background()

	first := models.TrainedModel{
		InstrumentID: "bitcoin",
		HorizonDays:  1,
		Kind:         models.ModelLinear,
		Version:      "v1",
		Params:       []byte(`{"weights":[1]}`),
		TrainedAt:    day(0),
	}
	require.NoError(t, store.Put(ctx, first))

	second := first
	second.Kind = models.ModelGradientBoosting
	second.Version = "v2"
	second.Params = []byte(`{"trees":[1]}`)
	second.TrainedAt = day(1)
	require.NoError(t, store.Put(ctx, second))

	got, err := store.Get(ctx, "bitcoin", 1)
	require.NoError(t, err)
	assert.Equal(t, models.ModelGradientBoosting, got.Kind)
	assert.Equal(t, "v2", got.Version)
	assert.Equal(t, second.Params, got.Params)
}

func TestGormModelStore_GetNotFound(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormModelStore(db)

	_, err = store.Get(context.Background(), "bitcoin", 7)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrModelNotFound))

	var nf *models.ModelNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "bitcoin", nf.InstrumentID)
	assert.Equal(t, 7, nf.HorizonDays)
}

func prediction(predDay, horizon int) models.Prediction {
	return models.Prediction{
		InstrumentID:   "bitcoin",
		PredictionDate: day(predDay),
		TargetDate:     day(predDay + horizon),
		HorizonDays:    horizon,
		CurrentPrice:   50000,
		PredictedPrice: 51000,
		Confidence:     0.75,
		ModelKind:      models.ModelRandomForest,
		ModelVersion:   "v1",
	}
}

func TestGormPredictionStore_AppendIsIdempotent(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormPredictionStore(db)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, prediction(0, 7)))
	require.NoError(t, store.Append(ctx, prediction(0, 7)))
	require.NoError(t, store.Append(ctx, prediction(1, 7)))

	got, err := store.Query(ctx, "bitcoin")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestGormPredictionStore_UnresolvedAndSetActual(t *testing.T) {
	db, err := OpenWarehouse("sqlite", ":memory:")
	require.NoError(t, err)
	store := NewGormPredictionStore(db)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, prediction(0, 1)))
	require.NoError(t, store.Append(ctx, prediction(0, 30)))

	// only the matured prediction is unresolved before day 5
	open, err := store.Unresolved(ctx, "bitcoin", day(5))
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.True(t, open[0].TargetDate.Equal(day(1)))

	require.NoError(t, store.SetActual(ctx, "bitcoin", day(0), day(1), 50500, 0.99))

	open, err = store.Unresolved(ctx, "bitcoin", day(5))
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := store.Query(ctx, "bitcoin")
	require.NoError(t, err)
	require.Len(t, all, 2)
	var resolved *models.Prediction
	for i := range all {
		if all[i].ActualPrice != nil {
			resolved = &all[i]
		}
	}
	require.NotNil(t, resolved)
	assert.InDelta(t, 50500.0, *resolved.ActualPrice, 1e-9)
	require.NotNil(t, resolved.ErrorPercent)
	assert.InDelta(t, 0.99, *resolved.ErrorPercent, 1e-9)
}
