package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"CoinSight/internal/domain/models"
	"CoinSight/internal/services/features"
	"CoinSight/internal/services/indicators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticRows builds feature rows from a smooth upward price series with a
// mild oscillation, long enough for every lag window plus training minimums.
func syntheticRows(t *testing.T, days int) []models.FeatureRow {
	t.Helper()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	series := make([]models.PricePoint, days)
	for i := range series {
		price := 1000 + 3*float64(i) + 40*math.Sin(float64(i)/9)
		series[i] = models.PricePoint{
			InstrumentID: "bitcoin",
			Timestamp:    base.AddDate(0, 0, i),
			Price:        price,
			Volume:       5000 + 120*math.Cos(float64(i)/5),
		}
	}
	rows := features.Build(series, indicators.Compute(series))
	require.NotEmpty(t, rows)
	return rows
}

func TestTrain_SelectsAndSerializesWinner(t *testing.T) {
	rows := syntheticRows(t, 400)

	result, err := Train(rows, "bitcoin", 1, DefaultTrainerConfig())
	require.NoError(t, err)

	report := result.Report
	assert.Equal(t, "bitcoin", report.InstrumentID)
	assert.Equal(t, 1, report.HorizonDays)
	assert.Equal(t, len(rows)-1, report.Samples)
	assert.Equal(t, report.Samples, report.TrainRows+report.TestRows)
	assert.Len(t, report.Candidates, 3)
	assert.NotEmpty(t, report.Selected)
	assert.NotEmpty(t, report.Version)

	model := result.Model
	assert.Equal(t, report.Selected, model.Kind)
	assert.Equal(t, report.Version, model.Version)
	assert.NotEmpty(t, model.Params)
	assert.NotEmpty(t, model.Scaler)
	assert.False(t, model.TrainedAt.IsZero())

	// the winner round-trips through its serialized form
	m, err := UnmarshalRegressor(model.Kind, model.Params)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(m.Predict(rows[len(rows)-1].Vector())))
}

func TestTrainPredict_TracksSyntheticTrend(t *testing.T) {
	rows := syntheticRows(t, 400)

	result, err := Train(rows, "bitcoin", 7, DefaultTrainerConfig())
	require.NoError(t, err)

	// a clean linear trend must be learnable
	assert.Greater(t, result.Model.TestR2, 0.5)

	latest := rows[len(rows)-1]
	pred, err := Predict(result.Model, latest, time.Now().UTC())
	require.NoError(t, err)

	// the last feature row sits at series index 399; project the underlying
	// 3/day slope 7 days past it, the oscillation term stays within the band
	trend := 1000 + 3*float64(399+7)
	assert.InEpsilon(t, trend, pred.PredictedPrice, 0.10)
}

func TestTrain_ChronologicalSplit(t *testing.T) {
	rows := syntheticRows(t, 400)
	cfg := DefaultTrainerConfig()
	cfg.TestFraction = 0.25

	result, err := Train(rows, "bitcoin", 7, cfg)
	require.NoError(t, err)

	usable := len(rows) - 7
	wantTrain := int(float64(usable) * 0.75)
	assert.Equal(t, wantTrain, result.Report.TrainRows)
	assert.Equal(t, usable-wantTrain, result.Report.TestRows)
}

func TestTrain_InsufficientData(t *testing.T) {
	rows := syntheticRows(t, 400)[:40]

	_, err := Train(rows, "bitcoin", 7, DefaultTrainerConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientData))

	var ide *models.InsufficientDataError
	require.True(t, errors.As(err, &ide))
	assert.Equal(t, 33, ide.Have)
	assert.Equal(t, 50, ide.Need)
}

func TestTrain_BadHorizon(t *testing.T) {
	rows := syntheticRows(t, 400)

	_, err := Train(rows, "bitcoin", 0, DefaultTrainerConfig())
	assert.Error(t, err)
}

func TestTrain_Deterministic(t *testing.T) {
	rows := syntheticRows(t, 300)
	cfg := DefaultTrainerConfig()

	a, err := Train(rows, "bitcoin", 1, cfg)
	require.NoError(t, err)
	b, err := Train(rows, "bitcoin", 1, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Report.Selected, b.Report.Selected)
	for i := range a.Report.Candidates {
		assert.InDelta(t, a.Report.Candidates[i].R2, b.Report.Candidates[i].R2, 1e-12)
	}
}
