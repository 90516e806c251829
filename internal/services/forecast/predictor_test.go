package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredict_FromTrainedModel(t *testing.T) {
	rows := syntheticRows(t, 400)

	result, err := Train(rows, "bitcoin", 7, DefaultTrainerConfig())
	require.NoError(t, err)

	now := time.Date(2026, 3, 15, 13, 45, 0, 0, time.UTC)
	latest := rows[len(rows)-1]

	pred, err := Predict(result.Model, latest, now)
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", pred.InstrumentID)
	assert.Equal(t, 7, pred.HorizonDays)
	assert.Equal(t, result.Model.Kind, pred.ModelKind)
	assert.Equal(t, result.Model.Version, pred.ModelVersion)

	wantDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, wantDate, pred.PredictionDate)
	assert.Equal(t, wantDate.AddDate(0, 0, 7), pred.TargetDate)

	assert.InDelta(t, latest.PriceCurrent, pred.CurrentPrice, 1e-9)
	assert.InDelta(t, (pred.PredictedPrice/pred.CurrentPrice-1)*100, pred.PriceChangePercent, 1e-9)

	// prediction stays within a loose band of the current price on a smooth
	// synthetic series
	assert.Greater(t, pred.PredictedPrice, pred.CurrentPrice*0.5)
	assert.Less(t, pred.PredictedPrice, pred.CurrentPrice*1.5)

	assert.GreaterOrEqual(t, pred.Confidence, 0.0)
	assert.LessOrEqual(t, pred.Confidence, 1.0)
	assert.Nil(t, pred.ActualPrice)
	assert.Nil(t, pred.ErrorPercent)
}

func TestPredict_NonPositiveCurrentPrice(t *testing.T) {
	rows := syntheticRows(t, 400)
	result, err := Train(rows, "bitcoin", 1, DefaultTrainerConfig())
	require.NoError(t, err)

	bad := rows[len(rows)-1]
	bad.PriceCurrent = 0

	_, err = Predict(result.Model, bad, time.Now())
	assert.Error(t, err)
}

func TestPredict_CorruptParams(t *testing.T) {
	rows := syntheticRows(t, 400)
	result, err := Train(rows, "bitcoin", 1, DefaultTrainerConfig())
	require.NoError(t, err)

	tm := result.Model
	tm.Params = []byte("{")

	_, err = Predict(tm, rows[len(rows)-1], time.Now())
	assert.Error(t, err)
}
