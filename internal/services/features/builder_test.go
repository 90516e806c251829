package features

import (
	"testing"
	"time"

	"CoinSight/internal/domain/models"
	"CoinSight/internal/services/indicators"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSeries(prices []float64) []models.PricePoint {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{
			InstrumentID: "ethereum",
			Timestamp:    base.AddDate(0, 0, i),
			Price:        p,
			Volume:       500 + float64(i),
		}
	}
	return out
}

func TestBuild_LagsAndLevels(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 1000 + float64(i)*10
	}
	series := makeSeries(prices)
	rows := indicators.Compute(series)

	feats := Build(series, rows)

	require.Len(t, feats, 60-Lag30)

	first := feats[0]
	assert.Equal(t, "ethereum", first.InstrumentID)
	assert.Equal(t, series[Lag30].Date(), first.Date)
	assert.InDelta(t, prices[30], first.PriceCurrent, 1e-9)
	assert.InDelta(t, prices[29], first.Price1dAgo, 1e-9)
	assert.InDelta(t, prices[23], first.Price7dAgo, 1e-9)
	assert.InDelta(t, prices[0], first.Price30dAgo, 1e-9)

	// trailing min/max over the level window
	assert.InDelta(t, prices[1], first.SupportLevel, 1e-9)
	assert.InDelta(t, prices[30], first.ResistanceLevel, 1e-9)
}

func TestBuild_TooFewRows(t *testing.T) {
	series := makeSeries(make([]float64, 30))
	rows := indicators.Compute(series)

	assert.Nil(t, Build(series, rows))
}

func TestBuild_MismatchedIndicators(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100
	}
	series := makeSeries(prices)

	assert.Nil(t, Build(series, nil))
}

func TestBuild_DropsInvalidRows(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 1000 + float64(i)
	}
	prices[45] = 0 // malformed upstream value
	series := makeSeries(prices)
	rows := indicators.Compute(series)

	feats := Build(series, rows)

	for _, f := range feats {
		assert.Greater(t, f.PriceCurrent, 0.0)
	}
	// the zero-price row is dropped, not zero-filled
	assert.Less(t, len(feats), 60-Lag30)
}

func TestTrendDirection(t *testing.T) {
	assert.Equal(t, 1, trendDirection(100, 106))
	assert.Equal(t, -1, trendDirection(100, 94))
	assert.Equal(t, 0, trendDirection(100, 104))
	assert.Equal(t, 0, trendDirection(100, 96))
	assert.Equal(t, 0, trendDirection(0, 50))
}

func TestBuild_TrendLabels(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 1000 * (1 + 0.02*float64(i)) // ~2% per step, >5% over 7 steps
	}
	series := makeSeries(prices)
	rows := indicators.Compute(series)

	feats := Build(series, rows)

	require.NotEmpty(t, feats)
	for _, f := range feats {
		assert.Equal(t, 1, f.TrendDirection)
	}
}
