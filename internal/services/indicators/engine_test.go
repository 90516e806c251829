package indicators

import (
	"math"
	"testing"
	"time"

	"CoinSight/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesFromPrices(prices []float64) []models.PricePoint {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{
			InstrumentID: "bitcoin",
			Timestamp:    base.AddDate(0, 0, i),
			Price:        p,
			Volume:       1000,
		}
	}
	return out
}

func TestRollingMean(t *testing.T) {
	out := RollingMean([]float64{1, 2, 3, 4, 5}, 3)

	require.Len(t, out, 5)
	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestRollingMean_ShortSeries(t *testing.T) {
	out := RollingMean([]float64{1, 2}, 3)

	require.Len(t, out, 2)
	for _, v := range out {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRollingStd_SampleDivisor(t *testing.T) {
	out := RollingStd([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 8)

	require.Len(t, out, 8)
	// sample std of the full window with the n-1 divisor
	assert.InDelta(t, 2.13809, out[7], 1e-4)
}

func TestRollingMinMax(t *testing.T) {
	xs := []float64{5, 3, 8, 1, 9}

	mins := RollingMin(xs, 3)
	maxs := RollingMax(xs, 3)

	assert.InDelta(t, 3.0, mins[2], 1e-9)
	assert.InDelta(t, 1.0, mins[3], 1e-9)
	assert.InDelta(t, 1.0, mins[4], 1e-9)
	assert.InDelta(t, 8.0, maxs[2], 1e-9)
	assert.InDelta(t, 8.0, maxs[3], 1e-9)
	assert.InDelta(t, 9.0, maxs[4], 1e-9)
}

func TestEMA_SeedAndSmoothing(t *testing.T) {
	out := EMA([]float64{10, 20}, 3)

	require.Len(t, out, 2)
	assert.InDelta(t, 10.0, out[0], 1e-9)
	// alpha = 2/(3+1) = 0.5
	assert.InDelta(t, 15.0, out[1], 1e-9)
}

func TestRSI_AllGains(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	out := RSI(prices, 14)

	assert.True(t, math.IsNaN(out[13]))
	assert.InDelta(t, 100.0, out[14], 1e-9)
	assert.InDelta(t, 100.0, out[19], 1e-9)
}

func TestRSI_Flat(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100
	}

	out := RSI(prices, 14)

	assert.InDelta(t, 50.0, out[14], 1e-9)
}

func TestRSI_Bounded(t *testing.T) {
	prices := []float64{100, 102, 99, 104, 101, 106, 103, 108, 105, 110, 107, 112, 109, 114, 111, 116, 113}

	out := RSI(prices, 14)

	for i := 14; i < len(out); i++ {
		assert.GreaterOrEqual(t, out[i], 0.0)
		assert.LessOrEqual(t, out[i], 100.0)
	}
}

func TestCompute_AlignmentAndWarmup(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	series := seriesFromPrices(prices)

	rows := Compute(series)

	require.Len(t, rows, 40)
	assert.Equal(t, "bitcoin", rows[0].InstrumentID)
	assert.Equal(t, series[0].Date(), rows[0].Date)

	// warm-up positions stay NaN
	assert.True(t, math.IsNaN(rows[5].SMA7))
	assert.True(t, math.IsNaN(rows[28].SMA30))

	// filled positions carry trailing means
	assert.InDelta(t, 103.0, rows[6].SMA7, 1e-9)
	assert.InDelta(t, 114.5, rows[29].SMA30, 1e-9)

	// MACD is the EMA spread, signal smooths it
	assert.InDelta(t, rows[39].EMA12-rows[39].EMA26, rows[39].MACD, 1e-9)
	assert.False(t, math.IsNaN(rows[39].MACDSignal))

	// bands bracket the mid SMA once the window fills
	assert.Greater(t, rows[20].BollingerUpper, rows[20].SMA14)
	assert.Less(t, rows[20].BollingerLower, rows[20].SMA14)

	// volatility is std over mean, positive on a rising series
	assert.Greater(t, rows[20].Volatility, 0.0)
}

func TestCompute_Empty(t *testing.T) {
	assert.Nil(t, Compute(nil))
}
