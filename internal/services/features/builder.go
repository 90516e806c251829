package features

import (
	"math"

	"CoinSight/internal/domain/models"
	"CoinSight/internal/services/indicators"
)

// Lag depths and rolling windows of the feature schema.
const (
	Lag1  = 1
	Lag7  = 7
	Lag30 = 30

	VolumeWindowShort = 7
	VolumeWindowLong  = 30
	// LevelWindow sizes the naive support/resistance floor and ceiling.
	LevelWindow = 30
)

// TrendThreshold is the policy constant for the trend label: 7-period price
// changes within ±5% are labeled sideways.
const TrendThreshold = 0.05

// Build derives the flat per-date feature vectors from raw price history and
// the aligned indicator rows. Rows lacking full lag history are dropped, so
// for a clean series the output has len(prices) - Lag30 rows. Rows carrying
// malformed upstream values (non-positive price, NaN volume) are excluded
// rather than propagated.
func Build(prices []models.PricePoint, rows []models.IndicatorRow) []models.FeatureRow {
	n := len(prices)
	if n <= Lag30 || len(rows) != n {
		return nil
	}

	px := make([]float64, n)
	vol := make([]float64, n)
	for i, p := range prices {
		px[i] = p.Price
		vol[i] = p.Volume
	}

	volAvg7 := indicators.RollingMean(vol, VolumeWindowShort)
	volAvg30 := indicators.RollingMean(vol, VolumeWindowLong)
	priceStd7 := indicators.RollingStd(px, VolumeWindowShort)
	priceStd30 := indicators.RollingStd(px, VolumeWindowLong)
	support := indicators.RollingMin(px, LevelWindow)
	resistance := indicators.RollingMax(px, LevelWindow)

	out := make([]models.FeatureRow, 0, n-Lag30)
	for i := Lag30; i < n; i++ {
		f := models.FeatureRow{
			InstrumentID:       prices[i].InstrumentID,
			Date:               prices[i].Date(),
			PriceCurrent:       px[i],
			Price1dAgo:         px[i-Lag1],
			Price7dAgo:         px[i-Lag7],
			Price30dAgo:        px[i-Lag30],
			VolumeAvg7d:        volAvg7[i],
			VolumeAvg30d:       volAvg30[i],
			Volatility7d:       priceStd7[i],
			Volatility30d:      priceStd30[i],
			RSI14:              rows[i].RSI14,
			MACDSignalStrength: math.Abs(rows[i].MACD - rows[i].MACDSignal),
			TrendDirection:     trendDirection(px[i-Lag7], px[i]),
			SupportLevel:       support[i],
			ResistanceLevel:    resistance[i],
		}
		if !valid(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// trendDirection labels the 7-period percentage change: 1 above
// +TrendThreshold, -1 below -TrendThreshold, 0 otherwise.
func trendDirection(past, current float64) int {
	if past == 0 {
		return 0
	}
	change := (current - past) / past
	switch {
	case change > TrendThreshold:
		return 1
	case change < -TrendThreshold:
		return -1
	default:
		return 0
	}
}

func valid(f models.FeatureRow) bool {
	if f.PriceCurrent <= 0 {
		return false
	}
	for _, v := range f.Vector() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
