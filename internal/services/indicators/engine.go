package indicators

import (
	"math"

	"CoinSight/internal/domain/models"
)

// Window sizes of the fixed indicator set.
const (
	SMAShort  = 7
	SMAMid    = 14
	SMALong   = 30
	EMAFast   = 12
	EMASlow   = 26
	RSIPeriod = 14
	// SignalSpan smooths the MACD line into its signal line.
	SignalSpan = 9
	// BollingerK is the band width in standard deviations.
	BollingerK = 2.0
)

// Compute derives the full indicator set from a time-ordered price series,
// one output row per input row, aligned by date. Windows operate strictly on
// past-and-current values; warm-up positions are NaN.
func Compute(series []models.PricePoint) []models.IndicatorRow {
	n := len(series)
	if n == 0 {
		return nil
	}

	prices := make([]float64, n)
	for i, p := range series {
		prices[i] = p.Price
	}

	sma7 := RollingMean(prices, SMAShort)
	sma14 := RollingMean(prices, SMAMid)
	sma30 := RollingMean(prices, SMALong)
	ema12 := EMA(prices, EMAFast)
	ema26 := EMA(prices, EMASlow)
	rsi := RSI(prices, RSIPeriod)

	macd := make([]float64, n)
	for i := range macd {
		macd[i] = ema12[i] - ema26[i]
	}
	signal := EMA(macd, SignalSpan)

	std14 := RollingStd(prices, SMAMid)

	rows := make([]models.IndicatorRow, n)
	for i := range rows {
		vol := math.NaN()
		if !math.IsNaN(std14[i]) && sma14[i] != 0 {
			vol = std14[i] / sma14[i]
		}
		rows[i] = models.IndicatorRow{
			InstrumentID:   series[i].InstrumentID,
			Date:           series[i].Date(),
			SMA7:           sma7[i],
			SMA14:          sma14[i],
			SMA30:          sma30[i],
			EMA12:          ema12[i],
			EMA26:          ema26[i],
			RSI14:          rsi[i],
			MACD:           macd[i],
			MACDSignal:     signal[i],
			BollingerUpper: sma14[i] + BollingerK*std14[i],
			BollingerLower: sma14[i] - BollingerK*std14[i],
			Volatility:     vol,
		}
	}
	return rows
}

// RollingMean computes the trailing arithmetic mean over window observations.
// Positions before the window fills are NaN.
func RollingMean(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window <= 0 || len(xs) < window {
		return out
	}
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStd computes the trailing sample standard deviation (n-1 divisor)
// over window observations.
func RollingStd(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window <= 1 || len(xs) < window {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		mean := 0.0
		for j := i - window + 1; j <= i; j++ {
			mean += xs[j]
		}
		mean /= float64(window)
		ss := 0.0
		for j := i - window + 1; j <= i; j++ {
			d := xs[j] - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// RollingMin computes the trailing minimum over window observations.
func RollingMin(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window <= 0 || len(xs) < window {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		m := xs[i]
		for j := i - window + 1; j < i; j++ {
			if xs[j] < m {
				m = xs[j]
			}
		}
		out[i] = m
	}
	return out
}

// RollingMax computes the trailing maximum over window observations.
func RollingMax(xs []float64, window int) []float64 {
	out := nanSlice(len(xs))
	if window <= 0 || len(xs) < window {
		return out
	}
	for i := window - 1; i < len(xs); i++ {
		m := xs[i]
		for j := i - window + 1; j < i; j++ {
			if xs[j] > m {
				m = xs[j]
			}
		}
		out[i] = m
	}
	return out
}

// EMA computes the exponential moving average with smoothing 2/(span+1),
// seeded at the first value.
func EMA(xs []float64, span int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RSI computes the relative strength index over period deltas, bounded
// [0,100]. When the average loss over the window is zero the index saturates
// at 100 (pure-gain convention); a fully flat window reports 50.
func RSI(prices []float64, period int) []float64 {
	out := nanSlice(len(prices))
	if period <= 0 || len(prices) <= period {
		return out
	}

	gains := make([]float64, len(prices))
	losses := make([]float64, len(prices))
	for i := 1; i < len(prices); i++ {
		d := prices[i] - prices[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	// rolling means over the trailing `period` deltas
	for i := period; i < len(prices); i++ {
		var avgGain, avgLoss float64
		for j := i - period + 1; j <= i; j++ {
			avgGain += gains[j]
			avgLoss += losses[j]
		}
		avgGain /= float64(period)
		avgLoss /= float64(period)

		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
