package models

import (
	"encoding/json"
	"math"
	"time"
)

// PricePoint is one observation of an instrument's market state.
// Uniquely keyed by (InstrumentID, Timestamp); written once by ingestion
// and never updated afterwards.
type PricePoint struct {
	InstrumentID string
	Timestamp    time.Time
	Price        float64
	MarketCap    float64
	Volume       float64
}

// Date returns the UTC calendar date of the observation.
func (p PricePoint) Date() time.Time {
	return p.Timestamp.UTC().Truncate(24 * time.Hour)
}

// Ticker is a realtime price update from a streaming source.
type Ticker struct {
	InstrumentID string
	Timestamp    int64 // unix seconds
	Price        float64
	Volume       float64
}

// IndicatorRow holds the technical indicators derived from the price series
// up to and including Date. One row per (instrument, date); recomputed
// wholesale whenever the source series changes.
//
// Warm-up values (e.g. SMA30 before 30 observations exist) are NaN.
type IndicatorRow struct {
	InstrumentID   string
	Date           time.Time
	SMA7           float64
	SMA14          float64
	SMA30          float64
	EMA12          float64
	EMA26          float64
	RSI14          float64
	MACD           float64
	MACDSignal     float64
	BollingerUpper float64
	BollingerLower float64
	Volatility     float64
}

// indicatorRowJSON mirrors IndicatorRow with nullable values. encoding/json
// rejects NaN, so warm-up values cross the wire (and the cache) as null.
type indicatorRowJSON struct {
	InstrumentID   string    `json:"instrument_id"`
	Date           time.Time `json:"date"`
	SMA7           *float64  `json:"sma_7"`
	SMA14          *float64  `json:"sma_14"`
	SMA30          *float64  `json:"sma_30"`
	EMA12          *float64  `json:"ema_12"`
	EMA26          *float64  `json:"ema_26"`
	RSI14          *float64  `json:"rsi_14"`
	MACD           *float64  `json:"macd"`
	MACDSignal     *float64  `json:"macd_signal"`
	BollingerUpper *float64  `json:"bollinger_upper"`
	BollingerLower *float64  `json:"bollinger_lower"`
	Volatility     *float64  `json:"volatility"`
}

func optional(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func (r IndicatorRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(indicatorRowJSON{
		InstrumentID:   r.InstrumentID,
		Date:           r.Date,
		SMA7:           optional(r.SMA7),
		SMA14:          optional(r.SMA14),
		SMA30:          optional(r.SMA30),
		EMA12:          optional(r.EMA12),
		EMA26:          optional(r.EMA26),
		RSI14:          optional(r.RSI14),
		MACD:           optional(r.MACD),
		MACDSignal:     optional(r.MACDSignal),
		BollingerUpper: optional(r.BollingerUpper),
		BollingerLower: optional(r.BollingerLower),
		Volatility:     optional(r.Volatility),
	})
}

func (r *IndicatorRow) UnmarshalJSON(data []byte) error {
	var aux indicatorRowJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = IndicatorRow{
		InstrumentID:   aux.InstrumentID,
		Date:           aux.Date,
		SMA7:           orNaN(aux.SMA7),
		SMA14:          orNaN(aux.SMA14),
		SMA30:          orNaN(aux.SMA30),
		EMA12:          orNaN(aux.EMA12),
		EMA26:          orNaN(aux.EMA26),
		RSI14:          orNaN(aux.RSI14),
		MACD:           orNaN(aux.MACD),
		MACDSignal:     orNaN(aux.MACDSignal),
		BollingerUpper: orNaN(aux.BollingerUpper),
		BollingerLower: orNaN(aux.BollingerLower),
		Volatility:     orNaN(aux.Volatility),
	}
	return nil
}

// FeatureRow is the flat per-date feature vector fed to the forecast models.
// Rows lacking full lag history are dropped by the builder, never nulled.
type FeatureRow struct {
	InstrumentID       string
	Date               time.Time
	PriceCurrent       float64
	Price1dAgo         float64
	Price7dAgo         float64
	Price30dAgo        float64
	VolumeAvg7d        float64
	VolumeAvg30d       float64
	Volatility7d       float64
	Volatility30d      float64
	RSI14              float64
	MACDSignalStrength float64
	TrendDirection     int // -1 down, 0 sideways, 1 up
	SupportLevel       float64
	ResistanceLevel    float64
}

// Vector returns the feature values in the fixed model-input order.
func (f FeatureRow) Vector() []float64 {
	return []float64{
		f.Price1dAgo,
		f.Price7dAgo,
		f.Price30dAgo,
		f.VolumeAvg7d,
		f.VolumeAvg30d,
		f.Volatility7d,
		f.Volatility30d,
		f.RSI14,
		f.MACDSignalStrength,
		float64(f.TrendDirection),
		f.SupportLevel,
		f.ResistanceLevel,
	}
}

// FeatureNames lists the model-input columns in Vector order.
func FeatureNames() []string {
	return []string{
		"price_1d_ago", "price_7d_ago", "price_30d_ago",
		"volume_avg_7d", "volume_avg_30d",
		"volatility_7d", "volatility_30d",
		"rsi_14", "macd_signal_strength", "trend_direction",
		"support_level", "resistance_level",
	}
}
