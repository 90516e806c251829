package repository

import (
	"context"
	"math"

	"CoinSight/internal/domain/models"

	"gorm.io/gorm"
)

const insertBatchSize = 500

// GormIndicatorStore implements IndicatorStore on the warehouse DB.
type GormIndicatorStore struct {
	db *gorm.DB
}

func NewGormIndicatorStore(db *gorm.DB) *GormIndicatorStore {
	return &GormIndicatorStore{db: db}
}

// ReplaceAll swaps the instrument's indicator rows in one transaction, so
// readers never see a half-replaced series.
func (s *GormIndicatorStore) ReplaceAll(ctx context.Context, instrumentID string, rows []models.IndicatorRow) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("instrument_id = ?", instrumentID).Delete(&IndicatorModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		records := make([]IndicatorModel, len(rows))
		for i, r := range rows {
			records[i] = indicatorToModel(r)
		}
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
	if err != nil {
		return &models.PersistenceError{Op: "replace indicators", Err: err}
	}
	return nil
}

// Latest returns up to limit rows, ascending by date. limit <= 0 means all.
func (s *GormIndicatorStore) Latest(ctx context.Context, instrumentID string, limit int) ([]models.IndicatorRow, error) {
	q := s.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentID).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var records []IndicatorModel
	if err := q.Find(&records).Error; err != nil {
		return nil, &models.PersistenceError{Op: "load indicators", Err: err}
	}

	out := make([]models.IndicatorRow, len(records))
	for i, rec := range records {
		out[len(records)-1-i] = indicatorFromModel(rec)
	}
	return out, nil
}

// nullable maps warm-up NaN values to NULL columns; sqlite would otherwise
// read NaN back as 0 and postgres would hand NaN to json.Marshal downstream.
func nullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func fromNullable(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func indicatorToModel(r models.IndicatorRow) IndicatorModel {
	return IndicatorModel{
		InstrumentID:   r.InstrumentID,
		Date:           r.Date,
		SMA7:           nullable(r.SMA7),
		SMA14:          nullable(r.SMA14),
		SMA30:          nullable(r.SMA30),
		EMA12:          nullable(r.EMA12),
		EMA26:          nullable(r.EMA26),
		RSI14:          nullable(r.RSI14),
		MACD:           nullable(r.MACD),
		MACDSignal:     nullable(r.MACDSignal),
		BollingerUpper: nullable(r.BollingerUpper),
		BollingerLower: nullable(r.BollingerLower),
		Volatility:     nullable(r.Volatility),
	}
}

func indicatorFromModel(rec IndicatorModel) models.IndicatorRow {
	return models.IndicatorRow{
		InstrumentID:   rec.InstrumentID,
		Date:           rec.Date,
		SMA7:           fromNullable(rec.SMA7),
		SMA14:          fromNullable(rec.SMA14),
		SMA30:          fromNullable(rec.SMA30),
		EMA12:          fromNullable(rec.EMA12),
		EMA26:          fromNullable(rec.EMA26),
		RSI14:          fromNullable(rec.RSI14),
		MACD:           fromNullable(rec.MACD),
		MACDSignal:     fromNullable(rec.MACDSignal),
		BollingerUpper: fromNullable(rec.BollingerUpper),
		BollingerLower: fromNullable(rec.BollingerLower),
		Volatility:     fromNullable(rec.Volatility),
	}
}

// GormFeatureStore implements FeatureStore on the warehouse DB.
type GormFeatureStore struct {
	db *gorm.DB
}

func NewGormFeatureStore(db *gorm.DB) *GormFeatureStore {
	return &GormFeatureStore{db: db}
}

func (s *GormFeatureStore) ReplaceAll(ctx context.Context, instrumentID string, rows []models.FeatureRow) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("instrument_id = ?", instrumentID).Delete(&FeatureModel{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		records := make([]FeatureModel, len(rows))
		for i, r := range rows {
			records[i] = featureToModel(r)
		}
		return tx.CreateInBatches(records, insertBatchSize).Error
	})
	if err != nil {
		return &models.PersistenceError{Op: "replace features", Err: err}
	}
	return nil
}

// Series returns the full feature series ascending by date.
func (s *GormFeatureStore) Series(ctx context.Context, instrumentID string) ([]models.FeatureRow, error) {
	var records []FeatureModel
	err := s.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentID).
		Order("date ASC").
		Find(&records).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "load features", Err: err}
	}

	out := make([]models.FeatureRow, len(records))
	for i, rec := range records {
		out[i] = featureFromModel(rec)
	}
	return out, nil
}

// Latest returns up to limit rows, ascending by date. limit <= 0 means all.
func (s *GormFeatureStore) Latest(ctx context.Context, instrumentID string, limit int) ([]models.FeatureRow, error) {
	q := s.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentID).
		Order("date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var records []FeatureModel
	if err := q.Find(&records).Error; err != nil {
		return nil, &models.PersistenceError{Op: "load features", Err: err}
	}

	out := make([]models.FeatureRow, len(records))
	for i, rec := range records {
		out[len(records)-1-i] = featureFromModel(rec)
	}
	return out, nil
}

func featureToModel(r models.FeatureRow) FeatureModel {
	return FeatureModel{
		InstrumentID:       r.InstrumentID,
		Date:               r.Date,
		PriceCurrent:       r.PriceCurrent,
		Price1dAgo:         r.Price1dAgo,
		Price7dAgo:         r.Price7dAgo,
		Price30dAgo:        r.Price30dAgo,
		VolumeAvg7d:        r.VolumeAvg7d,
		VolumeAvg30d:       r.VolumeAvg30d,
		Volatility7d:       r.Volatility7d,
		Volatility30d:      r.Volatility30d,
		RSI14:              r.RSI14,
		MACDSignalStrength: r.MACDSignalStrength,
		TrendDirection:     r.TrendDirection,
		SupportLevel:       r.SupportLevel,
		ResistanceLevel:    r.ResistanceLevel,
	}
}

func featureFromModel(rec FeatureModel) models.FeatureRow {
	return models.FeatureRow{
		InstrumentID:       rec.InstrumentID,
		Date:               rec.Date,
		PriceCurrent:       rec.PriceCurrent,
		Price1dAgo:         rec.Price1dAgo,
		Price7dAgo:         rec.Price7dAgo,
		Price30dAgo:        rec.Price30dAgo,
		VolumeAvg7d:        rec.VolumeAvg7d,
		VolumeAvg30d:       rec.VolumeAvg30d,
		Volatility7d:       rec.Volatility7d,
		Volatility30d:      rec.Volatility30d,
		RSI14:              rec.RSI14,
		MACDSignalStrength: rec.MACDSignalStrength,
		TrendDirection:     rec.TrendDirection,
		SupportLevel:       rec.SupportLevel,
		ResistanceLevel:    rec.ResistanceLevel,
	}
}
