package repository

import (
	"context"
	"errors"
	"time"

	"CoinSight/internal/domain/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormModelStore implements ModelStore on the warehouse DB.
type GormModelStore struct {
	db *gorm.DB
}

func NewGormModelStore(db *gorm.DB) *GormModelStore {
	return &GormModelStore{db: db}
}

// Put upserts on (instrument_id, horizon_days). The single-statement upsert
// keeps the replace atomic: concurrent readers see the old model or the new
// one, never a mix.
func (s *GormModelStore) Put(ctx context.Context, m models.TrainedModel) error {
	rec := TrainedModelRecord{
		InstrumentID: m.InstrumentID,
		HorizonDays:  m.HorizonDays,
		Kind:         string(m.Kind),
		Version:      m.Version,
		Params:       m.Params,
		Scaler:       m.Scaler,
		TestR2:       m.TestR2,
		TrainedAt:    m.TrainedAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "instrument_id"}, {Name: "horizon_days"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "version", "params", "scaler", "test_r2", "trained_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return &models.PersistenceError{Op: "store model", Err: err}
	}
	return nil
}

func (s *GormModelStore) Get(ctx context.Context, instrumentID string, horizonDays int) (models.TrainedModel, error) {
	var rec TrainedModelRecord
	err := s.db.WithContext(ctx).
		Where("instrument_id = ? AND horizon_days = ?", instrumentID, horizonDays).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TrainedModel{}, &models.ModelNotFoundError{InstrumentID: instrumentID, HorizonDays: horizonDays}
	}
	if err != nil {
		return models.TrainedModel{}, &models.PersistenceError{Op: "load model", Err: err}
	}
	return models.TrainedModel{
		InstrumentID: rec.InstrumentID,
		HorizonDays:  rec.HorizonDays,
		Kind:         models.ModelKind(rec.Kind),
		Version:      rec.Version,
		Params:       rec.Params,
		Scaler:       rec.Scaler,
		TrainedAt:    rec.TrainedAt,
		TestR2:       rec.TestR2,
	}, nil
}

func (s *GormModelStore) Exists(ctx context.Context, instrumentID string, horizonDays int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&TrainedModelRecord{}).
		Where("instrument_id = ? AND horizon_days = ?", instrumentID, horizonDays).
		Count(&count).Error
	if err != nil {
		return false, &models.PersistenceError{Op: "check model", Err: err}
	}
	return count > 0, nil
}

// GormPredictionStore implements PredictionStore on the warehouse DB.
type GormPredictionStore struct {
	db *gorm.DB
}

func NewGormPredictionStore(db *gorm.DB) *GormPredictionStore {
	return &GormPredictionStore{db: db}
}

// Append records a prediction. Re-predicting the same (instrument,
// prediction date, target date) is a no-op so repeated runs stay idempotent.
func (s *GormPredictionStore) Append(ctx context.Context, p models.Prediction) error {
	rec := PredictionModel{
		InstrumentID:       p.InstrumentID,
		PredictionDate:     p.PredictionDate,
		TargetDate:         p.TargetDate,
		HorizonDays:        p.HorizonDays,
		ModelKind:          string(p.ModelKind),
		ModelVersion:       p.ModelVersion,
		CurrentPrice:       p.CurrentPrice,
		PredictedPrice:     p.PredictedPrice,
		PriceChangePercent: p.PriceChangePercent,
		Confidence:         p.Confidence,
		ActualPrice:        p.ActualPrice,
		ErrorPercent:       p.ErrorPercent,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "instrument_id"}, {Name: "prediction_date"}, {Name: "target_date"}},
		DoNothing: true,
	}).Create(&rec).Error
	if err != nil {
		return &models.PersistenceError{Op: "store prediction", Err: err}
	}
	return nil
}

// Query returns all predictions for an instrument, oldest first.
func (s *GormPredictionStore) Query(ctx context.Context, instrumentID string) ([]models.Prediction, error) {
	var records []PredictionModel
	err := s.db.WithContext(ctx).
		Where("instrument_id = ?", instrumentID).
		Order("prediction_date ASC, target_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "load predictions", Err: err}
	}
	return predictionsFromModels(records), nil
}

func (s *GormPredictionStore) Unresolved(ctx context.Context, instrumentID string, before time.Time) ([]models.Prediction, error) {
	var records []PredictionModel
	err := s.db.WithContext(ctx).
		Where("instrument_id = ? AND actual_price IS NULL AND target_date <= ?", instrumentID, before).
		Order("target_date ASC").
		Find(&records).Error
	if err != nil {
		return nil, &models.PersistenceError{Op: "load unresolved predictions", Err: err}
	}
	return predictionsFromModels(records), nil
}

func (s *GormPredictionStore) SetActual(ctx context.Context, instrumentID string, predictionDate, targetDate time.Time, actual, errorPct float64) error {
	err := s.db.WithContext(ctx).Model(&PredictionModel{}).
		Where("instrument_id = ? AND prediction_date = ? AND target_date = ?", instrumentID, predictionDate, targetDate).
		Updates(map[string]interface{}{
			"actual_price":  actual,
			"error_percent": errorPct,
		}).Error
	if err != nil {
		return &models.PersistenceError{Op: "resolve prediction", Err: err}
	}
	return nil
}

func predictionsFromModels(records []PredictionModel) []models.Prediction {
	out := make([]models.Prediction, len(records))
	for i, rec := range records {
		out[i] = models.Prediction{
			InstrumentID:       rec.InstrumentID,
			PredictionDate:     rec.PredictionDate,
			TargetDate:         rec.TargetDate,
			HorizonDays:        rec.HorizonDays,
			CurrentPrice:       rec.CurrentPrice,
			PredictedPrice:     rec.PredictedPrice,
			PriceChangePercent: rec.PriceChangePercent,
			Confidence:         rec.Confidence,
			ModelKind:          models.ModelKind(rec.ModelKind),
			ModelVersion:       rec.ModelVersion,
			ActualPrice:        rec.ActualPrice,
			ErrorPercent:       rec.ErrorPercent,
		}
	}
	return out
}
