package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenWarehouse opens the relational store for derived data (indicators,
// features, models, predictions) and migrates its schema.
func OpenWarehouse(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported warehouse driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	if err := db.AutoMigrate(
		&IndicatorModel{},
		&FeatureModel{},
		&TrainedModelRecord{},
		&PredictionModel{},
	); err != nil {
		return nil, fmt.Errorf("migrate warehouse: %w", err)
	}

	return db, nil
}

// IndicatorModel is the persisted form of models.IndicatorRow. Indicator
// columns are nullable: warm-up NaN values map to NULL, never to 0.
type IndicatorModel struct {
	ID             uint      `gorm:"primaryKey"`
	InstrumentID   string    `gorm:"index:idx_indicator_instrument_date,unique;size:64;not null"`
	Date           time.Time `gorm:"index:idx_indicator_instrument_date,unique;not null"`
	SMA7           *float64
	SMA14          *float64
	SMA30          *float64
	EMA12          *float64
	EMA26          *float64
	RSI14          *float64
	MACD           *float64
	MACDSignal     *float64
	BollingerUpper *float64
	BollingerLower *float64
	Volatility     *float64
}

func (IndicatorModel) TableName() string { return "indicator_rows" }

// FeatureModel is the persisted form of models.FeatureRow.
type FeatureModel struct {
	ID                 uint      `gorm:"primaryKey"`
	InstrumentID       string    `gorm:"index:idx_feature_instrument_date,unique;size:64;not null"`
	Date               time.Time `gorm:"index:idx_feature_instrument_date,unique;not null"`
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
	TrendDirection     int
	SupportLevel       float64
	ResistanceLevel    float64
}

func (FeatureModel) TableName() string { return "feature_rows" }

// TrainedModelRecord is the persisted form of models.TrainedModel.
type TrainedModelRecord struct {
	ID           uint      `gorm:"primaryKey"`
	InstrumentID string    `gorm:"index:idx_model_instrument_horizon,unique;size:64;not null"`
	HorizonDays  int       `gorm:"index:idx_model_instrument_horizon,unique;not null"`
	Kind         string    `gorm:"size:32;not null"`
	Version      string    `gorm:"size:64;not null"`
	Params       []byte    `gorm:"not null"`
	Scaler       []byte
	TestR2       float64
	TrainedAt    time.Time `gorm:"not null"`
}

func (TrainedModelRecord) TableName() string { return "trained_models" }

// PredictionModel is the persisted form of models.Prediction.
type PredictionModel struct {
	ID                 uint      `gorm:"primaryKey"`
	InstrumentID       string    `gorm:"index:idx_prediction_key,unique;size:64;not null"`
	PredictionDate     time.Time `gorm:"index:idx_prediction_key,unique;not null"`
	TargetDate         time.Time `gorm:"index:idx_prediction_key,unique;index;not null"`
	HorizonDays        int       `gorm:"not null"`
	ModelKind          string    `gorm:"size:32;not null"`
	ModelVersion       string    `gorm:"size:64;not null"`
	CurrentPrice       float64
	PredictedPrice     float64
	PriceChangePercent float64
	Confidence         float64
	ActualPrice        *float64
	ErrorPercent       *float64
	CreatedAt          time.Time
}

func (PredictionModel) TableName() string { return "predictions" }
