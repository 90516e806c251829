package forecast

import (
	"fmt"
	"math"
	"time"

	"CoinSight/internal/domain/models"
)

// TrainerConfig holds the batch-training policy knobs.
type TrainerConfig struct {
	// MinSamples aborts training with insufficient-data below this many
	// clean rows.
	MinSamples int
	// TestFraction is the chronological held-out share (last rows).
	TestFraction float64
	CVFolds      int
	Seed         int64
	Candidates   []models.ModelKind
}

// DefaultTrainerConfig mirrors the production policy: 50-row minimum,
// 80/20 chronological split, 5-fold CV, all three candidates.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		MinSamples:   50,
		TestFraction: 0.2,
		CVFolds:      5,
		Seed:         42,
		Candidates: []models.ModelKind{
			models.ModelLinear,
			models.ModelRandomForest,
			models.ModelGradientBoosting,
		},
	}
}

// TrainResult carries the report plus the serialized winner ready for the
// model store.
type TrainResult struct {
	Report models.TrainingReport
	Model  models.TrainedModel
}

// Train fits every candidate on the feature rows against a horizon-shifted
// price target, scores them on the chronological held-out split, and returns
// the winner by test R² (ties broken by fixed model-kind priority).
//
// The target for row t is the current price horizonDays rows later; tail
// rows with no valid shifted target are dropped.
func Train(rows []models.FeatureRow, instrumentID string, horizonDays int, cfg TrainerConfig) (*TrainResult, error) {
	if horizonDays <= 0 {
		return nil, fmt.Errorf("train %s: horizon must be positive, got %d", instrumentID, horizonDays)
	}

	usable := len(rows) - horizonDays
	if usable < cfg.MinSamples {
		have := usable
		if have < 0 {
			have = 0
		}
		return nil, &models.InsufficientDataError{
			InstrumentID: instrumentID,
			Op:           "train",
			Have:         have,
			Need:         cfg.MinSamples,
		}
	}

	X := make([][]float64, usable)
	y := make([]float64, usable)
	for i := 0; i < usable; i++ {
		X[i] = rows[i].Vector()
		y[i] = rows[i+horizonDays].PriceCurrent
	}

	// chronological split: first rows train, last rows test
	trainN := int(float64(usable) * (1 - cfg.TestFraction))
	if trainN <= 0 || trainN >= usable {
		return nil, fmt.Errorf("train %s: degenerate split: %d train of %d", instrumentID, trainN, usable)
	}
	trainX, testX := X[:trainN], X[trainN:]
	trainY, testY := y[:trainN], y[trainN:]

	scaler := &StandardScaler{}
	if err := scaler.Fit(trainX); err != nil {
		return nil, fmt.Errorf("train %s: %w", instrumentID, err)
	}
	scaledTrainX := scaler.Transform(trainX)
	scaledTestX := scaler.Transform(testX)

	report := models.TrainingReport{
		InstrumentID: instrumentID,
		HorizonDays:  horizonDays,
		Samples:      usable,
		TrainRows:    trainN,
		TestRows:     usable - trainN,
	}

	var candidates []fittedCandidate

	for _, kind := range cfg.Candidates {
		m, err := NewRegressor(kind, cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", instrumentID, err)
		}

		fitX, evalX := trainX, testX
		if kind.NeedsScaling() {
			fitX, evalX = scaledTrainX, scaledTestX
		}
		if err := m.Fit(fitX, trainY); err != nil {
			return nil, fmt.Errorf("train %s %s: %w", instrumentID, kind, err)
		}

		pred := make([]float64, len(evalX))
		for i := range evalX {
			pred[i] = m.Predict(evalX[i])
		}

		k := kind
		cvMean, cvStd, err := CrossValidateR2(fitX, trainY, cfg.CVFolds, func() (Regressor, error) {
			return NewRegressor(k, cfg.Seed)
		})
		if err != nil {
			return nil, fmt.Errorf("train %s %s: cross-validate: %w", instrumentID, kind, err)
		}

		candidates = append(candidates, fittedCandidate{
			model: m,
			metrics: models.ModelMetrics{
				Kind:   kind,
				MAE:    MAE(testY, pred),
				MSE:    MSE(testY, pred),
				R2:     R2(testY, pred),
				CVMean: cvMean,
				CVStd:  cvStd,
			},
		})
		report.Candidates = append(report.Candidates, candidates[len(candidates)-1].metrics)
	}

	best := selectBest(candidates)
	if best == nil {
		return nil, fmt.Errorf("train %s: no candidate produced a finite score", instrumentID)
	}

	params, err := best.model.Marshal()
	if err != nil {
		return nil, fmt.Errorf("train %s: marshal model: %w", instrumentID, err)
	}
	scalerBytes, err := scaler.Marshal()
	if err != nil {
		return nil, fmt.Errorf("train %s: marshal scaler: %w", instrumentID, err)
	}

	trainedAt := time.Now().UTC()
	version := fmt.Sprintf("%s-%dd-%s", best.metrics.Kind, horizonDays, trainedAt.Format("20060102150405"))
	report.Selected = best.metrics.Kind
	report.Version = version

	return &TrainResult{
		Report: report,
		Model: models.TrainedModel{
			InstrumentID: instrumentID,
			HorizonDays:  horizonDays,
			Kind:         best.metrics.Kind,
			Version:      version,
			Params:       params,
			Scaler:       scalerBytes,
			TrainedAt:    trainedAt,
			TestR2:       best.metrics.R2,
		},
	}, nil
}

type fittedCandidate struct {
	model   Regressor
	metrics models.ModelMetrics
}

// selectBest maximizes test R²; exact ties fall back to model-kind priority
// so selection is deterministic regardless of candidate order.
func selectBest(candidates []fittedCandidate) *fittedCandidate {
	var best *fittedCandidate
	for i := range candidates {
		c := &candidates[i]
		if math.IsNaN(c.metrics.R2) {
			continue
		}
		if best == nil ||
			c.metrics.R2 > best.metrics.R2 ||
			(c.metrics.R2 == best.metrics.R2 &&
				c.metrics.Kind.SelectionPriority() > best.metrics.Kind.SelectionPriority()) {
			best = c
		}
	}
	return best
}
