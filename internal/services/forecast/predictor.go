package forecast

import (
	"fmt"
	"math"
	"time"

	"CoinSight/internal/domain/models"
)

// DefaultConfidence is reported for model kinds without a per-tree variance
// estimate. Heuristic only, not a calibrated interval.
const DefaultConfidence = 0.75

// Predict produces a point forecast from the most recent feature row using a
// persisted model. The normalizer applies only to kinds that trained on
// scaled features.
func Predict(tm models.TrainedModel, latest models.FeatureRow, now time.Time) (models.Prediction, error) {
	model, err := UnmarshalRegressor(tm.Kind, tm.Params)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("predict %s: %w", tm.InstrumentID, err)
	}

	x := latest.Vector()
	if tm.Kind.NeedsScaling() {
		scaler, err := UnmarshalScaler(tm.Scaler)
		if err != nil {
			return models.Prediction{}, fmt.Errorf("predict %s: %w", tm.InstrumentID, err)
		}
		x = scaler.TransformRow(x)
	}

	predicted := model.Predict(x)
	current := latest.PriceCurrent
	if current <= 0 {
		return models.Prediction{}, fmt.Errorf("predict %s: %w: non-positive current price", tm.InstrumentID, models.ErrUpstreamData)
	}

	predictionDate := now.UTC().Truncate(24 * time.Hour)
	return models.Prediction{
		InstrumentID:       tm.InstrumentID,
		PredictionDate:     predictionDate,
		TargetDate:         predictionDate.AddDate(0, 0, tm.HorizonDays),
		HorizonDays:        tm.HorizonDays,
		CurrentPrice:       current,
		PredictedPrice:     predicted,
		PriceChangePercent: (predicted/current - 1) * 100,
		Confidence:         confidence(model, x),
		ModelKind:          tm.Kind,
		ModelVersion:       tm.Version,
	}, nil
}

// confidence derives a [0,1] score from the spread of per-tree predictions
// for forests; other kinds get the fixed default.
func confidence(model Regressor, x []float64) float64 {
	forest, ok := model.(*Forest)
	if !ok {
		return DefaultConfidence
	}
	preds := forest.PredictPerTree(x)
	if len(preds) == 0 {
		return DefaultConfidence
	}

	mean := 0.0
	for _, p := range preds {
		mean += p
	}
	mean /= float64(len(preds))
	if mean == 0 {
		return DefaultConfidence
	}

	variance := 0.0
	for _, p := range preds {
		d := p - mean
		variance += d * d
	}
	variance /= float64(len(preds))

	c := 1 - variance/math.Abs(mean)
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}
