package models

import "time"

// ModelKind identifies a candidate regressor.
type ModelKind string

const (
	ModelLinear           ModelKind = "linear"
	ModelRandomForest     ModelKind = "random_forest"
	ModelGradientBoosting ModelKind = "gradient_boosting"
)

// NeedsScaling reports whether the model kind consumes normalized features.
// Tree ensembles are scale-invariant and train on raw features.
func (k ModelKind) NeedsScaling() bool { return k == ModelLinear }

// SelectionPriority breaks test-R² ties deterministically: higher wins.
func (k ModelKind) SelectionPriority() int {
	switch k {
	case ModelRandomForest:
		return 3
	case ModelGradientBoosting:
		return 2
	case ModelLinear:
		return 1
	default:
		return 0
	}
}

// TrainedModel is the persisted winner of a training run, keyed by
// (InstrumentID, HorizonDays). Replaced wholesale on retrain; read-only
// to the predictor.
type TrainedModel struct {
	InstrumentID string
	HorizonDays  int
	Kind         ModelKind
	Version      string
	Params       []byte // serialized model parameters
	Scaler       []byte // serialized feature normalizer
	TrainedAt    time.Time
	TestR2       float64
}

// ModelMetrics holds held-out and cross-validated scores for one candidate.
type ModelMetrics struct {
	Kind   ModelKind
	MAE    float64
	MSE    float64
	R2     float64
	CVMean float64
	CVStd  float64
}

// TrainingReport summarizes one train run for an (instrument, horizon) pair.
type TrainingReport struct {
	InstrumentID string
	HorizonDays  int
	Samples      int
	TrainRows    int
	TestRows     int
	Candidates   []ModelMetrics
	Selected     ModelKind
	Version      string
}

// Prediction is a point forecast produced by the predictor. ActualPrice and
// ErrorPercent stay nil until the target date's real price is backfilled.
type Prediction struct {
	InstrumentID       string
	PredictionDate     time.Time
	TargetDate         time.Time
	HorizonDays        int
	CurrentPrice       float64
	PredictedPrice     float64
	PriceChangePercent float64
	// Confidence is a heuristic score in [0,1], not a calibrated interval.
	// For forests it reflects variance across the individual trees; other
	// kinds report a fixed default.
	Confidence   float64
	ModelKind    ModelKind
	ModelVersion string
	ActualPrice  *float64
	ErrorPercent *float64
}

// EvaluationReport aggregates prediction accuracy once actuals are known.
type EvaluationReport struct {
	InstrumentID        string
	Predictions         int
	MAE                 float64
	MSE                 float64
	R2                  float64
	DirectionalAccuracy float64
}
