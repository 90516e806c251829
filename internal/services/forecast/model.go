package forecast

import (
	"encoding/json"
	"fmt"

	"CoinSight/internal/domain/models"
)

// Regressor is a candidate forecast model.
type Regressor interface {
	Kind() models.ModelKind
	Fit(X [][]float64, y []float64) error
	Predict(x []float64) float64
	// Marshal serializes the fitted parameters for the model store.
	Marshal() ([]byte, error)
}

// NewRegressor builds an unfitted candidate of the given kind. Ensemble
// kinds are seeded for reproducible training.
func NewRegressor(kind models.ModelKind, seed int64) (Regressor, error) {
	switch kind {
	case models.ModelLinear:
		return NewLinear(), nil
	case models.ModelRandomForest:
		return NewForest(seed), nil
	case models.ModelGradientBoosting:
		return NewGBRT(seed), nil
	default:
		return nil, fmt.Errorf("unknown model kind: %s", kind)
	}
}

// UnmarshalRegressor restores a persisted model of the given kind.
func UnmarshalRegressor(kind models.ModelKind, params []byte) (Regressor, error) {
	var m Regressor
	switch kind {
	case models.ModelLinear:
		m = &Linear{}
	case models.ModelRandomForest:
		m = &Forest{}
	case models.ModelGradientBoosting:
		m = &GBRT{}
	default:
		return nil, fmt.Errorf("unknown model kind: %s", kind)
	}
	if err := json.Unmarshal(params, m); err != nil {
		return nil, fmt.Errorf("unmarshal %s params: %w", kind, err)
	}
	return m, nil
}
