package forecast

import (
	"encoding/json"
	"fmt"
	"math"
)

// StandardScaler normalizes each feature column to zero mean and unit
// variance. Fitted on the training split only and persisted alongside the
// winning model.
type StandardScaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// Fit computes per-column mean and standard deviation.
func (s *StandardScaler) Fit(X [][]float64) error {
	if len(X) == 0 || len(X[0]) == 0 {
		return fmt.Errorf("scaler fit: empty matrix")
	}
	cols := len(X[0])
	s.Mean = make([]float64, cols)
	s.Std = make([]float64, cols)

	for j := 0; j < cols; j++ {
		sum := 0.0
		for i := range X {
			sum += X[i][j]
		}
		mean := sum / float64(len(X))
		ss := 0.0
		for i := range X {
			d := X[i][j] - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(len(X)))
		if std == 0 {
			// constant column: pass through unchanged
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return nil
}

// Transform returns a normalized copy of X.
func (s *StandardScaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = s.TransformRow(X[i])
	}
	return out
}

// TransformRow normalizes a single feature vector.
func (s *StandardScaler) TransformRow(x []float64) []float64 {
	out := make([]float64, len(x))
	for j := range x {
		out[j] = (x[j] - s.Mean[j]) / s.Std[j]
	}
	return out
}

// Marshal serializes the fitted scaler.
func (s *StandardScaler) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalScaler restores a persisted scaler.
func UnmarshalScaler(b []byte) (*StandardScaler, error) {
	var s StandardScaler
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshal scaler: %w", err)
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Std) {
		return nil, fmt.Errorf("unmarshal scaler: malformed dimensions")
	}
	return &s, nil
}
