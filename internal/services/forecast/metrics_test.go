package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMAE(t *testing.T) {
	got := MAE([]float64{1, 2, 3}, []float64{2, 2, 5})
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestMSE(t *testing.T) {
	got := MSE([]float64{1, 2, 3}, []float64{2, 2, 5})
	assert.InDelta(t, 5.0/3.0, got, 1e-9)
}

func TestR2_PerfectFit(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.0, R2(actual, actual), 1e-9)
}

func TestR2_MeanPredictor(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	pred := []float64{2.5, 2.5, 2.5, 2.5}
	assert.InDelta(t, 0.0, R2(actual, pred), 1e-9)
}

func TestCrossValidateR2_ContiguousFolds(t *testing.T) {
	// y = 2*x, trivially learnable by the linear model
	n := 100
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		X[i] = []float64{float64(i)}
		y[i] = 2 * float64(i)
	}

	mean, std, err := CrossValidateR2(X, y, 5, func() (Regressor, error) {
		return NewRegressor("linear", 42)
	})
	require.NoError(t, err)
	assert.Greater(t, mean, 0.9)
	assert.False(t, math.IsNaN(std))
}

func TestScaler_RoundTrip(t *testing.T) {
	X := [][]float64{{1, 100}, {2, 200}, {3, 300}}

	s := &StandardScaler{}
	require.NoError(t, s.Fit(X))

	b, err := s.Marshal()
	require.NoError(t, err)
	restored, err := UnmarshalScaler(b)
	require.NoError(t, err)

	orig := s.TransformRow([]float64{2, 200})
	back := restored.TransformRow([]float64{2, 200})
	require.Len(t, back, 2)
	for i := range orig {
		assert.InDelta(t, orig[i], back[i], 1e-12)
		// the column mean scales to zero
		assert.InDelta(t, 0.0, back[i], 1e-12)
	}
}
