package forecast

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"CoinSight/internal/domain/models"
)

// Linear is a ridge-regularized least-squares regressor. It expects
// normalized features; the trainer pairs it with a StandardScaler.
type Linear struct {
	// Weights holds the intercept at index 0 followed by one coefficient
	// per feature.
	Weights []float64 `json:"weights"`
	Lambda  float64   `json:"lambda"`
}

// NewLinear creates an unfitted ridge regressor with a small stabilizing
// penalty.
func NewLinear() *Linear {
	return &Linear{Lambda: 1e-6}
}

func (m *Linear) Kind() models.ModelKind { return models.ModelLinear }

// Fit solves the regularized normal equations (XᵀX + λI)w = Xᵀy with an
// unpenalized intercept column.
func (m *Linear) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("linear fit: bad shape: %d rows, %d targets", len(X), len(y))
	}
	rows := len(X)
	cols := len(X[0]) + 1

	a := mat.NewDense(rows, cols, nil)
	for i, row := range X {
		a.Set(i, 0, 1)
		for j, v := range row {
			a.Set(i, j+1, v)
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	for j := 1; j < cols; j++ {
		ata.Set(j, j, ata.At(j, j)+m.Lambda)
	}

	var aty mat.VecDense
	aty.MulVec(a.T(), mat.NewVecDense(rows, y))

	var w mat.VecDense
	if err := w.SolveVec(&ata, &aty); err != nil {
		return fmt.Errorf("linear fit: solve: %w", err)
	}

	m.Weights = make([]float64, cols)
	for j := 0; j < cols; j++ {
		m.Weights[j] = w.AtVec(j)
	}
	return nil
}

func (m *Linear) Predict(x []float64) float64 {
	if len(m.Weights) == 0 {
		return 0
	}
	out := m.Weights[0]
	for j, v := range x {
		if j+1 >= len(m.Weights) {
			break
		}
		out += m.Weights[j+1] * v
	}
	return out
}

func (m *Linear) Marshal() ([]byte, error) { return json.Marshal(m) }
