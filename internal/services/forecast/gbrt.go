package forecast

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"CoinSight/internal/domain/models"
)

// GBRT is a gradient-boosted ensemble of shallow regression trees fit to
// squared-error residuals. Trains on raw features.
type GBRT struct {
	Base         float64          `json:"base"`
	Trees        []regressionTree `json:"trees"`
	NumTrees     int              `json:"num_trees"`
	MaxDepth     int              `json:"max_depth"`
	MinLeaf      int              `json:"min_leaf"`
	LearningRate float64          `json:"learning_rate"`
	Subsample    float64          `json:"subsample"`
	Seed         int64            `json:"seed"`
}

// NewGBRT creates an unfitted boosted ensemble, seeded for reproducible
// subsampling.
func NewGBRT(seed int64) *GBRT {
	return &GBRT{
		NumTrees:     100,
		MaxDepth:     3,
		MinLeaf:      2,
		LearningRate: 0.1,
		Subsample:    0.9,
		Seed:         seed,
	}
}

func (m *GBRT) Kind() models.ModelKind { return models.ModelGradientBoosting }

func (m *GBRT) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("gbrt fit: bad shape: %d rows, %d targets", len(X), len(y))
	}
	n := len(X)
	rng := rand.New(rand.NewSource(m.Seed))
	p := treeParams{maxDepth: m.MaxDepth, minLeaf: m.MinLeaf, minSamples: 2 * m.MinLeaf}

	m.Base = 0
	for _, v := range y {
		m.Base += v
	}
	m.Base /= float64(n)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = m.Base
	}
	resid := make([]float64, n)

	m.Trees = make([]regressionTree, 0, m.NumTrees)
	sampleSize := int(m.Subsample * float64(n))
	if sampleSize < 2 {
		sampleSize = n
	}

	for t := 0; t < m.NumTrees; t++ {
		for i := range resid {
			resid[i] = y[i] - pred[i]
		}
		idx := rng.Perm(n)[:sampleSize]
		tree := fitTree(X, resid, idx, p)
		m.Trees = append(m.Trees, tree)
		for i := range pred {
			pred[i] += m.LearningRate * tree.predict(X[i])
		}
	}
	return nil
}

func (m *GBRT) Predict(x []float64) float64 {
	out := m.Base
	for i := range m.Trees {
		out += m.LearningRate * m.Trees[i].predict(x)
	}
	return out
}

func (m *GBRT) Marshal() ([]byte, error) { return json.Marshal(m) }
