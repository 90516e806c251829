package forecast

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"CoinSight/internal/domain/models"
)

// Forest is a bagged ensemble of regression trees. Trains on raw features;
// per-tree predictions feed the confidence heuristic.
type Forest struct {
	Trees    []regressionTree `json:"trees"`
	NumTrees int              `json:"num_trees"`
	MaxDepth int              `json:"max_depth"`
	MinLeaf  int              `json:"min_leaf"`
	Seed     int64            `json:"seed"`
}

// NewForest creates an unfitted forest with 100 trees, seeded for
// reproducible bootstrap sampling.
func NewForest(seed int64) *Forest {
	return &Forest{NumTrees: 100, MaxDepth: 8, MinLeaf: 2, Seed: seed}
}

func (m *Forest) Kind() models.ModelKind { return models.ModelRandomForest }

func (m *Forest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("forest fit: bad shape: %d rows, %d targets", len(X), len(y))
	}
	rng := rand.New(rand.NewSource(m.Seed))
	p := treeParams{maxDepth: m.MaxDepth, minLeaf: m.MinLeaf, minSamples: 2 * m.MinLeaf}

	m.Trees = make([]regressionTree, 0, m.NumTrees)
	n := len(X)
	for t := 0; t < m.NumTrees; t++ {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		m.Trees = append(m.Trees, fitTree(X, y, idx, p))
	}
	return nil
}

func (m *Forest) Predict(x []float64) float64 {
	if len(m.Trees) == 0 {
		return 0
	}
	sum := 0.0
	for i := range m.Trees {
		sum += m.Trees[i].predict(x)
	}
	return sum / float64(len(m.Trees))
}

// PredictPerTree returns every tree's prediction, used for the
// variance-based confidence score.
func (m *Forest) PredictPerTree(x []float64) []float64 {
	out := make([]float64, len(m.Trees))
	for i := range m.Trees {
		out[i] = m.Trees[i].predict(x)
	}
	return out
}

func (m *Forest) Marshal() ([]byte, error) { return json.Marshal(m) }
