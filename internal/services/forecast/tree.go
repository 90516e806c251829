package forecast

import (
	"math"
	"sort"
)

// treeNode is one node of a serialized regression tree. Leaf nodes have
// Left == -1.
type treeNode struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Value     float64 `json:"v"`
}

// regressionTree is a CART-style tree minimizing within-node variance.
type regressionTree struct {
	Nodes []treeNode `json:"nodes"`
}

type treeParams struct {
	maxDepth   int
	minLeaf    int
	minSamples int
}

// fitTree grows a tree over the sample indices idx.
func fitTree(X [][]float64, y []float64, idx []int, p treeParams) regressionTree {
	t := regressionTree{}
	t.grow(X, y, idx, 0, p)
	return t
}

// grow appends a node for idx and returns its index in Nodes.
func (t *regressionTree) grow(X [][]float64, y []float64, idx []int, depth int, p treeParams) int {
	node := treeNode{Left: -1, Right: -1, Value: meanAt(y, idx)}
	self := len(t.Nodes)
	t.Nodes = append(t.Nodes, node)

	if depth >= p.maxDepth || len(idx) < p.minSamples {
		return self
	}

	feat, thr, ok := bestSplit(X, y, idx, p.minLeaf)
	if !ok {
		return self
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feat] <= thr {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minLeaf || len(right) < p.minLeaf {
		return self
	}

	t.Nodes[self].Feature = feat
	t.Nodes[self].Threshold = thr
	t.Nodes[self].Left = t.grow(X, y, left, depth+1, p)
	t.Nodes[self].Right = t.grow(X, y, right, depth+1, p)
	return self
}

func (t *regressionTree) predict(x []float64) float64 {
	if len(t.Nodes) == 0 {
		return 0
	}
	i := 0
	for t.Nodes[i].Left != -1 {
		if x[t.Nodes[i].Feature] <= t.Nodes[i].Threshold {
			i = t.Nodes[i].Left
		} else {
			i = t.Nodes[i].Right
		}
	}
	return t.Nodes[i].Value
}

// bestSplit scans every feature for the threshold with the largest reduction
// in sum of squared errors, using sorted order and prefix sums.
func bestSplit(X [][]float64, y []float64, idx []int, minLeaf int) (int, float64, bool) {
	n := len(idx)
	if n < 2*minLeaf {
		return 0, 0, false
	}

	bestGain := 0.0
	bestFeat, bestThr := -1, 0.0

	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	parentSSE := totalSq - total*total/float64(n)

	order := make([]int, n)
	for f := 0; f < len(X[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][f] < X[order[b]][f] })

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			i := order[k]
			leftSum += y[i]
			leftSq += y[i] * y[i]

			// only split between distinct feature values
			if X[order[k]][f] == X[order[k+1]][f] {
				continue
			}
			nl, nr := k+1, n-k-1
			if nl < minLeaf || nr < minLeaf {
				continue
			}
			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(nl)) +
				(rightSq - rightSum*rightSum/float64(nr))
			gain := parentSSE - sse
			if gain > bestGain {
				bestGain = gain
				bestFeat = f
				bestThr = (X[order[k]][f] + X[order[k+1]][f]) / 2
			}
		}
	}

	if bestFeat < 0 || bestGain <= 1e-12 {
		return 0, 0, false
	}
	return bestFeat, bestThr, true
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}
