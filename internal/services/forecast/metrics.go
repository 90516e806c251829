package forecast

import "math"

// MAE computes the mean absolute error.
func MAE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - predicted[i])
	}
	return sum / float64(len(actual))
}

// MSE computes the mean squared error.
func MSE(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - predicted[i]
		sum += d * d
	}
	return sum / float64(len(actual))
}

// R2 computes the coefficient of determination. A constant actual series
// yields NaN.
func R2(actual, predicted []float64) float64 {
	if len(actual) == 0 || len(actual) != len(predicted) {
		return math.NaN()
	}
	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	for i := range actual {
		r := actual[i] - predicted[i]
		ssRes += r * r
		t := actual[i] - mean
		ssTot += t * t
	}
	if ssTot == 0 {
		return math.NaN()
	}
	return 1 - ssRes/ssTot
}

// CrossValidateR2 runs k-fold cross validation over contiguous folds (no
// shuffling, preserving temporal order) and returns the mean and standard
// deviation of the per-fold R² scores. fresh must return an unfitted model.
func CrossValidateR2(X [][]float64, y []float64, k int, fresh func() (Regressor, error)) (mean, std float64, err error) {
	n := len(X)
	if k < 2 || n < 2*k {
		return math.NaN(), math.NaN(), nil
	}

	scores := make([]float64, 0, k)
	foldSize := n / k
	for f := 0; f < k; f++ {
		lo := f * foldSize
		hi := lo + foldSize
		if f == k-1 {
			hi = n
		}

		trainX := make([][]float64, 0, n-(hi-lo))
		trainY := make([]float64, 0, n-(hi-lo))
		for i := 0; i < n; i++ {
			if i >= lo && i < hi {
				continue
			}
			trainX = append(trainX, X[i])
			trainY = append(trainY, y[i])
		}

		m, ferr := fresh()
		if ferr != nil {
			return 0, 0, ferr
		}
		if ferr := m.Fit(trainX, trainY); ferr != nil {
			return 0, 0, ferr
		}

		pred := make([]float64, hi-lo)
		for i := lo; i < hi; i++ {
			pred[i-lo] = m.Predict(X[i])
		}
		scores = append(scores, R2(y[lo:hi], pred))
	}

	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))
	for _, s := range scores {
		d := s - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(scores)))
	return mean, std, nil
}
