package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// CrossValidate runs k-fold cross-validation over the sample set and
// returns the mean and standard deviation of per-fold accuracy. A fold
// whose training portion is degenerate fails the whole validation: an
// unstable split is exactly what cross-validation exists to detect.
func CrossValidate(vectors [][]float64, labels []int, k int, opts TrainOptions, threshold float64, seed int64) (float64, float64, error) {
	if k < 2 {
		return 0, 0, fmt.Errorf("cross-validation requires at least 2 folds, got %d", k)
	}
	if len(vectors) < k {
		return 0, 0, fmt.Errorf("cannot split %d samples into %d folds", len(vectors), k)
	}

	idx := rand.New(rand.NewSource(seed)).Perm(len(vectors))

	scores := make([]float64, 0, k)
	foldSize := len(vectors) / k
	for fold := 0; fold < k; fold++ {
		lo := fold * foldSize
		hi := lo + foldSize
		if fold == k-1 {
			hi = len(vectors)
		}

		var trainVecs [][]float64
		var trainLabels []int
		var testVecs [][]float64
		var testLabels []int
		for pos, sample := range idx {
			if pos >= lo && pos < hi {
				testVecs = append(testVecs, vectors[sample])
				testLabels = append(testLabels, labels[sample])
			} else {
				trainVecs = append(trainVecs, vectors[sample])
				trainLabels = append(trainLabels, labels[sample])
			}
		}

		weights, bias, err := Train(trainVecs, trainLabels, opts)
		if err != nil {
			return 0, 0, fmt.Errorf("fold %d: %w", fold, err)
		}

		probs := make([]float64, len(testVecs))
		for i, vec := range testVecs {
			p, err := Predict(vec, weights, bias)
			if err != nil {
				return 0, 0, fmt.Errorf("fold %d: %w", fold, err)
			}
			probs[i] = p
		}
		scores = append(scores, Evaluate(probs, testLabels, threshold).Accuracy)
	}

	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(scores))

	return mean, math.Sqrt(variance), nil
}
