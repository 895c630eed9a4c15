package ml

import (
	"errors"
	"math"
)

var (
	// ErrDimensionMismatch is returned when a vector does not match the
	// weight dimension it is scored against.
	ErrDimensionMismatch = errors.New("vector dimension does not match weights")

	// ErrDegenerateLabels is returned when training data contains only
	// one class.
	ErrDegenerateLabels = errors.New("training labels contain a single class")

	// ErrNoTrainingData is returned when training is attempted on an
	// empty sample set.
	ErrNoTrainingData = errors.New("no training data")
)

// TrainOptions configures logistic regression training.
type TrainOptions struct {
	// LearningRate is the gradient descent step size.
	LearningRate float64
	// Lambda is the L2 regularization strength.
	Lambda float64
	// MaxIterations caps the number of full-batch passes.
	MaxIterations int
	// Tolerance stops training once the loss improvement between
	// iterations drops below it.
	Tolerance float64
	// ClassBalanced weights each sample inversely to its class frequency
	// so a skewed corpus does not drown out the minority class.
	ClassBalanced bool
}

// DefaultTrainOptions returns options that converge on typical email
// corpora within the iteration cap.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		LearningRate:  0.1,
		Lambda:        0.01,
		MaxIterations: 2000,
		Tolerance:     1e-6,
		ClassBalanced: true,
	}
}

// Sigmoid maps a linear score to a probability in (0, 1).
func Sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// Predict returns the phishing probability for a feature vector under a
// linear model. The dimension check is what surfaces artifact mismatches
// before a meaningless score can escape.
func Predict(vec, weights []float64, bias float64) (float64, error) {
	if len(vec) != len(weights) {
		return 0, ErrDimensionMismatch
	}
	z := bias
	for i, w := range weights {
		z += w * vec[i]
	}
	return Sigmoid(z), nil
}

// Train fits logistic regression weights by minimizing L2-regularized
// log-loss with full-batch gradient descent. Labels must be 0 or 1 and
// both classes must be present.
func Train(vectors [][]float64, labels []int, opts TrainOptions) ([]float64, float64, error) {
	if len(vectors) == 0 || len(vectors) != len(labels) {
		return nil, 0, ErrNoTrainingData
	}
	dim := len(vectors[0])
	for _, v := range vectors {
		if len(v) != dim {
			return nil, 0, ErrDimensionMismatch
		}
	}

	var positives int
	for _, y := range labels {
		if y == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return nil, 0, ErrDegenerateLabels
	}

	sampleWeights := make([]float64, len(labels))
	for i, y := range labels {
		sampleWeights[i] = 1.0
		if opts.ClassBalanced {
			n := float64(len(labels))
			if y == 1 {
				sampleWeights[i] = n / (2.0 * float64(positives))
			} else {
				sampleWeights[i] = n / (2.0 * float64(len(labels)-positives))
			}
		}
	}

	weights := make([]float64, dim)
	bias := 0.0
	prevLoss := math.Inf(1)

	gradW := make([]float64, dim)
	for iter := 0; iter < opts.MaxIterations; iter++ {
		for i := range gradW {
			gradW[i] = 0
		}
		gradB := 0.0
		loss := 0.0
		totalWeight := 0.0

		for s, vec := range vectors {
			z := bias
			for i, w := range weights {
				z += w * vec[i]
			}
			p := Sigmoid(z)
			y := float64(labels[s])
			sw := sampleWeights[s]
			totalWeight += sw

			err := p - y
			for i, x := range vec {
				if x != 0 {
					gradW[i] += sw * err * x
				}
			}
			gradB += sw * err
			loss += sw * logLoss(p, y)
		}

		// Mean loss plus the L2 penalty.
		loss /= totalWeight
		var reg float64
		for _, w := range weights {
			reg += w * w
		}
		loss += opts.Lambda * reg

		for i := range weights {
			weights[i] -= opts.LearningRate * (gradW[i]/totalWeight + 2.0*opts.Lambda*weights[i])
		}
		bias -= opts.LearningRate * (gradB / totalWeight)

		if math.Abs(prevLoss-loss) < opts.Tolerance {
			break
		}
		prevLoss = loss
	}

	return weights, bias, nil
}

// logLoss is the negative log-likelihood of label y under probability p,
// clamped away from 0 and 1 to keep the loss finite.
func logLoss(p, y float64) float64 {
	const eps = 1e-12
	p = math.Min(math.Max(p, eps), 1.0-eps)
	if y >= 0.5 {
		return -math.Log(p)
	}
	return -math.Log(1.0 - p)
}
