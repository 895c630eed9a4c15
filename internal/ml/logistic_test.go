package ml

import (
	"errors"
	"math"
	"testing"
)

// separableSet builds a linearly separable toy corpus: positives live at
// x=1, negatives at x=-1.
func separableSet(n int) ([][]float64, []int) {
	vectors := make([][]float64, 0, 2*n)
	labels := make([]int, 0, 2*n)
	for i := 0; i < n; i++ {
		vectors = append(vectors, []float64{1, 0.5})
		labels = append(labels, 1)
		vectors = append(vectors, []float64{-1, -0.5})
		labels = append(labels, 0)
	}
	return vectors, labels
}

func TestTrainSeparatesClasses(t *testing.T) {
	vectors, labels := separableSet(20)

	weights, bias, err := Train(vectors, labels, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	pPos, err := Predict([]float64{1, 0.5}, weights, bias)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	pNeg, err := Predict([]float64{-1, -0.5}, weights, bias)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}

	if pPos <= 0.5 {
		t.Fatalf("positive example scored %v, expected > 0.5", pPos)
	}
	if pNeg >= 0.5 {
		t.Fatalf("negative example scored %v, expected < 0.5", pNeg)
	}
}

func TestTrainDeterministic(t *testing.T) {
	vectors, labels := separableSet(10)

	w1, b1, err := Train(vectors, labels, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}
	w2, b2, err := Train(vectors, labels, DefaultTrainOptions())
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	if b1 != b2 {
		t.Fatalf("bias differs between identical runs: %v vs %v", b1, b2)
	}
	for i := range w1 {
		if w1[i] != w2[i] {
			t.Fatalf("weight %d differs between identical runs: %v vs %v", i, w1[i], w2[i])
		}
	}
}

func TestTrainDegenerateLabels(t *testing.T) {
	vectors := [][]float64{{1}, {2}, {3}}

	_, _, err := Train(vectors, []int{1, 1, 1}, DefaultTrainOptions())
	if !errors.Is(err, ErrDegenerateLabels) {
		t.Fatalf("expected ErrDegenerateLabels for all-positive labels, got %v", err)
	}
	_, _, err = Train(vectors, []int{0, 0, 0}, DefaultTrainOptions())
	if !errors.Is(err, ErrDegenerateLabels) {
		t.Fatalf("expected ErrDegenerateLabels for all-negative labels, got %v", err)
	}
}

func TestTrainNoData(t *testing.T) {
	_, _, err := Train(nil, nil, DefaultTrainOptions())
	if !errors.Is(err, ErrNoTrainingData) {
		t.Fatalf("expected ErrNoTrainingData, got %v", err)
	}
}

func TestTrainRaggedVectors(t *testing.T) {
	_, _, err := Train([][]float64{{1, 2}, {1}}, []int{1, 0}, DefaultTrainOptions())
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestTrainClassBalancedHandlesSkew(t *testing.T) {
	// 1 positive against 50 negatives. Without balancing the single
	// positive is drowned out; with balancing it must still score high.
	vectors := [][]float64{{1, 1}}
	labels := []int{1}
	for i := 0; i < 50; i++ {
		vectors = append(vectors, []float64{-1, -1})
		labels = append(labels, 0)
	}

	opts := DefaultTrainOptions()
	opts.ClassBalanced = true
	weights, bias, err := Train(vectors, labels, opts)
	if err != nil {
		t.Fatalf("training failed: %v", err)
	}

	p, err := Predict([]float64{1, 1}, weights, bias)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	if p <= 0.5 {
		t.Fatalf("minority class example scored %v, expected > 0.5", p)
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	_, err := Predict([]float64{1, 2, 3}, []float64{1, 2}, 0)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestPredictRange(t *testing.T) {
	for _, vec := range [][]float64{{100, 100}, {-100, -100}, {0, 0}} {
		p, err := Predict(vec, []float64{5, 5}, 0)
		if err != nil {
			t.Fatalf("predict failed: %v", err)
		}
		if p < 0 || p > 1 {
			t.Fatalf("probability %v outside [0, 1]", p)
		}
	}
}

func TestSigmoid(t *testing.T) {
	if s := Sigmoid(0); math.Abs(s-0.5) > 1e-12 {
		t.Fatalf("expected sigmoid(0) = 0.5, got %v", s)
	}
	if s := Sigmoid(50); s <= 0.99 {
		t.Fatalf("expected sigmoid(50) near 1, got %v", s)
	}
	if s := Sigmoid(-50); s >= 0.01 {
		t.Fatalf("expected sigmoid(-50) near 0, got %v", s)
	}
}
