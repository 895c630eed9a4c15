package ml

import "sort"

// ConfusionMatrix counts prediction outcomes against true labels.
type ConfusionMatrix struct {
	TruePositives  int `json:"true_positives"`
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Metrics holds the evaluation results for a trained model.
type Metrics struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	AUC       float64         `json:"auc_roc"`
	Confusion ConfusionMatrix `json:"confusion_matrix"`
	CVMean    float64         `json:"cv_mean,omitempty"`
	CVStd     float64         `json:"cv_std,omitempty"`
}

// Evaluate computes classification metrics for predicted probabilities
// against true labels at the given decision threshold.
func Evaluate(probs []float64, labels []int, threshold float64) Metrics {
	var m Metrics
	if len(probs) == 0 || len(probs) != len(labels) {
		return m
	}

	for i, p := range probs {
		predicted := p >= threshold
		actual := labels[i] == 1
		switch {
		case predicted && actual:
			m.Confusion.TruePositives++
		case predicted && !actual:
			m.Confusion.FalsePositives++
		case !predicted && actual:
			m.Confusion.FalseNegatives++
		default:
			m.Confusion.TrueNegatives++
		}
	}

	c := m.Confusion
	total := c.TruePositives + c.TrueNegatives + c.FalsePositives + c.FalseNegatives
	m.Accuracy = float64(c.TruePositives+c.TrueNegatives) / float64(total)
	if c.TruePositives+c.FalsePositives > 0 {
		m.Precision = float64(c.TruePositives) / float64(c.TruePositives+c.FalsePositives)
	}
	if c.TruePositives+c.FalseNegatives > 0 {
		m.Recall = float64(c.TruePositives) / float64(c.TruePositives+c.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2.0 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.AUC = ROCAUC(probs, labels)
	return m
}

// ROCAUC computes the area under the ROC curve using the rank statistic
// equivalent to sweeping every threshold, with tied probabilities
// receiving their average rank.
func ROCAUC(probs []float64, labels []int) float64 {
	n := len(probs)
	if n == 0 || n != len(labels) {
		return 0
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return probs[idx[a]] < probs[idx[b]]
	})

	var positives, negatives int
	for _, y := range labels {
		if y == 1 {
			positives++
		} else {
			negatives++
		}
	}
	if positives == 0 || negatives == 0 {
		return 0
	}

	// Rank sum of positive examples, averaging ranks across ties.
	rankSum := 0.0
	i := 0
	for i < n {
		j := i
		for j < n && probs[idx[j]] == probs[idx[i]] {
			j++
		}
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if labels[idx[k]] == 1 {
				rankSum += avgRank
			}
		}
		i = j
	}

	u := rankSum - float64(positives)*float64(positives+1)/2.0
	return u / (float64(positives) * float64(negatives))
}
