package artifact

import (
	"fmt"
	"time"

	"github.com/mathfrancisco/phishing-detector/internal/features"
	"github.com/mathfrancisco/phishing-detector/internal/ml"
)

// Model is an immutable trained artifact: the sole channel between the
// training pipeline and the inference side. Every successful training
// run produces a new independently versioned Model; nothing mutates an
// existing one.
type Model struct {
	Version     string                     `json:"version"`
	CreatedAt   time.Time                  `json:"created_at"`
	Language    string                     `json:"language"`
	Vocabulary  *features.Vocabulary       `json:"vocabulary"`
	Handcrafted []features.HandcraftedSpec `json:"handcrafted_features"`
	Weights     []float64                  `json:"weights"`
	Bias        float64                    `json:"bias"`
	Threshold   float64                    `json:"threshold"`
	Metrics     ml.Metrics                 `json:"metrics"`
}

// FeatureCount returns the fixed feature vector length this model
// expects: one slot per vocabulary term plus the handcrafted block.
func (m *Model) FeatureCount() int {
	return m.Vocabulary.Size() + len(m.Handcrafted)
}

// Validate checks internal consistency before a model is saved or
// served. A model whose weight dimension disagrees with its own
// vocabulary can only ever produce meaningless scores.
func (m *Model) Validate() error {
	if m.Version == "" {
		return fmt.Errorf("artifact has no version tag")
	}
	if m.Vocabulary == nil || m.Vocabulary.Size() == 0 {
		return fmt.Errorf("artifact %s has an empty vocabulary", m.Version)
	}
	if len(m.Weights) != m.FeatureCount() {
		return fmt.Errorf("artifact %s weight dimension %d does not match feature count %d",
			m.Version, len(m.Weights), m.FeatureCount())
	}
	if m.Threshold <= 0 || m.Threshold >= 1 {
		return fmt.Errorf("artifact %s has threshold %v outside (0, 1)", m.Version, m.Threshold)
	}
	return nil
}

// NewVersion derives a version tag from the training completion time.
func NewVersion(t time.Time) string {
	return "v" + t.UTC().Format("20060102-150405")
}
