package explain

import (
	"fmt"
	"math"
	"sort"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
	"go.uber.org/zap"
)

// Direction marks which verdict an indicator supports.
type Direction string

const (
	DirectionPhishing   Direction = "phishing"
	DirectionLegitimate Direction = "legitimate"
)

// Indicator is one human-readable contributing factor behind a verdict.
type Indicator struct {
	Description  string    `json:"description"`
	Contribution float64   `json:"contribution"`
	Direction    Direction `json:"direction"`
}

// Explainer decomposes a linear model's score into per-feature
// contributions. The additive decomposition is exactly why the
// classifier is restricted to a linear model.
type Explainer struct {
	topN       int
	noiseFloor float64
	logger     *zap.Logger
}

// NewExplainer creates an explainer returning at most topN indicators,
// dropping contributions with magnitude below noiseFloor.
func NewExplainer(topN int, noiseFloor float64, logger *zap.Logger) *Explainer {
	if topN <= 0 {
		topN = 5
	}
	return &Explainer{
		topN:       topN,
		noiseFloor: noiseFloor,
		logger:     logger,
	}
}

// Explain returns the top contributing factors for a feature vector
// scored by the given model, ordered by contribution magnitude. The
// vector must have been built against the same model.
func (e *Explainer) Explain(vec []float64, model *artifact.Model) []Indicator {
	if len(vec) != len(model.Weights) {
		if e.logger != nil {
			e.logger.Warn("Refusing to explain mismatched vector",
				zap.Int("vector_dim", len(vec)),
				zap.Int("model_dim", len(model.Weights)))
		}
		return nil
	}

	indicators := make([]Indicator, 0, e.topN)
	for i, value := range vec {
		if value == 0 {
			continue
		}
		contribution := model.Weights[i] * value
		if math.Abs(contribution) < e.noiseFloor {
			continue
		}
		direction := DirectionPhishing
		if contribution < 0 {
			direction = DirectionLegitimate
		}
		indicators = append(indicators, Indicator{
			Description:  e.describe(i, model),
			Contribution: math.Abs(contribution),
			Direction:    direction,
		})
	}

	sort.Slice(indicators, func(a, b int) bool {
		return indicators[a].Contribution > indicators[b].Contribution
	})
	if len(indicators) > e.topN {
		indicators = indicators[:e.topN]
	}
	return indicators
}

// describe maps a feature index to its human-readable description: the
// literal term for vocabulary features, the pre-written description for
// handcrafted ones.
func (e *Explainer) describe(index int, model *artifact.Model) string {
	vocabSize := model.Vocabulary.Size()
	if index < vocabSize {
		return fmt.Sprintf("Characteristic term: %q", model.Vocabulary.Terms[index])
	}
	return model.Handcrafted[index-vocabSize].Description
}

// FilterByDirection keeps only the indicators supporting the given
// verdict, preserving order. The explanation shown to a user must agree
// with the label shown next to it.
func FilterByDirection(indicators []Indicator, direction Direction) []Indicator {
	filtered := make([]Indicator, 0, len(indicators))
	for _, ind := range indicators {
		if ind.Direction == direction {
			filtered = append(filtered, ind)
		}
	}
	return filtered
}
