package explain

import (
	"sort"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
)

// WeightedTerm pairs a vocabulary term with its trained weight.
type WeightedTerm struct {
	Term   string  `json:"term"`
	Weight float64 `json:"weight"`
}

// TopTerms returns the vocabulary terms with the strongest trained
// weights per class: the highest positive weights push toward phishing,
// the lowest negative ones toward legitimate. Handcrafted features are
// excluded; this is a view into what phrasing the model learned.
func TopTerms(model *artifact.Model, topN int) (phishing, legitimate []WeightedTerm) {
	vocabSize := model.Vocabulary.Size()
	terms := make([]WeightedTerm, vocabSize)
	for i := 0; i < vocabSize; i++ {
		terms[i] = WeightedTerm{Term: model.Vocabulary.Terms[i], Weight: model.Weights[i]}
	}

	sort.Slice(terms, func(a, b int) bool { return terms[a].Weight > terms[b].Weight })

	for i := 0; i < topN && i < len(terms); i++ {
		if terms[i].Weight <= 0 {
			break
		}
		phishing = append(phishing, terms[i])
	}
	for i := len(terms) - 1; i >= len(terms)-topN && i >= 0; i-- {
		if terms[i].Weight >= 0 {
			break
		}
		legitimate = append(legitimate, terms[i])
	}
	return phishing, legitimate
}
