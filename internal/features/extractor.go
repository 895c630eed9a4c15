package features

import (
	"math"
	"strings"

	"github.com/mathfrancisco/phishing-detector/internal/textnorm"
	"go.uber.org/zap"
)

// Extractor converts normalized documents into fixed-length feature
// vectors: one TF-IDF value per vocabulary term followed by the
// handcrafted scalar block. Configuration is frozen at construction, so
// an Extractor is safe for concurrent use.
type Extractor struct {
	urgencyWords   map[string]struct{}
	financialWords map[string]struct{}
	logger         *zap.Logger
}

// NewExtractor creates an extractor with the given keyword vocabularies.
// Empty lists fall back to the built-in defaults.
func NewExtractor(urgencyWords, financialWords []string, logger *zap.Logger) *Extractor {
	if len(urgencyWords) == 0 {
		urgencyWords = DefaultUrgencyWords()
	}
	if len(financialWords) == 0 {
		financialWords = DefaultFinancialWords()
	}
	return &Extractor{
		urgencyWords:   lowerSet(urgencyWords),
		financialWords: lowerSet(financialWords),
		logger:         logger,
	}
}

// Extract produces the feature vector for a document against a frozen
// vocabulary. Terms absent from the vocabulary contribute nothing; the
// vector length is vocab.Size()+len(specs) regardless of input.
func (e *Extractor) Extract(doc *textnorm.Document, vocab *Vocabulary, specs []HandcraftedSpec) []float64 {
	vec := make([]float64, vocab.Size()+len(specs))

	// Term frequency over the same n-gram range the vocabulary was
	// fitted with.
	tf := make(map[int]float64)
	for _, term := range Ngrams(doc.Tokens, vocab.NgramMin, vocab.NgramMax) {
		if idx, ok := vocab.Index[term]; ok {
			tf[idx]++
		}
	}
	for idx, count := range tf {
		idf := math.Log(float64(vocab.TotalDocs) / (1.0 + float64(vocab.DocFreq[idx])))
		vec[idx] = count * idf
	}

	for i, spec := range specs {
		vec[vocab.Size()+i] = e.handcraftedValue(spec.Name, doc)
	}
	return vec
}

func (e *Extractor) handcraftedValue(name string, doc *textnorm.Document) float64 {
	switch name {
	case FeatureURLCount:
		return float64(len(doc.URLs))
	case FeatureUppercaseRatio:
		return doc.UppercaseRatio
	case FeatureUrgencyTerms:
		return float64(countIn(doc.Tokens, e.urgencyWords))
	case FeatureFinancialTerms:
		return float64(countIn(doc.Tokens, e.financialWords))
	case FeatureSpecialChars:
		return float64(doc.SpecialCharCount)
	case FeatureTokenCount:
		return float64(len(doc.Tokens))
	default:
		if e.logger != nil {
			e.logger.Warn("Unknown handcrafted feature", zap.String("feature", name))
		}
		return 0
	}
}

func countIn(tokens []string, set map[string]struct{}) int {
	count := 0
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			count++
		}
	}
	return count
}

func lowerSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return set
}
