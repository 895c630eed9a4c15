package features

import (
	"errors"
	"sort"
	"strings"

	"github.com/mathfrancisco/phishing-detector/internal/textnorm"
)

// ErrEmptyVocabulary is returned when document-frequency filtering leaves
// no usable terms.
var ErrEmptyVocabulary = errors.New("vocabulary is empty after frequency filtering")

// VocabularyOptions controls vocabulary construction during training.
type VocabularyOptions struct {
	// MaxTerms caps the vocabulary size; the most document-frequent
	// surviving terms are kept.
	MaxTerms int
	// NgramMin and NgramMax bound the n-gram sizes collected, e.g. 1 and
	// 2 for unigrams plus bigrams.
	NgramMin int
	NgramMax int
	// MinDocFreq drops terms appearing in fewer documents than this.
	MinDocFreq int
	// MaxDocRatio drops terms appearing in more than this fraction of
	// documents.
	MaxDocRatio float64
}

// Vocabulary maps terms to stable feature indices and carries the
// document-frequency table needed for TF-IDF weighting. It is built once
// during training and frozen thereafter; retraining produces a new
// Vocabulary, never mutates one.
type Vocabulary struct {
	Index     map[string]int `json:"index"`
	Terms     []string       `json:"terms"`
	DocFreq   []int          `json:"doc_freq"`
	TotalDocs int            `json:"total_docs"`
	NgramMin  int            `json:"ngram_min"`
	NgramMax  int            `json:"ngram_max"`
}

// Size returns the number of terms in the vocabulary.
func (v *Vocabulary) Size() int {
	return len(v.Terms)
}

// FitVocabulary collects n-grams across the corpus, filters them by
// document frequency and retains the top MaxTerms. Index assignment is
// stable: terms are sorted before indices are handed out.
func FitVocabulary(docs []*textnorm.Document, opts VocabularyOptions) (*Vocabulary, error) {
	if opts.NgramMin < 1 {
		opts.NgramMin = 1
	}
	if opts.NgramMax < opts.NgramMin {
		opts.NgramMax = opts.NgramMin
	}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range Ngrams(doc.Tokens, opts.NgramMin, opts.NgramMax) {
			seen[term] = struct{}{}
		}
		for term := range seen {
			df[term]++
		}
	}

	maxDocs := len(docs)
	type termFreq struct {
		term string
		df   int
	}
	candidates := make([]termFreq, 0, len(df))
	for term, freq := range df {
		if opts.MinDocFreq > 0 && freq < opts.MinDocFreq {
			continue
		}
		if opts.MaxDocRatio > 0 && maxDocs > 0 && float64(freq) > opts.MaxDocRatio*float64(maxDocs) {
			continue
		}
		candidates = append(candidates, termFreq{term, freq})
	}
	if len(candidates) == 0 {
		return nil, ErrEmptyVocabulary
	}

	// Most informative first: document frequency descending, term text as
	// tie-breaker so the selection is deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].df != candidates[j].df {
			return candidates[i].df > candidates[j].df
		}
		return candidates[i].term < candidates[j].term
	})
	if opts.MaxTerms > 0 && len(candidates) > opts.MaxTerms {
		candidates = candidates[:opts.MaxTerms]
	}

	// Stable index assignment by term order.
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].term < candidates[j].term
	})

	vocab := &Vocabulary{
		Index:     make(map[string]int, len(candidates)),
		Terms:     make([]string, len(candidates)),
		DocFreq:   make([]int, len(candidates)),
		TotalDocs: maxDocs,
		NgramMin:  opts.NgramMin,
		NgramMax:  opts.NgramMax,
	}
	for i, c := range candidates {
		vocab.Index[c.term] = i
		vocab.Terms[i] = c.term
		vocab.DocFreq[i] = c.df
	}
	return vocab, nil
}

// Ngrams expands a token stream into all n-grams between min and max
// sizes, joined with spaces.
func Ngrams(tokens []string, min, max int) []string {
	if len(tokens) == 0 {
		return nil
	}
	grams := make([]string, 0, len(tokens)*(max-min+1))
	for n := min; n <= max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			if n == 1 {
				grams = append(grams, tokens[i])
				continue
			}
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}
