package features

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mathfrancisco/phishing-detector/internal/textnorm"
)

func docFromTokens(tokens ...string) *textnorm.Document {
	return &textnorm.Document{Tokens: tokens}
}

func TestFitVocabularyStableIndexAssignment(t *testing.T) {
	docs := []*textnorm.Document{
		docFromTokens("verify", "account", "urgent"),
		docFromTokens("account", "suspended", "verify"),
		docFromTokens("urgent", "account", "suspended"),
	}
	opts := VocabularyOptions{MaxTerms: 10, NgramMin: 1, NgramMax: 1, MinDocFreq: 2}

	first, err := FitVocabulary(docs, opts)
	if err != nil {
		t.Fatalf("failed to fit vocabulary: %v", err)
	}
	second, err := FitVocabulary(docs, opts)
	if err != nil {
		t.Fatalf("failed to fit vocabulary: %v", err)
	}

	if !reflect.DeepEqual(first.Terms, second.Terms) {
		t.Fatalf("index assignment is not stable: %v vs %v", first.Terms, second.Terms)
	}
	for i, term := range first.Terms {
		if first.Index[term] != i {
			t.Fatalf("index map disagrees with term order at %d: %v", i, first.Index)
		}
	}
}

func TestFitVocabularyMinDocFreq(t *testing.T) {
	docs := []*textnorm.Document{
		docFromTokens("common", "rare1"),
		docFromTokens("common", "rare2"),
		docFromTokens("common", "rare3"),
	}
	vocab, err := FitVocabulary(docs, VocabularyOptions{NgramMin: 1, NgramMax: 1, MinDocFreq: 2})
	if err != nil {
		t.Fatalf("failed to fit vocabulary: %v", err)
	}

	if vocab.Size() != 1 || vocab.Terms[0] != "common" {
		t.Fatalf("expected only 'common' to survive min_df filtering, got %v", vocab.Terms)
	}
}

func TestFitVocabularyMaxDocRatio(t *testing.T) {
	docs := []*textnorm.Document{
		docFromTokens("everywhere", "verify"),
		docFromTokens("everywhere", "verify"),
		docFromTokens("everywhere", "account"),
		docFromTokens("everywhere", "account"),
	}
	vocab, err := FitVocabulary(docs, VocabularyOptions{NgramMin: 1, NgramMax: 1, MaxDocRatio: 0.8})
	if err != nil {
		t.Fatalf("failed to fit vocabulary: %v", err)
	}

	if _, ok := vocab.Index["everywhere"]; ok {
		t.Fatalf("term above max_df ratio survived filtering: %v", vocab.Terms)
	}
	if _, ok := vocab.Index["verify"]; !ok {
		t.Fatalf("expected 'verify' in vocabulary, got %v", vocab.Terms)
	}
}

func TestFitVocabularyMaxTermsKeepsMostFrequent(t *testing.T) {
	docs := []*textnorm.Document{
		docFromTokens("alpha", "beta"),
		docFromTokens("alpha", "beta"),
		docFromTokens("alpha", "gamma"),
	}
	vocab, err := FitVocabulary(docs, VocabularyOptions{MaxTerms: 2, NgramMin: 1, NgramMax: 1})
	if err != nil {
		t.Fatalf("failed to fit vocabulary: %v", err)
	}

	if vocab.Size() != 2 {
		t.Fatalf("expected 2 terms, got %v", vocab.Terms)
	}
	if _, ok := vocab.Index["gamma"]; ok {
		t.Fatalf("least frequent term survived the cap: %v", vocab.Terms)
	}
}

func TestFitVocabularyEmptyAfterFiltering(t *testing.T) {
	docs := []*textnorm.Document{
		docFromTokens("once"),
		docFromTokens("twice"),
	}
	_, err := FitVocabulary(docs, VocabularyOptions{NgramMin: 1, NgramMax: 1, MinDocFreq: 2})
	if !errors.Is(err, ErrEmptyVocabulary) {
		t.Fatalf("expected ErrEmptyVocabulary, got %v", err)
	}
}

func TestFitVocabularyCollectsBigrams(t *testing.T) {
	docs := []*textnorm.Document{
		docFromTokens("verify", "account"),
		docFromTokens("verify", "account"),
	}
	vocab, err := FitVocabulary(docs, VocabularyOptions{NgramMin: 1, NgramMax: 2, MinDocFreq: 2})
	if err != nil {
		t.Fatalf("failed to fit vocabulary: %v", err)
	}

	if _, ok := vocab.Index["verify account"]; !ok {
		t.Fatalf("expected bigram 'verify account' in vocabulary, got %v", vocab.Terms)
	}
}

func TestNgrams(t *testing.T) {
	grams := Ngrams([]string{"a", "b", "c"}, 1, 2)
	want := []string{"a", "b", "c", "a b", "b c"}
	if !reflect.DeepEqual(grams, want) {
		t.Fatalf("expected %v, got %v", want, grams)
	}

	if got := Ngrams(nil, 1, 2); got != nil {
		t.Fatalf("expected nil for empty tokens, got %v", got)
	}
}
