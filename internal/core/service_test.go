package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
	"github.com/mathfrancisco/phishing-detector/internal/explain"
	"github.com/mathfrancisco/phishing-detector/internal/features"
	"github.com/mathfrancisco/phishing-detector/internal/textnorm"
	"github.com/mathfrancisco/phishing-detector/internal/utils"
	"github.com/mathfrancisco/phishing-detector/internal/whitelist"
)

type memCache struct {
	entries map[string]*CacheEntry
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*CacheEntry)}
}

func (c *memCache) Get(ctx context.Context, textHash string) (*CacheEntry, error) {
	entry, ok := c.entries[textHash]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (c *memCache) Set(ctx context.Context, entry *CacheEntry) error {
	c.entries[entry.TextHash] = entry
	return nil
}

func (c *memCache) Delete(ctx context.Context, textHash string) error {
	delete(c.entries, textHash)
	return nil
}

func (c *memCache) Cleanup(ctx context.Context) error { return nil }

// testModel is a hand-built artifact: "verify" pushes hard toward
// phishing, "meeting" toward legitimate, handcrafted weights as given.
func testModel(urgencyWeight float64) *artifact.Model {
	specs := features.DefaultHandcrafted()
	weights := make([]float64, 2+len(specs))
	weights[0] = 2.5  // verify
	weights[1] = -2.5 // meeting
	for i, spec := range specs {
		if spec.Name == features.FeatureUrgencyTerms {
			weights[2+i] = urgencyWeight
		}
	}
	return &artifact.Model{
		Version:   "v20260101-000000",
		CreatedAt: time.Now().UTC(),
		Language:  "english",
		Vocabulary: &features.Vocabulary{
			Index:     map[string]int{"verify": 0, "meeting": 1},
			Terms:     []string{"verify", "meeting"},
			DocFreq:   []int{2, 2},
			TotalDocs: 10,
			NgramMin:  1,
			NgramMax:  1,
		},
		Handcrafted: specs,
		Weights:     weights,
		Bias:        -0.2,
		Threshold:   0.5,
	}
}

func testService(cache CacheRepository, trusted *whitelist.Checker) *ClassifierService {
	logger := zap.NewNop()
	return NewClassifierService(
		textnorm.NewNormalizer("english", true, features.DefaultUrgencyWords(), logger),
		features.NewExtractor(nil, nil, logger),
		explain.NewExplainer(5, 0.01, logger),
		utils.NewTextProcessor(65536, logger),
		nil,
		cache,
		trusted,
		logger,
		cache != nil,
		time.Hour,
		0.3,
		0.7,
	)
}

func TestClassifyTextFailsClosedWithoutModel(t *testing.T) {
	s := testService(nil, nil)

	_, err := s.ClassifyText(context.Background(), "anything at all")
	if !errors.Is(err, ErrArtifactUnavailable) {
		t.Fatalf("expected ErrArtifactUnavailable, got %v", err)
	}
}

func TestSetModelRejectsInvalidArtifact(t *testing.T) {
	s := testService(nil, nil)
	model := testModel(0)
	model.Weights = model.Weights[:1]

	if err := s.SetModel(model); err == nil {
		t.Fatalf("expected invalid artifact to be rejected")
	}
	if s.CurrentModel() != nil {
		t.Fatalf("rejected artifact was installed")
	}
}

func TestClassifyTextVerdictMatchesThreshold(t *testing.T) {
	s := testService(nil, nil)
	if err := s.SetModel(testModel(0)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	for _, text := range []string{
		"please verify verify account credentials",
		"meeting notes attached for review",
		"nothing recognizable here",
	} {
		result, err := s.ClassifyText(context.Background(), text)
		if err != nil {
			t.Fatalf("classification failed for %q: %v", text, err)
		}
		wantPhishing := result.Probability >= 0.5
		if result.IsPhishing() != wantPhishing {
			t.Fatalf("label %q disagrees with probability %v against threshold 0.5",
				result.Label, result.Probability)
		}
	}
}

func TestClassifyTextPhishingAndLegitimate(t *testing.T) {
	s := testService(nil, nil)
	if err := s.SetModel(testModel(0)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	phish, err := s.ClassifyText(context.Background(), "verify verify verify")
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	if !phish.IsPhishing() {
		t.Fatalf("expected phishing verdict, got %q with probability %v", phish.Label, phish.Probability)
	}

	legit, err := s.ClassifyText(context.Background(), "meeting meeting meeting")
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	if legit.IsPhishing() {
		t.Fatalf("expected legitimate verdict, got %q with probability %v", legit.Label, legit.Probability)
	}
}

func TestClassifyTextIndicatorsAgreeWithVerdict(t *testing.T) {
	s := testService(nil, nil)
	if err := s.SetModel(testModel(0)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	result, err := s.ClassifyText(context.Background(), "verify verify account meeting")
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}

	wantDir := explain.DirectionLegitimate
	if result.IsPhishing() {
		wantDir = explain.DirectionPhishing
	}
	for _, ind := range result.Indicators {
		if ind.Direction != wantDir {
			t.Fatalf("indicator %q contradicts verdict %q", ind.Description, result.Label)
		}
	}
}

func TestClassifyTextUrgencyMonotonicity(t *testing.T) {
	s := testService(nil, nil)
	if err := s.SetModel(testModel(0.8)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	plain, err := s.ClassifyText(context.Background(), "hello friend greetings")
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	urgent, err := s.ClassifyText(context.Background(), "hello friend greetings urgent immediately")
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}

	if urgent.Probability <= plain.Probability {
		t.Fatalf("urgency terms did not raise the probability: %v vs %v",
			plain.Probability, urgent.Probability)
	}
}

func TestClassifyTextUsesCache(t *testing.T) {
	cache := newMemCache()
	s := testService(cache, nil)
	if err := s.SetModel(testModel(0)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	text := "verify your account immediately"
	first, err := s.ClassifyText(context.Background(), text)
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	if first.FromCache {
		t.Fatalf("first classification must not come from cache")
	}

	second, err := s.ClassifyText(context.Background(), text)
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	if !second.FromCache {
		t.Fatalf("expected cache hit on repeat classification")
	}
	if second.Label != first.Label || second.Probability != first.Probability {
		t.Fatalf("cached verdict differs from original: %+v vs %+v", second, first)
	}
}

func TestClassifyTextIgnoresStaleCacheVersion(t *testing.T) {
	cache := newMemCache()
	s := testService(cache, nil)
	if err := s.SetModel(testModel(0)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	text := "meeting notes for the week"
	if _, err := s.ClassifyText(context.Background(), text); err != nil {
		t.Fatalf("classification failed: %v", err)
	}

	// Poison every cached entry with a stale model version.
	for _, entry := range cache.entries {
		entry.ModelVersion = "v20200101-000000"
	}

	result, err := s.ClassifyText(context.Background(), text)
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	if result.FromCache {
		t.Fatalf("verdict from a different model version must not be served")
	}
}

func TestClassifyTextRiskLevels(t *testing.T) {
	cache := newMemCache()
	s := testService(cache, nil)
	model := testModel(0)
	if err := s.SetModel(model); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	// Drive the risk bucketing through cached verdicts with known
	// probabilities.
	cases := []struct {
		text        string
		probability float64
		want        RiskLevel
	}{
		{"low risk text", 0.1, RiskLow},
		{"medium risk text", 0.5, RiskMedium},
		{"high risk text", 0.9, RiskHigh},
	}
	for _, tc := range cases {
		entry := &CacheEntry{
			TextHash:     hashText(tc.text),
			Label:        LabelPhishing,
			Probability:  tc.probability,
			ModelVersion: model.Version,
			LastSeen:     time.Now(),
			ExpiresAt:    time.Now().Add(time.Hour),
		}
		if err := cache.Set(context.Background(), entry); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}

		result, err := s.ClassifyText(context.Background(), tc.text)
		if err != nil {
			t.Fatalf("classification failed: %v", err)
		}
		if result.RiskLevel != tc.want {
			t.Fatalf("probability %v: expected risk %q, got %q", tc.probability, tc.want, result.RiskLevel)
		}
	}
}

func TestClassifyEmailTrustedSenderBypass(t *testing.T) {
	trusted := whitelist.NewChecker([]string{"corp.example"}, zap.NewNop())
	s := testService(nil, trusted)
	// No model installed on purpose: the bypass must not touch it.

	result, err := s.ClassifyEmail(context.Background(), &Email{
		From:    "alice@corp.example",
		Subject: "verify verify verify",
		Body:    "urgent click now",
	})
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	if result.IsPhishing() {
		t.Fatalf("trusted sender was classified as phishing")
	}

	// An untrusted sender still fails closed without a model.
	if _, err := s.ClassifyEmail(context.Background(), &Email{
		From: "mallory@elsewhere.example",
		Body: "urgent click now",
	}); !errors.Is(err, ErrArtifactUnavailable) {
		t.Fatalf("expected ErrArtifactUnavailable for untrusted sender, got %v", err)
	}
}

func TestClassifyTextEmptyInput(t *testing.T) {
	s := testService(nil, nil)
	if err := s.SetModel(testModel(0)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	result, err := s.ClassifyText(context.Background(), "")
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if result.IsPhishing() {
		t.Fatalf("empty input classified as phishing with probability %v", result.Probability)
	}
	if len(result.Indicators) != 0 {
		t.Fatalf("expected no indicators for empty input, got %+v", result.Indicators)
	}
}

func TestClassifyTextUrgentPhishingScenario(t *testing.T) {
	s := testService(nil, nil)
	if err := s.SetModel(testModel(1.5)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	result, err := s.ClassifyText(context.Background(),
		"URGENT: verify your account immediately http://fake-bank.example/login")
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	if !result.IsPhishing() {
		t.Fatalf("expected phishing verdict, got %q with probability %v", result.Label, result.Probability)
	}
	if len(result.Indicators) == 0 {
		t.Fatalf("expected indicators for a phishing verdict")
	}
}

func TestClassifyTextRoutineTextScenario(t *testing.T) {
	s := testService(nil, nil)
	if err := s.SetModel(testModel(0)); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	result, err := s.ClassifyText(context.Background(),
		"invoice 4821 for the monthly office supplies order, meeting payment terms net thirty")
	if err != nil {
		t.Fatalf("classification failed: %v", err)
	}
	if result.IsPhishing() {
		t.Fatalf("routine text classified as phishing with probability %v", result.Probability)
	}
}

func TestClassifyTextArtifactMismatch(t *testing.T) {
	s := testService(nil, nil)
	model := testModel(0)
	if err := s.SetModel(model); err != nil {
		t.Fatalf("failed to install model: %v", err)
	}

	// Corrupt the installed artifact's weight dimension after validation.
	model.Weights = model.Weights[:3]

	_, err := s.ClassifyText(context.Background(), "verify this")
	if !errors.Is(err, ErrArtifactMismatch) {
		t.Fatalf("expected ErrArtifactMismatch, got %v", err)
	}
}

func TestEmailText(t *testing.T) {
	email := &Email{Subject: "Hello", Body: "World"}
	if email.Text() != "Hello\nWorld" {
		t.Fatalf("unexpected text %q", email.Text())
	}
	email = &Email{Body: "Just body"}
	if email.Text() != "Just body" {
		t.Fatalf("unexpected text %q", email.Text())
	}
}
