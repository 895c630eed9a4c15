package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
	"github.com/mathfrancisco/phishing-detector/internal/explain"
	"github.com/mathfrancisco/phishing-detector/internal/features"
	"github.com/mathfrancisco/phishing-detector/internal/ml"
	"github.com/mathfrancisco/phishing-detector/internal/textnorm"
	"github.com/mathfrancisco/phishing-detector/internal/utils"
	"github.com/mathfrancisco/phishing-detector/internal/whitelist"
)

// ClassifierService is the inference side of the engine. It owns a
// read-only reference to the loaded model artifact; every classification
// runs normalize → extract → predict → explain against that reference.
// The artifact pointer is swapped atomically on reload, so concurrent
// in-flight requests always see a consistent artifact and requests share
// no mutable state.
type ClassifierService struct {
	normalizer    *textnorm.Normalizer
	extractor     *features.Extractor
	explainer     *explain.Explainer
	textProcessor *utils.TextProcessor
	store         ArtifactStore
	cache         CacheRepository
	trusted       *whitelist.Checker
	logger        *zap.Logger

	cacheEnabled   bool
	cacheTTL       time.Duration
	riskLowCeiling float64
	riskHighFloor  float64

	model atomic.Pointer[artifact.Model]
}

// NewClassifierService creates the classification service. No artifact
// is loaded yet; LoadArtifact or SetModel must succeed before the first
// classification.
func NewClassifierService(
	normalizer *textnorm.Normalizer,
	extractor *features.Extractor,
	explainer *explain.Explainer,
	textProcessor *utils.TextProcessor,
	store ArtifactStore,
	cache CacheRepository,
	trusted *whitelist.Checker,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	riskLowCeiling float64,
	riskHighFloor float64,
) *ClassifierService {
	return &ClassifierService{
		normalizer:     normalizer,
		extractor:      extractor,
		explainer:      explainer,
		textProcessor:  textProcessor,
		store:          store,
		cache:          cache,
		trusted:        trusted,
		logger:         logger,
		cacheEnabled:   cacheEnabled,
		cacheTTL:       cacheTTL,
		riskLowCeiling: riskLowCeiling,
		riskHighFloor:  riskHighFloor,
	}
}

// LoadArtifact loads a model artifact from the store and atomically
// replaces the serving reference. Pass an empty version for the latest
// artifact. This is the only blocking I/O on the inference path and runs
// once per service lifetime or on explicit hot-reload.
func (s *ClassifierService) LoadArtifact(ctx context.Context, version string) error {
	model, err := s.store.Load(ctx, version)
	if err != nil {
		return fmt.Errorf("failed to load model artifact: %w", err)
	}
	return s.SetModel(model)
}

// SetModel validates and atomically installs a model artifact.
func (s *ClassifierService) SetModel(model *artifact.Model) error {
	if err := model.Validate(); err != nil {
		return fmt.Errorf("refusing invalid artifact: %w", err)
	}
	s.model.Store(model)
	s.logger.Info("Model artifact installed",
		zap.String("version", model.Version),
		zap.Int("vocabulary_size", model.Vocabulary.Size()),
		zap.Int("feature_count", model.FeatureCount()),
		zap.Float64("threshold", model.Threshold))
	return nil
}

// CurrentModel returns the currently installed artifact, or nil.
func (s *ClassifierService) CurrentModel() *artifact.Model {
	return s.model.Load()
}

// ClassifyEmail classifies an email message. Mail from a trusted sender
// domain bypasses the model.
func (s *ClassifierService) ClassifyEmail(ctx context.Context, email *Email) (*ClassificationResult, error) {
	if s.trusted != nil && s.trusted.IsSenderTrusted(email.From) {
		s.logger.Info("Skipping classification for trusted sender",
			zap.String("sender", email.From))
		return &ClassificationResult{
			Label:       LabelLegitimate,
			Probability: 0,
			RiskLevel:   RiskLow,
			AnalyzedAt:  time.Now(),
		}, nil
	}
	return s.ClassifyText(ctx, email.Text())
}

// ClassifyText classifies raw message text. It fails closed when no
// artifact is loaded: a default label could mask real phishing.
func (s *ClassifierService) ClassifyText(ctx context.Context, text string) (*ClassificationResult, error) {
	model := s.model.Load()
	if model == nil {
		return nil, ErrArtifactUnavailable
	}

	if s.textProcessor != nil {
		text = s.textProcessor.Prepare(text)
	}

	textHash := hashText(text)
	if s.cacheEnabled && s.cache != nil {
		if entry, err := s.cache.Get(ctx, textHash); err == nil && entry.ModelVersion == model.Version {
			s.logger.Debug("Cache hit", zap.String("text_hash", textHash))
			return &ClassificationResult{
				Label:        entry.Label,
				Probability:  entry.Probability,
				RiskLevel:    s.riskLevel(entry.Probability),
				AnalyzedAt:   time.Now(),
				ModelVersion: entry.ModelVersion,
				FromCache:    true,
			}, nil
		}
	}

	doc := s.normalizer.Normalize(text)
	vector := s.extractor.Extract(doc, model.Vocabulary, model.Handcrafted)

	probability, err := ml.Predict(vector, model.Weights, model.Bias)
	if err != nil {
		if errors.Is(err, ml.ErrDimensionMismatch) {
			return nil, fmt.Errorf("%w: vector dimension %d, artifact %s expects %d",
				ErrArtifactMismatch, len(vector), model.Version, model.FeatureCount())
		}
		return nil, err
	}

	label := LabelLegitimate
	if probability >= model.Threshold {
		label = LabelPhishing
	}

	indicators := s.explainer.Explain(vector, model)
	direction := explain.DirectionLegitimate
	if label == LabelPhishing {
		direction = explain.DirectionPhishing
	}
	indicators = explain.FilterByDirection(indicators, direction)

	result := &ClassificationResult{
		Label:        label,
		Probability:  probability,
		RiskLevel:    s.riskLevel(probability),
		Indicators:   indicators,
		AnalyzedAt:   time.Now(),
		ModelVersion: model.Version,
	}

	if s.cacheEnabled && s.cache != nil {
		entry := &CacheEntry{
			TextHash:     textHash,
			Label:        label,
			Probability:  probability,
			ModelVersion: model.Version,
			LastSeen:     time.Now(),
			ExpiresAt:    time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	s.logger.Debug("Message classified",
		zap.String("label", string(result.Label)),
		zap.Float64("probability", result.Probability),
		zap.String("model_version", model.Version),
		zap.Int("indicators", len(result.Indicators)))

	return result, nil
}

func (s *ClassifierService) riskLevel(probability float64) RiskLevel {
	switch {
	case probability < s.riskLowCeiling:
		return RiskLow
	case probability < s.riskHighFloor:
		return RiskMedium
	default:
		return RiskHigh
	}
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
