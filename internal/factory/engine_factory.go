package factory

import (
	"github.com/mathfrancisco/phishing-detector/internal/config"
	"github.com/mathfrancisco/phishing-detector/internal/explain"
	"github.com/mathfrancisco/phishing-detector/internal/features"
	"github.com/mathfrancisco/phishing-detector/internal/ml"
	"github.com/mathfrancisco/phishing-detector/internal/textnorm"
	"github.com/mathfrancisco/phishing-detector/internal/training"
	"github.com/mathfrancisco/phishing-detector/internal/utils"
	"go.uber.org/zap"
)

// EngineFactory builds the classification engine components from
// configuration. Normalizer and extractor settings feed both training
// and inference, which is what keeps the two sides consistent.
type EngineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEngineFactory creates a new engine factory
func NewEngineFactory(cfg *config.Config, logger *zap.Logger) *EngineFactory {
	return &EngineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNormalizer creates the text normalizer
func (f *EngineFactory) CreateNormalizer() *textnorm.Normalizer {
	urgency := f.cfg.GetStringSlice("classifier.urgency_words")
	if len(urgency) == 0 {
		urgency = features.DefaultUrgencyWords()
	}
	return textnorm.NewNormalizer(
		f.cfg.GetString("normalizer.language"),
		f.cfg.GetBool("normalizer.remove_stopwords"),
		urgency,
		f.logger,
	)
}

// CreateExtractor creates the feature extractor
func (f *EngineFactory) CreateExtractor() *features.Extractor {
	return features.NewExtractor(
		f.cfg.GetStringSlice("classifier.urgency_words"),
		f.cfg.GetStringSlice("classifier.financial_words"),
		f.logger,
	)
}

// CreateExplainer creates the indicator explainer
func (f *EngineFactory) CreateExplainer() *explain.Explainer {
	return explain.NewExplainer(
		f.cfg.GetInt("classifier.top_indicators"),
		f.cfg.GetFloat64("classifier.noise_floor"),
		f.logger,
	)
}

// CreateTextProcessor creates the inbound text processor
func (f *EngineFactory) CreateTextProcessor() *utils.TextProcessor {
	return utils.NewTextProcessor(
		f.cfg.GetInt("classifier.max_body_size"),
		f.logger,
	)
}

// TrainingConfig assembles the training pipeline configuration
func (f *EngineFactory) TrainingConfig() training.Config {
	return training.Config{
		Vocabulary: features.VocabularyOptions{
			MaxTerms:    f.cfg.GetInt("vocabulary.max_terms"),
			NgramMin:    f.cfg.GetInt("vocabulary.ngram_min"),
			NgramMax:    f.cfg.GetInt("vocabulary.ngram_max"),
			MinDocFreq:  f.cfg.GetInt("vocabulary.min_doc_freq"),
			MaxDocRatio: f.cfg.GetFloat64("vocabulary.max_doc_ratio"),
		},
		Train: ml.TrainOptions{
			LearningRate:  f.cfg.GetFloat64("training.learning_rate"),
			Lambda:        f.cfg.GetFloat64("training.lambda"),
			MaxIterations: f.cfg.GetInt("training.max_iterations"),
			Tolerance:     f.cfg.GetFloat64("training.tolerance"),
			ClassBalanced: f.cfg.GetBool("training.class_balanced"),
		},
		Threshold:    f.cfg.GetFloat64("classifier.threshold"),
		TestFraction: f.cfg.GetFloat64("training.test_fraction"),
		CVFolds:      f.cfg.GetInt("training.cv_folds"),
		MinAccuracy:  f.cfg.GetFloat64("training.min_accuracy"),
		MinRecall:    f.cfg.GetFloat64("training.min_recall"),
		Seed:         f.cfg.GetInt64("training.seed"),
		Language:     f.cfg.GetString("normalizer.language"),
	}
}
