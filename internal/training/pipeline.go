package training

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/artifact"
	"github.com/mathfrancisco/phishing-detector/internal/core"
	"github.com/mathfrancisco/phishing-detector/internal/features"
	"github.com/mathfrancisco/phishing-detector/internal/ml"
	"github.com/mathfrancisco/phishing-detector/internal/textnorm"
)

// State is the phase of a training run.
type State string

const (
	StateIdle              State = "idle"
	StatePreparing         State = "preparing"
	StateFittingVocabulary State = "fitting_vocabulary"
	StateTraining          State = "training"
	StateEvaluating        State = "evaluating"
	StateAccepted          State = "accepted"
	StateRejected          State = "rejected"
)

// Sample is one labeled training example. Label is 1 for phishing,
// 0 for legitimate.
type Sample struct {
	Text  string
	Label int
}

// Config collects every knob of a training run.
type Config struct {
	Vocabulary   features.VocabularyOptions
	Train        ml.TrainOptions
	Threshold    float64
	TestFraction float64
	CVFolds      int
	MinAccuracy  float64
	MinRecall    float64
	Seed         int64
	Language     string
}

// Pipeline runs offline training: corpus preparation, vocabulary
// fitting, weight fitting, evaluation, and artifact emission. A run is
// an exclusive critical section; starting a second run while one is in
// flight fails immediately.
type Pipeline struct {
	normalizer *textnorm.Normalizer
	extractor  *features.Extractor
	store      core.ArtifactStore
	logger     *zap.Logger
	cfg        Config

	runMu   sync.Mutex
	stateMu sync.RWMutex
	state   State
}

// NewPipeline creates a training pipeline. store may be nil when the
// caller handles artifact persistence itself.
func NewPipeline(
	normalizer *textnorm.Normalizer,
	extractor *features.Extractor,
	store core.ArtifactStore,
	logger *zap.Logger,
	cfg Config,
) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		extractor:  extractor,
		store:      store,
		logger:     logger,
		cfg:        cfg,
		state:      StateIdle,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.stateMu.RLock()
	defer p.stateMu.RUnlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.stateMu.Lock()
	p.state = s
	p.stateMu.Unlock()
	p.logger.Info("Training pipeline state changed", zap.String("state", string(s)))
}

// Run executes one full training run and, when the trained model clears
// the acceptance floors, persists and returns a new model artifact.
// Degenerate corpora and sub-floor models are reported, never defaulted.
func (p *Pipeline) Run(ctx context.Context, samples []Sample) (*artifact.Model, error) {
	if !p.runMu.TryLock() {
		return nil, core.ErrTrainingInProgress
	}
	defer p.runMu.Unlock()

	start := time.Now()

	p.setState(StatePreparing)
	trainDocs, trainLabels, testDocs, testLabels, err := p.prepare(samples)
	if err != nil {
		p.setState(StateRejected)
		return nil, err
	}

	p.setState(StateFittingVocabulary)
	vocab, err := features.FitVocabulary(trainDocs, p.cfg.Vocabulary)
	if err != nil {
		p.setState(StateRejected)
		if errors.Is(err, features.ErrEmptyVocabulary) {
			return nil, fmt.Errorf("%w: %v", core.ErrDegenerateTrainingData, err)
		}
		return nil, err
	}
	p.logger.Info("Vocabulary fitted",
		zap.Int("terms", vocab.Size()),
		zap.Int("training_documents", vocab.TotalDocs))

	specs := features.DefaultHandcrafted()
	trainVecs := p.extractAll(trainDocs, vocab, specs)
	testVecs := p.extractAll(testDocs, vocab, specs)

	p.setState(StateTraining)
	weights, bias, err := ml.Train(trainVecs, trainLabels, p.cfg.Train)
	if err != nil {
		p.setState(StateRejected)
		if errors.Is(err, ml.ErrDegenerateLabels) {
			return nil, fmt.Errorf("%w: %v", core.ErrDegenerateTrainingData, err)
		}
		return nil, fmt.Errorf("training failed: %w", err)
	}

	p.setState(StateEvaluating)
	metrics, err := p.evaluate(trainVecs, trainLabels, testVecs, testLabels, weights, bias)
	if err != nil {
		p.setState(StateRejected)
		return nil, err
	}

	if metrics.Accuracy < p.cfg.MinAccuracy || metrics.Recall < p.cfg.MinRecall {
		p.setState(StateRejected)
		return nil, fmt.Errorf("%w: accuracy %.4f (floor %.4f), recall %.4f (floor %.4f)",
			core.ErrModelRejected, metrics.Accuracy, p.cfg.MinAccuracy, metrics.Recall, p.cfg.MinRecall)
	}

	model := &artifact.Model{
		Version:     artifact.NewVersion(time.Now()),
		CreatedAt:   time.Now().UTC(),
		Language:    p.cfg.Language,
		Vocabulary:  vocab,
		Handcrafted: specs,
		Weights:     weights,
		Bias:        bias,
		Threshold:   p.cfg.Threshold,
		Metrics:     metrics,
	}
	if err := model.Validate(); err != nil {
		p.setState(StateRejected)
		return nil, err
	}

	if p.store != nil {
		if err := p.store.Save(ctx, model); err != nil {
			p.setState(StateRejected)
			return nil, fmt.Errorf("failed to persist artifact: %w", err)
		}
	}

	p.setState(StateAccepted)
	p.logger.Info("Training run accepted",
		zap.String("version", model.Version),
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Float64("recall", metrics.Recall),
		zap.Float64("auc_roc", metrics.AUC),
		zap.Duration("elapsed", time.Since(start)))

	return model, nil
}

// prepare normalizes the corpus and splits off the held-out evaluation
// set with a seeded shuffle so runs are reproducible.
func (p *Pipeline) prepare(samples []Sample) ([]*textnorm.Document, []int, []*textnorm.Document, []int, error) {
	if len(samples) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: empty corpus", core.ErrDegenerateTrainingData)
	}

	var positives int
	for _, s := range samples {
		if s.Label == 1 {
			positives++
		}
	}
	if positives == 0 || positives == len(samples) {
		return nil, nil, nil, nil, fmt.Errorf("%w: only one class present in %d samples",
			core.ErrDegenerateTrainingData, len(samples))
	}

	idx := rand.New(rand.NewSource(p.cfg.Seed)).Perm(len(samples))
	testCount := int(float64(len(samples)) * p.cfg.TestFraction)

	trainDocs := make([]*textnorm.Document, 0, len(samples)-testCount)
	trainLabels := make([]int, 0, len(samples)-testCount)
	testDocs := make([]*textnorm.Document, 0, testCount)
	testLabels := make([]int, 0, testCount)
	for pos, sample := range idx {
		doc := p.normalizer.Normalize(samples[sample].Text)
		if pos < testCount {
			testDocs = append(testDocs, doc)
			testLabels = append(testLabels, samples[sample].Label)
		} else {
			trainDocs = append(trainDocs, doc)
			trainLabels = append(trainLabels, samples[sample].Label)
		}
	}

	if !bothClasses(trainLabels) {
		return nil, nil, nil, nil, fmt.Errorf("%w: train split lost a class, corpus too small",
			core.ErrDegenerateTrainingData)
	}

	p.logger.Info("Corpus prepared",
		zap.Int("train_samples", len(trainDocs)),
		zap.Int("test_samples", len(testDocs)),
		zap.Int("phishing_samples", positives))

	return trainDocs, trainLabels, testDocs, testLabels, nil
}

func (p *Pipeline) extractAll(docs []*textnorm.Document, vocab *features.Vocabulary, specs []features.HandcraftedSpec) [][]float64 {
	vectors := make([][]float64, len(docs))
	for i, doc := range docs {
		vectors[i] = p.extractor.Extract(doc, vocab, specs)
	}
	return vectors
}

// evaluate computes held-out metrics and runs k-fold cross-validation
// over the training split. With no held-out samples the training split
// itself is scored, which only happens on tiny corpora.
func (p *Pipeline) evaluate(trainVecs [][]float64, trainLabels []int, testVecs [][]float64, testLabels []int, weights []float64, bias float64) (ml.Metrics, error) {
	evalVecs, evalLabels := testVecs, testLabels
	if len(evalVecs) == 0 {
		p.logger.Warn("No held-out samples, evaluating on the training split")
		evalVecs, evalLabels = trainVecs, trainLabels
	}

	probs := make([]float64, len(evalVecs))
	for i, vec := range evalVecs {
		prob, err := ml.Predict(vec, weights, bias)
		if err != nil {
			return ml.Metrics{}, err
		}
		probs[i] = prob
	}
	metrics := ml.Evaluate(probs, evalLabels, p.cfg.Threshold)

	if p.cfg.CVFolds > 1 {
		mean, std, err := ml.CrossValidate(trainVecs, trainLabels, p.cfg.CVFolds, p.cfg.Train, p.cfg.Threshold, p.cfg.Seed)
		if err != nil {
			return ml.Metrics{}, fmt.Errorf("cross-validation failed: %w", err)
		}
		metrics.CVMean = mean
		metrics.CVStd = std
		p.logger.Info("Cross-validation complete",
			zap.Int("folds", p.cfg.CVFolds),
			zap.Float64("cv_mean", mean),
			zap.Float64("cv_std", std))
	}

	return metrics, nil
}

func bothClasses(labels []int) bool {
	var pos, neg bool
	for _, y := range labels {
		if y == 1 {
			pos = true
		} else {
			neg = true
		}
	}
	return pos && neg
}
