package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mathfrancisco/phishing-detector/internal/config"
	"github.com/mathfrancisco/phishing-detector/internal/core"
	"github.com/mathfrancisco/phishing-detector/internal/explain"
	"github.com/mathfrancisco/phishing-detector/internal/factory"
	"github.com/mathfrancisco/phishing-detector/internal/features"
	"github.com/mathfrancisco/phishing-detector/internal/logging"
	"github.com/mathfrancisco/phishing-detector/internal/ports"
	"github.com/mathfrancisco/phishing-detector/internal/textnorm"
	"github.com/mathfrancisco/phishing-detector/internal/utils"
	"github.com/mathfrancisco/phishing-detector/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return nil, err
	}

	// Register engine components
	if err := container.Provide(func(f *factory.EngineFactory) *textnorm.Normalizer {
		return f.CreateNormalizer()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.EngineFactory) *features.Extractor {
		return f.CreateExtractor()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.EngineFactory) *explain.Explainer {
		return f.CreateExplainer()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.EngineFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register artifact store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ArtifactStore, error) {
		return f.CreateArtifactStore()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register trusted domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		return whitelist.NewChecker(cfg.GetStringSlice("classifier.trusted_domains"), logger)
	}); err != nil {
		return nil, err
	}

	// Register classifier service
	if err := container.Provide(func(
		normalizer *textnorm.Normalizer,
		extractor *features.Extractor,
		explainer *explain.Explainer,
		textProcessor *utils.TextProcessor,
		artifactStore core.ArtifactStore,
		cacheRepo core.CacheRepository,
		trusted *whitelist.Checker,
		cfg *config.Config,
		cacheFactory *factory.CacheFactory,
		logger *zap.Logger,
	) (*core.ClassifierService, error) {
		ttl, err := cacheFactory.GetCacheTTL()
		if err != nil {
			return nil, err
		}
		return core.NewClassifierService(
			normalizer,
			extractor,
			explainer,
			textProcessor,
			artifactStore,
			cacheRepo,
			trusted,
			logger,
			cacheFactory.IsCacheEnabled(),
			ttl,
			cfg.GetFloat64("classifier.risk_low_ceiling"),
			cfg.GetFloat64("classifier.risk_high_floor"),
		), nil
	}); err != nil {
		return nil, err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
