package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mathfrancisco/phishing-detector/internal/config"
	"github.com/mathfrancisco/phishing-detector/internal/explain"
	"github.com/mathfrancisco/phishing-detector/internal/factory"
	"github.com/mathfrancisco/phishing-detector/internal/logging"
	"github.com/mathfrancisco/phishing-detector/internal/training"
	"go.uber.org/zap"
)

var (
	// Dataset flags
	datasetPath = flag.String("dataset", "", "Path to the labeled CSV corpus (required)")
	textColumn  = flag.String("text-column", "text", "Name of the message text column")
	labelColumn = flag.String("label-column", "label", "Name of the label column")

	// Output flags
	topTerms = flag.Int("top-terms", 10, "Number of strongest terms per class to report")
	verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog  = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *datasetPath == "" {
		fmt.Println("Usage: phishing-trainer -dataset <corpus.csv> [-text-column text] [-label-column label]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	engineFactory := factory.NewEngineFactory(cfg, logger)
	storeFactory := factory.NewStoreFactory(cfg, logger)

	artifactStore, err := storeFactory.CreateArtifactStore()
	if err != nil {
		logger.Fatal("Failed to create artifact store", zap.Error(err))
	}

	samples, err := training.LoadCSV(*datasetPath, *textColumn, *labelColumn, logger)
	if err != nil {
		logger.Fatal("Failed to load dataset", zap.Error(err))
	}

	pipeline := training.NewPipeline(
		engineFactory.CreateNormalizer(),
		engineFactory.CreateExtractor(),
		artifactStore,
		logger,
		engineFactory.TrainingConfig(),
	)

	model, err := pipeline.Run(context.Background(), samples)
	if err != nil {
		logger.Fatal("Training run failed", zap.Error(err))
	}

	metrics := model.Metrics
	fmt.Printf("\n=== Training Results ===\n")
	fmt.Printf("Artifact version: %s\n", model.Version)
	fmt.Printf("Vocabulary terms: %d\n", model.Vocabulary.Size())
	fmt.Printf("Feature count: %d\n", model.FeatureCount())
	fmt.Printf("Accuracy: %.4f\n", metrics.Accuracy)
	fmt.Printf("Precision: %.4f\n", metrics.Precision)
	fmt.Printf("Recall: %.4f\n", metrics.Recall)
	fmt.Printf("F1 score: %.4f\n", metrics.F1)
	fmt.Printf("ROC AUC: %.4f\n", metrics.AUC)
	if metrics.CVMean > 0 {
		fmt.Printf("CV accuracy: %.4f ± %.4f\n", metrics.CVMean, metrics.CVStd)
	}
	fmt.Printf("Confusion matrix: TP=%d FP=%d TN=%d FN=%d\n",
		metrics.Confusion.TruePositives,
		metrics.Confusion.FalsePositives,
		metrics.Confusion.TrueNegatives,
		metrics.Confusion.FalseNegatives)

	phishing, legitimate := explain.TopTerms(model, *topTerms)
	if len(phishing) > 0 {
		fmt.Printf("\nStrongest phishing terms:\n")
		for _, term := range phishing {
			fmt.Printf("  %-30s %+.4f\n", term.Term, term.Weight)
		}
	}
	if len(legitimate) > 0 {
		fmt.Printf("\nStrongest legitimate terms:\n")
		for _, term := range legitimate {
			fmt.Printf("  %-30s %+.4f\n", term.Term, term.Weight)
		}
	}

	if closer, ok := artifactStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close artifact store", zap.Error(err))
		}
	}
}
