package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/mathfrancisco/phishing-detector/internal/config"
	"github.com/mathfrancisco/phishing-detector/internal/core"
	"github.com/mathfrancisco/phishing-detector/internal/factory"
	"github.com/mathfrancisco/phishing-detector/internal/logging"
	"github.com/mathfrancisco/phishing-detector/internal/whitelist"
	"go.uber.org/zap"
)

var (
	// Artifact flags
	storeType       = flag.String("store", "file", "Artifact store type (file, sqlite)")
	artifactDir     = flag.String("artifact-dir", "./artifacts", "Directory holding model artifacts")
	artifactSQLite  = flag.String("artifact-sqlite", "", "SQLite database path for the artifact store")
	artifactVersion = flag.String("model-version", "latest", "Artifact version to load")

	// Classification flags
	threshold      = flag.Float64("threshold", 0.5, "Probability threshold for the phishing verdict")
	topIndicators  = flag.Int("top-indicators", 5, "Maximum indicators to report")
	trustedDomains = flag.String("trusted", "", "Comma-separated list of trusted sender domains")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Build the classification engine
	engineFactory := factory.NewEngineFactory(cfg, logger)
	storeFactory := factory.NewStoreFactory(cfg, logger)

	artifactStore, err := storeFactory.CreateArtifactStore()
	if err != nil {
		logger.Fatal("Failed to create artifact store", zap.Error(err))
	}

	// Parse trusted domains
	var domains []string
	if *trustedDomains != "" {
		domains = strings.Split(*trustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
	} else {
		domains = cfg.GetStringSlice("classifier.trusted_domains")
	}

	if len(domains) > 0 {
		logger.Info("Using trusted domains", zap.Strings("domains", domains))
	}

	trustedChecker := whitelist.NewChecker(domains, logger)

	service := core.NewClassifierService(
		engineFactory.CreateNormalizer(),
		engineFactory.CreateExtractor(),
		engineFactory.CreateExplainer(),
		engineFactory.CreateTextProcessor(),
		artifactStore,
		nil,
		trustedChecker,
		logger,
		false,
		0,
		cfg.GetFloat64("classifier.risk_low_ceiling"),
		cfg.GetFloat64("classifier.risk_high_floor"),
	)

	if err := service.LoadArtifact(context.Background(), storeFactory.ArtifactVersion()); err != nil {
		logger.Fatal("Failed to load model artifact", zap.Error(err))
	}

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	email, err := readEmail(emailReader)
	if err != nil {
		logger.Fatal("Failed to read email", zap.Error(err))
	}

	// Print email summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("From: %s\n", email.From)
	fmt.Printf("To: %s\n", strings.Join(email.To, ", "))
	fmt.Printf("Subject: %s\n", email.Subject)
	fmt.Printf("Body length: %d bytes\n", len(email.Body))
	fmt.Printf("\n")

	// Analyze email
	fmt.Printf("=== Analysis ===\n")
	fmt.Printf("Model version: %s\n", service.CurrentModel().Version)
	fmt.Printf("Verdict threshold: %.2f\n", service.CurrentModel().Threshold)

	startTime := time.Now()
	result, err := service.ClassifyEmail(context.Background(), email)
	if err != nil {
		logger.Fatal("Failed to classify email", zap.Error(err))
	}
	duration := time.Since(startTime)

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Verdict: %s\n", result.Label)
	fmt.Printf("Probability: %.4f\n", result.Probability)
	fmt.Printf("Risk level: %s\n", result.RiskLevel)
	if len(result.Indicators) > 0 {
		fmt.Printf("Indicators:\n")
		for _, ind := range result.Indicators {
			fmt.Printf("  - %s (%+.4f)\n", ind.Description, ind.Contribution)
		}
	}
	fmt.Printf("Processing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := artifactStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close artifact store", zap.Error(err))
		}
	}
}

// readEmail parses an RFC 5322 message. Input that fails to parse as a
// message is classified as raw text instead of being rejected.
func readEmail(r io.Reader) (*core.Email, error) {
	raw, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}

	msg, err := mail.ReadMessage(strings.NewReader(string(raw)))
	if err != nil {
		return &core.Email{
			Body:    string(raw),
			Headers: make(map[string][]string),
		}, nil
	}

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil, err
	}

	email := &core.Email{
		From:    msg.Header.Get("From"),
		To:      strings.Split(msg.Header.Get("To"), ","),
		Subject: msg.Header.Get("Subject"),
		Body:    string(bodyBytes),
		Headers: make(map[string][]string),
	}
	for k, v := range msg.Header {
		email.Headers[k] = v
	}
	return email, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("artifacts.store_type", *storeType)
	v.Set("artifacts.dir", *artifactDir)
	if *artifactSQLite != "" {
		v.Set("artifacts.sqlite_path", *artifactSQLite)
	}
	v.Set("artifacts.version", *artifactVersion)

	v.Set("classifier.threshold", *threshold)
	v.Set("classifier.top_indicators", *topIndicators)

	if *trustedDomains != "" {
		domains := strings.Split(*trustedDomains, ",")
		for i, domain := range domains {
			domains[i] = strings.TrimSpace(domain)
		}
		v.Set("classifier.trusted_domains", domains)
	} else {
		v.Set("classifier.trusted_domains", []string{})
	}

	return config.NewFromViper(v)
}
