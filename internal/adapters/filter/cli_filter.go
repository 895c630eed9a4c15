package filter

import (
	"context"
	"fmt"
	"time"

	"github.com/mathfrancisco/phishing-detector/internal/core"
	"go.uber.org/zap"
)

// CliFilter implements a command-line interface for phishing detection
type CliFilter struct {
	service *core.ClassifierService
	logger  *zap.Logger
	verbose bool
}

// NewCliFilter creates a new CLI filter
func NewCliFilter(service *core.ClassifierService, logger *zap.Logger, verbose bool) (*CliFilter, error) {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessEmail classifies an email and prints the result
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.ClassificationResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.From))

	fmt.Printf("\n=== Email Summary ===\n")
	if email.From != "" {
		fmt.Printf("From: %s\n", email.From)
	}
	if email.Subject != "" {
		fmt.Printf("Subject: %s\n", email.Subject)
	}
	fmt.Printf("Body length: %d bytes\n", len(email.Body))

	if f.verbose {
		preview := email.Body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	startTime := time.Now()
	result, err := f.service.ClassifyEmail(ctx, email)
	if err != nil {
		f.logger.Error("Failed to classify email", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Verdict: %s\n", result.Label)
	fmt.Printf("Phishing probability: %.2f%%\n", result.Probability*100)
	fmt.Printf("Risk level: %s\n", result.RiskLevel)
	fmt.Printf("Model version: %s\n", result.ModelVersion)
	if len(result.Indicators) > 0 {
		fmt.Printf("\nRisk indicators:\n")
		for i, ind := range result.Indicators {
			fmt.Printf("  %d. %s (contribution %.4f)\n", i+1, ind.Description, ind.Contribution)
		}
	}
	fmt.Printf("\nProcessing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
