package core

import (
	"time"

	"github.com/mathfrancisco/phishing-detector/internal/explain"
)

// Label is the final verdict for a classified message
type Label string

const (
	LabelLegitimate Label = "legitimate"
	LabelPhishing   Label = "phishing"
)

// RiskLevel buckets the phishing probability for presentation
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Email represents an email message submitted for classification
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Text returns the free-text content used for classification
func (e *Email) Text() string {
	if e.Subject == "" {
		return e.Body
	}
	return e.Subject + "\n" + e.Body
}

// ClassificationResult represents the outcome of classifying one message
type ClassificationResult struct {
	Label        Label
	Probability  float64
	RiskLevel    RiskLevel
	Indicators   []explain.Indicator
	AnalyzedAt   time.Time
	ModelVersion string
	FromCache    bool
}

// IsPhishing reports whether the verdict is phishing
func (r *ClassificationResult) IsPhishing() bool {
	return r.Label == LabelPhishing
}

// CacheEntry is a cached verdict keyed by the hash of the message text
type CacheEntry struct {
	TextHash     string
	Label        Label
	Probability  float64
	ModelVersion string
	LastSeen     time.Time
	ExpiresAt    time.Time
}
