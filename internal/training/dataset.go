package training

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// LoadCSV reads a labeled corpus from a CSV file with a header row.
// Label values are mapped fuzzily: anything containing phish, spam,
// scam, malicious or unsafe counts as phishing; safe, ham, legit or
// normal count as legitimate, as do literal 0/1. Rows with labels that
// map to neither are skipped.
func LoadCSV(path, textColumn, labelColumn string, logger *zap.Logger) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	textIdx, labelIdx := -1, -1
	for i, col := range header {
		switch strings.TrimSpace(strings.ToLower(col)) {
		case strings.ToLower(textColumn):
			textIdx = i
		case strings.ToLower(labelColumn):
			labelIdx = i
		}
	}
	if textIdx < 0 {
		return nil, fmt.Errorf("text column %q not found in header %v", textColumn, header)
	}
	if labelIdx < 0 {
		return nil, fmt.Errorf("label column %q not found in header %v", labelColumn, header)
	}

	var samples []Sample
	var skipped int
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if textIdx >= len(record) || labelIdx >= len(record) {
			skipped++
			continue
		}
		text := strings.TrimSpace(record[textIdx])
		label, ok := mapLabel(record[labelIdx])
		if text == "" || !ok {
			skipped++
			continue
		}
		samples = append(samples, Sample{Text: text, Label: label})
	}

	logger.Info("Dataset loaded",
		zap.String("path", path),
		zap.Int("samples", len(samples)),
		zap.Int("skipped_rows", skipped))

	return samples, nil
}

// mapLabel normalizes the many label spellings found in public phishing
// datasets onto 0/1.
func mapLabel(raw string) (int, bool) {
	label := strings.TrimSpace(strings.ToLower(raw))
	switch label {
	case "1":
		return 1, true
	case "0":
		return 0, true
	}
	for _, word := range []string{"phish", "spam", "scam", "malicious", "unsafe", "fraud"} {
		if strings.Contains(label, word) {
			return 1, true
		}
	}
	for _, word := range []string{"safe", "ham", "legit", "normal", "benign"} {
		if strings.Contains(label, word) {
			return 0, true
		}
	}
	return 0, false
}
