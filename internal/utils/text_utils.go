package utils

import (
	"unicode/utf8"

	"go.uber.org/zap"
)

// TextProcessor prepares inbound message text before classification.
// Unreadable input is repaired rather than rejected: a garbled email
// still deserves an assessment.
type TextProcessor struct {
	maxBytes int
	logger   *zap.Logger
}

// NewTextProcessor creates a text processor. maxBytes <= 0 disables
// truncation.
func NewTextProcessor(maxBytes int, logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Prepare sanitizes and truncates text in one pass.
func (tp *TextProcessor) Prepare(text string) string {
	return tp.SanitizeUTF8(tp.Truncate(text))
}

// Truncate cuts text to the configured byte limit, backing off to the
// nearest valid UTF-8 boundary.
func (tp *TextProcessor) Truncate(text string) string {
	if tp.maxBytes <= 0 || len(text) <= tp.maxBytes {
		return text
	}
	truncated := text[:tp.maxBytes]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	if tp.logger != nil {
		tp.logger.Debug("Message text truncated",
			zap.Int("original_size", len(text)),
			zap.Int("truncated_size", len(truncated)))
	}
	return truncated
}

// SanitizeUTF8 drops invalid UTF-8 sequences from the text.
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(text[i:]); size == 1 {
				continue
			}
		}
		result = append(result, r)
	}
	if tp.logger != nil {
		tp.logger.Debug("Message text sanitized",
			zap.Int("original_size", len(text)),
			zap.Int("sanitized_size", len(string(result))))
	}
	return string(result)
}
