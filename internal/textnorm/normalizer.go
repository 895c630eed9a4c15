package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	urlPattern     = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"]+|\bwww\.[^\s<>"]+`)
	specialPattern = regexp.MustCompile(`[!?$%&*@#]`)
)

// Document is the normalized form of a raw message: the cleaned token
// stream plus the auxiliary scalars that must be captured from the raw
// text before token-level cleanup discards them.
type Document struct {
	Tokens           []string
	RawLength        int
	UppercaseRatio   float64
	URLs             []string
	SpecialCharCount int
	Language         string
}

// Reconstructed returns the token stream as a single string. Normalizing
// the reconstructed text yields the same token stream again.
func (d *Document) Reconstructed() string {
	return strings.Join(d.Tokens, " ")
}

// Normalizer performs deterministic text cleanup and tokenization.
// It holds only frozen configuration, so a single instance is safe for
// concurrent use.
type Normalizer struct {
	language        string
	removeStopwords bool
	keepWords       map[string]struct{}
	logger          *zap.Logger
}

// NewNormalizer creates a normalizer for the given stopword language.
// Language may be "english", "portuguese" or "auto" for per-message
// detection. Words in keepWords are never removed as stopwords; urgency
// vocabulary goes here so the signal survives normalization.
func NewNormalizer(language string, removeStopwords bool, keepWords []string, logger *zap.Logger) *Normalizer {
	keep := make(map[string]struct{}, len(keepWords))
	for _, w := range keepWords {
		keep[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Normalizer{
		language:        strings.ToLower(language),
		removeStopwords: removeStopwords,
		keepWords:       keep,
		logger:          logger,
	}
}

// Normalize converts raw text into a Document. It never fails: empty or
// unreadable input yields an empty token stream and zeroed scalars, which
// downstream components treat as insufficient signal.
func (n *Normalizer) Normalize(text string) *Document {
	doc := &Document{Language: n.language}

	if strings.TrimSpace(text) == "" {
		doc.Tokens = []string{}
		return doc
	}

	// Auxiliary scalars come from the raw text, before any cleanup.
	doc.RawLength = len([]rune(text))
	doc.UppercaseRatio = uppercaseRatio(text)
	doc.URLs = urlPattern.FindAllString(text, -1)
	doc.SpecialCharCount = len(specialPattern.FindAllString(text, -1))

	lang := n.language
	if lang == "auto" {
		lang = detectLanguage(text)
		doc.Language = lang
	}

	cleaned := strings.ToLower(text)
	cleaned = urlPattern.ReplaceAllString(cleaned, " ")
	cleaned = foldASCII(cleaned)

	tokens := tokenize(cleaned)

	if n.removeStopwords {
		stops := StopwordsFor(lang)
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, keep := n.keepWords[tok]; keep {
				kept = append(kept, tok)
				continue
			}
			if _, stop := stops[tok]; stop {
				continue
			}
			kept = append(kept, tok)
		}
		tokens = kept
	}

	doc.Tokens = tokens
	return doc
}

// tokenize splits on everything that is not a letter, digit or hyphen,
// then trims hyphens so only token-internal ones survive.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "-")
		if f == "" {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// uppercaseRatio returns the share of uppercase letters among all letters
// in the raw text.
func uppercaseRatio(text string) float64 {
	var letters, upper int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// foldASCII strips diacritics so accented and unaccented spellings of the
// same word share a vocabulary entry. The transform chain buffers state,
// so it is built per call rather than shared.
func foldASCII(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// detectLanguage maps detection output onto the supported stopword lists.
func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if info.Lang == whatlanggo.Por {
		return "portuguese"
	}
	return "english"
}
