package features

// Handcrafted feature names. The order of DefaultHandcrafted defines the
// layout of the handcrafted section of every feature vector produced for
// an artifact, so specs are persisted inside the artifact itself.
const (
	FeatureURLCount       = "url_count"
	FeatureUppercaseRatio = "uppercase_ratio"
	FeatureUrgencyTerms   = "urgency_terms"
	FeatureFinancialTerms = "financial_terms"
	FeatureSpecialChars   = "special_chars"
	FeatureTokenCount     = "token_count"
)

// HandcraftedSpec names one handcrafted feature and carries the
// human-readable description the explainer surfaces for it.
type HandcraftedSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultHandcrafted returns the fixed handcrafted feature list in its
// canonical order.
func DefaultHandcrafted() []HandcraftedSpec {
	return []HandcraftedSpec{
		{Name: FeatureURLCount, Description: "Suspicious URL found in the message"},
		{Name: FeatureUppercaseRatio, Description: "Unusually high proportion of uppercase text"},
		{Name: FeatureUrgencyTerms, Description: "Artificial urgency language detected"},
		{Name: FeatureFinancialTerms, Description: "Financial or payment-related language detected"},
		{Name: FeatureSpecialChars, Description: "Heavy use of special characters"},
		{Name: FeatureTokenCount, Description: "Message length"},
	}
}

// DefaultUrgencyWords is the fallback urgency vocabulary; deployments
// override it through configuration.
func DefaultUrgencyWords() []string {
	return []string{
		"urgent", "immediately", "now", "expire", "expires", "suspended",
		"verify", "confirm", "click", "act", "limited", "hurry",
	}
}

// DefaultFinancialWords is the fallback financial vocabulary.
func DefaultFinancialWords() []string {
	return []string{
		"money", "bank", "account", "credit", "card", "payment",
		"invoice", "transfer", "wire", "dollar", "prize", "winner",
	}
}
