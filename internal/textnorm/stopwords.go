package textnorm

// Fixed stopword lists for the supported languages. These are frozen on
// purpose: a trained artifact relies on normalization behaving the same
// at inference time as it did during training.

var englishStopwords = makeSet([]string{
	"a", "about", "above", "after", "again", "all", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being",
	"below", "between", "both", "but", "by", "can", "did", "do", "does",
	"doing", "down", "during", "each", "few", "for", "from", "further",
	"had", "has", "have", "having", "he", "her", "here", "hers", "him",
	"his", "how", "i", "if", "in", "into", "is", "it", "its", "just",
	"me", "more", "most", "my", "no", "nor", "not", "of", "off", "on",
	"once", "only", "or", "other", "our", "ours", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the",
	"their", "theirs", "them", "then", "there", "these", "they", "this",
	"those", "through", "to", "too", "under", "until", "up", "very",
	"was", "we", "were", "what", "when", "where", "which", "while",
	"who", "whom", "why", "will", "with", "you", "your", "yours",
})

var portugueseStopwords = makeSet([]string{
	"a", "ao", "aos", "aquela", "aquele", "as", "ate", "com", "como",
	"da", "das", "de", "dela", "dele", "depois", "do", "dos", "e",
	"ela", "elas", "ele", "eles", "em", "entre", "era", "essa", "esse",
	"esta", "este", "eu", "foi", "for", "ha", "isso", "isto", "ja",
	"mais", "mas", "me", "mesmo", "meu", "minha", "muito", "na", "nao",
	"nas", "nem", "no", "nos", "nossa", "nosso", "num", "o", "os", "ou",
	"para", "pela", "pelo", "por", "qual", "quando", "que", "quem",
	"se", "sem", "ser", "seu", "sua", "tambem", "te", "tem", "um",
	"uma", "voce", "vos",
})

// StopwordsFor returns the stopword set for a language. Unknown languages
// fall back to English rather than failing.
func StopwordsFor(language string) map[string]struct{} {
	switch language {
	case "portuguese":
		return portugueseStopwords
	default:
		return englishStopwords
	}
}

func makeSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
