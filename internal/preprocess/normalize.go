package preprocess

import (
	"regexp"
	"strings"
	"unicode"
)

// urlPattern ends a URL at any rune unicode.IsSpace accepts. RE2's \s is
// ASCII only, so NBSP and friends are listed explicitly.
var urlPattern = regexp.MustCompile(`http[^\s\v\x{85}\p{Z}]+`)

// Normalizer turns raw user text into the cleaned form the vocabulary was
// built from: lowercase letters separated by single spaces, no URLs, no
// stopwords.
type Normalizer struct {
	stopwords Stopwords
}

func NewNormalizer(stopwords Stopwords) *Normalizer {
	if stopwords == nil {
		stopwords = Stopwords{}
	}
	return &Normalizer{stopwords: stopwords}
}

// Normalize is total and deterministic. Normalizing its own output returns
// the output unchanged.
func (n *Normalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = strings.Map(letterOrSpace, text)
	// "ht-tp://x" only reads as a URL once punctuation is gone.
	text = urlPattern.ReplaceAllString(text, "")

	words := strings.Fields(text)
	kept := words[:0]
	for _, word := range words {
		if !n.stopwords.Contains(word) {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

func letterOrSpace(r rune) rune {
	if (r >= 'a' && r <= 'z') || unicode.IsSpace(r) {
		return r
	}
	return -1
}
