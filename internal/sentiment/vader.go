package sentiment

import (
	"html"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

// Compound score thresholds separating the three polarity labels.
const (
	PositiveThreshold = 0.20
	NegativeThreshold = -0.20
)

var (
	analyzer    = govader.NewSentimentIntensityAnalyzer()
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`(?:https?://|www\.)[^\s\v\x{85}\p{Z}]+`)
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
)

// Polarity is the lexicon-based positive/negative reading of a text,
// reported next to the model's emotion.
type Polarity struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown and strips the resulting markup,
// keeping link text but dropping link targets.
func ConvertMarkdownToText(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := html.UnescapeString(tagPattern.ReplaceAllString(string(output), " "))
	plainText = strings.Join(strings.Fields(plainText), " ")

	return RemoveLinks(plainText)
}

func Analyze(text string) Polarity {
	score := analyzer.PolarityScores(RemoveLinks(text)).Compound

	label := "neutral"
	switch {
	case score >= PositiveThreshold:
		label = "positive"
	case score <= NegativeThreshold:
		label = "negative"
	}

	return Polarity{Score: score, Label: label}
}
