package models

import "github.com/spacesedan/emotionflow/internal/sentiment"

const (
	FormatPlain    = "plain"
	FormatMarkdown = "markdown"
)

type PredictRequest struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

type PredictResponse struct {
	Emotion    string              `json:"emotion"`
	Confidence float64             `json:"confidence"`
	Polarity   *sentiment.Polarity `json:"polarity,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ReadinessResponse struct {
	Status            string   `json:"status"`
	ClassifierHealthy bool     `json:"classifier_healthy"`
	Labels            []string `json:"labels,omitempty"`
}
