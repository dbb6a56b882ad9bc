package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/emotionflow/internal/inference"
	"github.com/spacesedan/emotionflow/internal/models"
	"github.com/spacesedan/emotionflow/internal/sentiment"
)

const (
	homeMessage   = "Emotion Classification API is running!"
	noTextMessage = "No text provided"
)

func (s *Server) home(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: homeMessage})
}

// predict is the only place pipeline failures become HTTP responses.
func (s *Server) predict(c *gin.Context) {
	var req models.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: noTextMessage})
		return
	}

	text := req.Text
	switch req.Format {
	case "", models.FormatPlain:
	case models.FormatMarkdown:
		text = sentiment.ConvertMarkdownToText(text)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "unsupported format " + req.Format})
		return
	}

	pred, err := s.predictor.Predict(c.Request.Context(), text)
	if err != nil {
		if errors.Is(err, inference.ErrEmptyInput) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: noTextMessage})
			return
		}

		slog.Error("[Server] Prediction failed",
			slog.String("kind", inference.Kind(err)),
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
		return
	}

	resp := models.PredictResponse{
		Emotion:    pred.Label,
		Confidence: pred.Confidence,
	}
	if s.opts.Polarity {
		polarity := sentiment.Analyze(text)
		resp.Polarity = &polarity
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: "ok"})
}

func (s *Server) readyz(c *gin.Context) {
	healthy := s.opts.Healthy == nil || s.opts.Healthy.Load()
	resp := models.ReadinessResponse{
		Status:            s.opts.Lifecycle.State().String(),
		ClassifierHealthy: healthy,
		Labels:            s.opts.Labels,
	}

	if !s.opts.Lifecycle.Ready() || !healthy {
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
