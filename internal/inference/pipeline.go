package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/emotionflow/internal/artifacts"
	"github.com/spacesedan/emotionflow/internal/classifier"
	"github.com/spacesedan/emotionflow/internal/labels"
	"github.com/spacesedan/emotionflow/internal/monitoring"
	"github.com/spacesedan/emotionflow/internal/preprocess"
	"github.com/spacesedan/emotionflow/internal/vocab"
)

// Pipeline composes normalization, encoding, shaping, classification and
// decoding into a single text -> prediction call. It holds only read-only
// state and is safe for concurrent use.
type Pipeline struct {
	normalizer *preprocess.Normalizer
	encoder    *vocab.Encoder
	classifier classifier.Classifier
	labels     labels.Set

	maxLen int
	padID  int

	cache          Cache
	cacheNamespace string
	metrics        *monitoring.Metrics
}

type Option func(*Pipeline)

// WithShape overrides the sequence length and pad id.
func WithShape(maxLen, padID int) Option {
	return func(p *Pipeline) {
		p.maxLen = maxLen
		p.padID = padID
	}
}

func WithCache(cache Cache, namespace string) Option {
	return func(p *Pipeline) {
		p.cache = cache
		p.cacheNamespace = namespace
	}
}

func WithMetrics(m *monitoring.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

func New(bundle *artifacts.Bundle, opts ...Option) *Pipeline {
	p := &Pipeline{
		normalizer: preprocess.NewNormalizer(bundle.Stopwords),
		encoder:    bundle.Encoder,
		classifier: bundle.Classifier,
		labels:     bundle.Labels,
		maxLen:     preprocess.MaxLen,
		padID:      preprocess.PadID,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict classifies text. Failures come back wrapped around one of the
// package's sentinel errors, or unclassified.
func (p *Pipeline) Predict(ctx context.Context, text string) (labels.Prediction, error) {
	start := time.Now()

	pred, err := p.predict(ctx, text)
	if err != nil {
		p.metrics.ObserveError(Kind(err))
		return labels.Prediction{}, err
	}

	p.metrics.ObservePrediction(pred.Label, time.Since(start))
	return pred, nil
}

func (p *Pipeline) predict(ctx context.Context, text string) (labels.Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return labels.Prediction{}, ErrEmptyInput
	}

	cleaned := p.normalizer.Normalize(text)

	var key string
	if p.cache != nil {
		key = CacheKey(p.cacheNamespace, cleaned)
		if pred, ok := p.cache.Get(ctx, key); ok {
			p.metrics.ObserveCache(true)
			return pred, nil
		}
		p.metrics.ObserveCache(false)
	}

	pred, err := p.classify(ctx, cleaned)
	if err != nil {
		return labels.Prediction{}, err
	}

	if p.cache != nil {
		p.cache.Set(ctx, key, pred)
	}
	return pred, nil
}

// Probe runs text through the classifier without consulting the cache or
// recording metrics, so every call exercises the model.
func (p *Pipeline) Probe(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyInput
	}
	_, err := p.classify(ctx, p.normalizer.Normalize(text))
	return err
}

func (p *Pipeline) classify(ctx context.Context, cleaned string) (labels.Prediction, error) {
	tokens := p.encoder.Encode(cleaned)
	shaped := preprocess.Shape(tokens, p.maxLen, p.padID)

	dist, err := p.classifier.Classify(ctx, shaped)
	if err != nil {
		return labels.Prediction{}, fmt.Errorf("classify: %w", err)
	}

	pred, err := p.labels.Decode(dist)
	if err != nil {
		return labels.Prediction{}, fmt.Errorf("decode: %w", err)
	}

	slog.Debug("[Pipeline] Prediction complete",
		slog.String("cleaned", cleaned),
		slog.Int("tokens", len(tokens)),
		slog.String("emotion", pred.Label),
		slog.Float64("confidence", pred.Confidence))
	return pred, nil
}

// Labels returns the label set predictions are drawn from.
func (p *Pipeline) Labels() labels.Set {
	return p.labels
}
