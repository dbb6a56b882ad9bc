package artifacts

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/emotionflow/internal/classifier"
	"github.com/spacesedan/emotionflow/internal/labels"
	"github.com/spacesedan/emotionflow/internal/preprocess"
	"github.com/spacesedan/emotionflow/internal/vocab"
)

// ErrLoad wraps every failure to assemble a Bundle. It is fatal at startup.
var ErrLoad = errors.New("artifact load failed")

// Bundle is the read-only state shared by every prediction. It is built
// once and never modified afterwards.
type Bundle struct {
	Stopwords  preprocess.Stopwords
	Encoder    *vocab.Encoder
	Labels     labels.Set
	Classifier classifier.Classifier
}

// ClassifierFactory builds the classifier once the label count is known.
type ClassifierFactory func(numLabels int) (classifier.Classifier, error)

type Options struct {
	VocabularyPath string
	LabelsPath     string
	StopwordsPath  string
	Vocabulary     vocab.Options
	NewClassifier  ClassifierFactory
}

// ONNXFactory returns a factory building an ONNX classifier from cfg with
// the label count filled in.
func ONNXFactory(cfg classifier.ONNXConfig) ClassifierFactory {
	return func(numLabels int) (classifier.Classifier, error) {
		cfg.NumLabels = numLabels
		return classifier.NewONNX(cfg)
	}
}

// Load reads every artifact. Either all of them load or none is returned.
func Load(opts Options) (*Bundle, error) {
	start := time.Now()

	stopwords, err := preprocess.LoadStopwords(opts.StopwordsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: stopwords: %w", ErrLoad, err)
	}

	if opts.VocabularyPath == "" {
		return nil, fmt.Errorf("%w: vocabulary path is not set", ErrLoad)
	}
	encoder, err := vocab.Load(opts.VocabularyPath, opts.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("%w: vocabulary: %w", ErrLoad, err)
	}

	if opts.LabelsPath == "" {
		return nil, fmt.Errorf("%w: labels path is not set", ErrLoad)
	}
	set, err := labels.Load(opts.LabelsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: labels: %w", ErrLoad, err)
	}

	if opts.NewClassifier == nil {
		return nil, fmt.Errorf("%w: no classifier configured", ErrLoad)
	}
	model, err := opts.NewClassifier(len(set))
	if err != nil {
		return nil, fmt.Errorf("%w: classifier: %w", ErrLoad, err)
	}

	slog.Info("[Artifacts] Loaded",
		slog.Int("stopwords", stopwords.Len()),
		slog.Int("vocabulary", encoder.Len()),
		slog.String("oov_policy", string(encoder.Policy())),
		slog.Any("labels", []string(set)),
		slog.Duration("elapsed", time.Since(start)))

	return &Bundle{
		Stopwords:  stopwords,
		Encoder:    encoder,
		Labels:     set,
		Classifier: model,
	}, nil
}

func (b *Bundle) Close() error {
	if b == nil || b.Classifier == nil {
		return nil
	}
	return b.Classifier.Close()
}
