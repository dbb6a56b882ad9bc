package inference

import (
	"errors"

	"github.com/spacesedan/emotionflow/internal/artifacts"
	"github.com/spacesedan/emotionflow/internal/classifier"
	"github.com/spacesedan/emotionflow/internal/labels"
)

var (
	// ErrEmptyInput is returned for empty or whitespace-only text. The
	// classifier is never invoked.
	ErrEmptyInput        = errors.New("no text provided")
	ErrShapeMismatch     = classifier.ErrShapeMismatch
	ErrEmptyDistribution = labels.ErrEmptyDistribution
	ErrArtifactLoad      = artifacts.ErrLoad
)

// Error kinds, used as metric and log labels.
const (
	KindEmptyInput        = "empty_input"
	KindShapeMismatch     = "shape_mismatch"
	KindEmptyDistribution = "empty_distribution"
	KindArtifactLoad      = "artifact_load"
	KindUnclassified      = "unclassified"
)

// Kind classifies err into one of the Kind constants.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return KindEmptyInput
	case errors.Is(err, ErrShapeMismatch):
		return KindShapeMismatch
	case errors.Is(err, ErrEmptyDistribution):
		return KindEmptyDistribution
	case errors.Is(err, ErrArtifactLoad):
		return KindArtifactLoad
	default:
		return KindUnclassified
	}
}
