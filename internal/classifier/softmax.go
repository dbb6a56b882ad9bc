package classifier

import "math"

// Softmax converts raw logits into a probability distribution.
func Softmax(logits []float32) Distribution {
	out := make(Distribution, len(logits))
	if len(logits) == 0 {
		return out
	}

	peak := math.Inf(-1)
	for _, v := range logits {
		peak = math.Max(peak, float64(v))
	}

	var sum float64
	exps := make([]float64, len(logits))
	for i, v := range logits {
		exps[i] = math.Exp(float64(v) - peak)
		sum += exps[i]
	}
	for i := range exps {
		out[i] = float32(exps[i] / sum)
	}
	return out
}
