package preprocess

const (
	// MaxLen is the sequence length the classifier was trained on.
	MaxLen = 100
	// PadID fills the tail of sequences shorter than MaxLen.
	PadID = 0
)

// Shape resizes seq to exactly maxLen entries. Longer sequences keep their
// first maxLen tokens, shorter ones are right-padded with padID. The input is
// never modified.
func Shape(seq []int, maxLen, padID int) []int {
	if maxLen < 0 {
		maxLen = 0
	}

	shaped := make([]int, maxLen)
	n := copy(shaped, seq)
	for i := n; i < maxLen; i++ {
		shaped[i] = padID
	}
	return shaped
}
