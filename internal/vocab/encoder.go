package vocab

import (
	"strings"
)

// DefaultOOVID is the id Keras assigns to the out-of-vocabulary token when
// the tokenizer is built with one.
const DefaultOOVID = 1

// OOVPolicy decides what happens to words missing from the vocabulary.
type OOVPolicy string

const (
	// OOVMap replaces unknown words with the OOV id.
	OOVMap OOVPolicy = "map"
	// OOVSkip drops unknown words, matching tokenizers built without an OOV token.
	OOVSkip OOVPolicy = "skip"
)

func (p OOVPolicy) Valid() bool {
	return p == OOVMap || p == OOVSkip
}

type Options struct {
	OOVID  int
	Policy OOVPolicy
	// NumWords mirrors the tokenizer's num_words: ids at or above it are
	// treated as unknown. Zero disables the limit.
	NumWords int
}

// Encoder maps cleaned text to token ids using a fixed word index. It is
// read-only after construction and safe for concurrent use.
type Encoder struct {
	index    map[string]int
	oovID    int
	policy   OOVPolicy
	numWords int
}

func NewEncoder(index map[string]int, opts Options) *Encoder {
	own := make(map[string]int, len(index))
	for word, id := range index {
		own[word] = id
	}
	if !opts.Policy.Valid() {
		opts.Policy = OOVMap
	}

	return &Encoder{
		index:    own,
		oovID:    opts.OOVID,
		policy:   opts.Policy,
		numWords: opts.NumWords,
	}
}

// Encode returns one id per word of cleaned. Unknown words become the OOV id
// or are dropped, depending on the policy.
func (e *Encoder) Encode(cleaned string) []int {
	words := strings.Fields(cleaned)
	ids := make([]int, 0, len(words))
	for _, word := range words {
		id, ok := e.lookup(word)
		if ok {
			ids = append(ids, id)
			continue
		}
		if e.policy == OOVMap {
			ids = append(ids, e.oovID)
		}
	}
	return ids
}

func (e *Encoder) lookup(word string) (int, bool) {
	id, ok := e.index[word]
	if !ok {
		return 0, false
	}
	if e.numWords > 0 && id >= e.numWords {
		return 0, false
	}
	return id, true
}

func (e *Encoder) Len() int {
	return len(e.index)
}

func (e *Encoder) OOVID() int {
	return e.oovID
}

func (e *Encoder) Policy() OOVPolicy {
	return e.policy
}
