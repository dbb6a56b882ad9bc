package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIndex = map[string]int{
	"love":  2,
	"hate":  3,
	"happy": 4,
	"rare":  250,
}

func TestEncode(t *testing.T) {
	e := NewEncoder(testIndex, Options{OOVID: DefaultOOVID, Policy: OOVMap})

	tests := []struct {
		name string
		in   string
		want []int
	}{
		{"empty", "", []int{}},
		{"known words", "love hate happy", []int{2, 3, 4}},
		{"unknown word maps to oov", "love zebra", []int{2, DefaultOOVID}},
		{"repeated words", "love love", []int{2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Encode(tt.in))
		})
	}
}

func TestEncodeSkipPolicy(t *testing.T) {
	e := NewEncoder(testIndex, Options{Policy: OOVSkip})
	assert.Equal(t, []int{2, 4}, e.Encode("love zebra happy"))
}

func TestEncodeNumWordsLimit(t *testing.T) {
	e := NewEncoder(testIndex, Options{OOVID: 1, Policy: OOVMap, NumWords: 100})
	assert.Equal(t, []int{2, 1}, e.Encode("love rare"))
}

func TestNewEncoderCopiesIndex(t *testing.T) {
	index := map[string]int{"love": 2}
	e := NewEncoder(index, Options{OOVID: 1})
	index["love"] = 9

	assert.Equal(t, []int{2}, e.Encode("love"))
	assert.Equal(t, OOVMap, e.Policy())
}

func TestParseFlat(t *testing.T) {
	e, err := Parse([]byte(`{"love": 2, "hate": 3}`), Options{OOVID: 1})
	require.NoError(t, err)

	assert.Equal(t, 2, e.Len())
	assert.Equal(t, OOVMap, e.Policy())
	assert.Equal(t, []int{2, 1, 3}, e.Encode("love meh hate"))
}

func TestParseKeras(t *testing.T) {
	withOOV := `{"class_name": "Tokenizer", "config": {"num_words": null, "oov_token": "<OOV>",
		"word_index": "{\"<OOV>\": 1, \"love\": 2, \"hate\": 3}"}}`
	withoutOOV := `{"class_name": "Tokenizer", "config": {"num_words": 3, "oov_token": null,
		"word_index": "{\"love\": 1, \"hate\": 2, \"happy\": 3}"}}`

	t.Run("oov token sets id and policy", func(t *testing.T) {
		e, err := Parse([]byte(withOOV), Options{OOVID: 7})
		require.NoError(t, err)
		assert.Equal(t, 1, e.OOVID())
		assert.Equal(t, []int{2, 1, 3}, e.Encode("love meh hate"))
	})

	t.Run("no oov token skips unknown words and honors num_words", func(t *testing.T) {
		e, err := Parse([]byte(withoutOOV), Options{})
		require.NoError(t, err)
		assert.Equal(t, OOVSkip, e.Policy())
		assert.Equal(t, []int{1, 2}, e.Encode("love meh hate happy"))
	})

	t.Run("policy override", func(t *testing.T) {
		e, err := Parse([]byte(withoutOOV), Options{Policy: OOVMap, OOVID: 9})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 9}, e.Encode("love meh"))
	})

	t.Run("inline word_index object", func(t *testing.T) {
		e, err := Parse([]byte(`{"config": {"word_index": {"love": 1}}}`), Options{})
		require.NoError(t, err)
		assert.Equal(t, []int{1}, e.Encode("love"))
	})

	t.Run("oov token missing from index", func(t *testing.T) {
		_, err := Parse([]byte(`{"config": {"oov_token": "<OOV>", "word_index": "{\"love\": 1}"}}`), Options{})
		assert.Error(t, err)
	})
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"invalid json":  `{"love": `,
		"not an object": `["love"]`,
		"empty":         `{}`,
		"string id":     `{"love": "2"}`,
		"negative id":   `{"love": -1}`,
		"fractional id": `{"love": 1.5}`,
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(in), Options{})
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"love": 2}`), 0o600))

	e, err := Load(path, Options{OOVID: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, e.Encode("love"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"), Options{})
	assert.Error(t, err)
}
