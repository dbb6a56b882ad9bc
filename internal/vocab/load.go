package vocab

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Load reads a vocabulary file. Two layouts are accepted:
//
//   - a flat JSON object {"word": id, ...}
//   - a Keras tokenizer export (tokenizer.to_json()), whose config.word_index
//     holds the index as an embedded JSON string
//
// For Keras exports policy and num_words come from the file unless overrides
// sets them. A zero Policy in overrides means "use the artifact's
// convention". When the export names an oov_token, that token's id is the
// OOV id the model was trained with and overrides.OOVID is ignored.
func Load(path string, overrides Options) (*Encoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	return Parse(data, overrides)
}

func Parse(data []byte, overrides Options) (*Encoder, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("vocabulary is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("vocabulary must be a JSON object")
	}

	if wordIndex := root.Get("config.word_index"); wordIndex.Exists() {
		return parseKeras(root, wordIndex, overrides)
	}

	index, err := parseIndex(root)
	if err != nil {
		return nil, err
	}
	if overrides.Policy == "" {
		overrides.Policy = OOVMap
	}
	return NewEncoder(index, overrides), nil
}

func parseKeras(root, wordIndex gjson.Result, overrides Options) (*Encoder, error) {
	// word_index is serialized as a string containing JSON.
	if wordIndex.Type == gjson.String {
		wordIndex = gjson.Parse(wordIndex.String())
	}
	if !wordIndex.IsObject() {
		return nil, fmt.Errorf("keras tokenizer word_index is not an object")
	}

	index, err := parseIndex(wordIndex)
	if err != nil {
		return nil, err
	}

	opts := Options{Policy: OOVSkip, OOVID: overrides.OOVID}
	if token := root.Get("config.oov_token"); token.Type == gjson.String {
		id, ok := index[token.String()]
		if !ok {
			return nil, fmt.Errorf("keras tokenizer oov_token %q missing from word_index", token.String())
		}
		opts.Policy = OOVMap
		opts.OOVID = id
	}
	if numWords := root.Get("config.num_words"); numWords.Type == gjson.Number {
		opts.NumWords = int(numWords.Int())
	}

	if overrides.Policy != "" {
		opts.Policy = overrides.Policy
	}
	if overrides.NumWords > 0 {
		opts.NumWords = overrides.NumWords
	}
	return NewEncoder(index, opts), nil
}

func parseIndex(obj gjson.Result) (map[string]int, error) {
	index := make(map[string]int)
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			err = fmt.Errorf("vocabulary entry %q is not a number", key.String())
			return false
		}
		id := value.Int()
		if id < 0 || float64(id) != value.Num {
			err = fmt.Errorf("vocabulary entry %q has invalid id %v", key.String(), value.Raw)
			return false
		}
		index[key.String()] = int(id)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(index) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}
	return index, nil
}
