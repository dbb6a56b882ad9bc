package labels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	set := Set{"anger", "fear", "joy", "love", "sadness", "surprise"}

	pred, err := set.Decode([]float32{0.05, 0.05, 0.6, 0.1, 0.1, 0.1})
	require.NoError(t, err)
	assert.Equal(t, "joy", pred.Label)
	assert.InDelta(t, 0.6, pred.Confidence, 1e-6)
}

func TestDecodeTieGoesToFirstIndex(t *testing.T) {
	pred, err := Set{"joy", "anger"}.Decode([]float32{0.5, 0.5})
	require.NoError(t, err)
	assert.Equal(t, "joy", pred.Label)
	assert.Equal(t, 0.5, pred.Confidence)

	pred, err = Set{"a", "b", "c"}.Decode([]float32{0.1, 0.45, 0.45})
	require.NoError(t, err)
	assert.Equal(t, "b", pred.Label)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		set  Set
		dist []float32
	}{
		{"empty distribution", Set{"joy"}, nil},
		{"too few probabilities", Set{"joy", "anger"}, []float32{1}},
		{"too many probabilities", Set{"joy"}, []float32{0.5, 0.5}},
		{"empty set and distribution", Set{}, []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.set.Decode(tt.dist)
			assert.ErrorIs(t, err, ErrEmptyDistribution)
		})
	}
}

func TestParse(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		set, err := Parse([]byte(` ["anger", "joy"] `))
		require.NoError(t, err)
		assert.Equal(t, Set{"anger", "joy"}, set)
	})

	t.Run("one per line", func(t *testing.T) {
		set, err := Parse([]byte("anger\n\n joy \nsadness\n"))
		require.NoError(t, err)
		assert.Equal(t, Set{"anger", "joy", "sadness"}, set)
	})

	for name, in := range map[string]string{
		"empty":       "",
		"duplicate":   "joy\njoy\n",
		"non string":  `["joy", 3]`,
		"broken json": `["joy"`,
		"blank label": `["joy", " "]`,
		"empty array": `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			set, err := Parse([]byte(in))
			assert.Error(t, err)
			assert.Nil(t, set)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, os.WriteFile(path, []byte(`["joy","anger"]`), 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Set{"joy", "anger"}, set)

	_, err = Load(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}
