package labels

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrEmptyDistribution signals a classifier output that cannot be decoded
// against the label set: no entries, or a different number of entries.
var ErrEmptyDistribution = errors.New("empty or mismatched probability distribution")

// Set is the ordered label list. Index i names entry i of a distribution.
type Set []string

type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Decode picks the most probable label. Ties resolve to the lowest index.
func (s Set) Decode(dist []float32) (Prediction, error) {
	if len(dist) == 0 || len(dist) != len(s) {
		return Prediction{}, fmt.Errorf("%w: %d probabilities for %d labels", ErrEmptyDistribution, len(dist), len(s))
	}

	best := 0
	for i := 1; i < len(dist); i++ {
		if dist[i] > dist[best] {
			best = i
		}
	}

	return Prediction{Label: s[best], Confidence: float64(dist[best])}, nil
}

// Load reads a label file: either a JSON array of strings or one label per
// line.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Set, error) {
	trimmed := bytes.TrimSpace(data)

	var set Set
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if !gjson.ValidBytes(trimmed) {
			return nil, fmt.Errorf("labels are not valid JSON")
		}
		var err error
		gjson.ParseBytes(trimmed).ForEach(func(_, value gjson.Result) bool {
			if value.Type != gjson.String {
				err = fmt.Errorf("label %s is not a string", value.Raw)
				return false
			}
			set = append(set, value.String())
			return true
		})
		if err != nil {
			return nil, err
		}
	} else {
		scanner := bufio.NewScanner(bytes.NewReader(trimmed))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				set = append(set, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read labels: %w", err)
		}
	}

	if err := set.validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s Set) validate() error {
	if len(s) == 0 {
		return fmt.Errorf("label set is empty")
	}
	seen := make(map[string]struct{}, len(s))
	for _, label := range s {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("label set contains a blank label")
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("label %q appears twice", label)
		}
		seen[label] = struct{}{}
	}
	return nil
}
