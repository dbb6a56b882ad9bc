package preprocess

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed stopwords/english.txt
var englishStopwords []byte

// Stopwords is an immutable set of words removed during normalization.
type Stopwords map[string]struct{}

func (s Stopwords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func (s Stopwords) Len() int {
	return len(s)
}

// DefaultStopwords returns the bundled English list (the NLTK corpus the model was trained with).
func DefaultStopwords() Stopwords {
	s, err := ReadStopwords(bytes.NewReader(englishStopwords))
	if err != nil {
		panic(fmt.Errorf("embedded stopword list is unreadable: %w", err))
	}
	return s
}

// LoadStopwords reads a newline separated stopword file. An empty path
// selects the bundled English list.
func LoadStopwords(path string) (Stopwords, error) {
	if path == "" {
		return DefaultStopwords(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopwords: %w", err)
	}
	defer f.Close()

	return ReadStopwords(f)
}

// ReadStopwords parses one word per line. Blank lines and lines starting
// with '#' are ignored.
func ReadStopwords(r io.Reader) (Stopwords, error) {
	s := make(Stopwords)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		s[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stopwords: %w", err)
	}
	return s, nil
}
