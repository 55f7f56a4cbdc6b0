// Package quotes serves the optional line appended to success messages.
package quotes

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed quotes.yaml
var defaultBook []byte

var ErrEmptyBook = errors.New("quote book has no quotes")

// Book is an immutable list of quotes.
type Book struct {
	quotes []string
	intn   func(n int) int
}

type document struct {
	Quotes []string `yaml:"quotes"`
}

// Default returns the embedded book.
func Default() *Book {
	b, err := Parse(defaultBook)
	if err != nil {
		panic(fmt.Sprintf("embedded quotes: %v", err))
	}
	return b
}

// Load reads a YAML book from path. An empty path returns the default book.
func Load(path string) (*Book, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes a YAML document with a top-level "quotes" list. Blank entries
// are dropped.
func Parse(data []byte) (*Book, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse quotes: %w", err)
	}
	out := make([]string, 0, len(doc.Quotes))
	for _, q := range doc.Quotes {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyBook
	}
	return &Book{quotes: out, intn: rand.IntN}, nil
}

// WithRand returns a copy of b that picks indexes with intn.
func (b *Book) WithRand(intn func(n int) int) *Book {
	return &Book{quotes: b.quotes, intn: intn}
}

func (b *Book) Len() int { return len(b.quotes) }

// Random returns one quote chosen uniformly.
func (b *Book) Random() string {
	return b.quotes[b.intn(len(b.quotes))]
}
