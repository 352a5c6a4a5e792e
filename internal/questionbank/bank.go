// Package questionbank holds static interview questions grouped by interview
// type. It backs question generation when the text backend is unavailable.
package questionbank

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestions []byte

// Bank maps a normalized interview type to its ordered questions.
type Bank struct {
	questions map[string][]string
}

// Default returns the bank compiled into the binary.
func Default() (*Bank, error) {
	return Parse(defaultQuestions)
}

// Load reads a YAML bank from path. An empty path yields the default bank.
func Load(path string) (*Bank, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %q: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes a YAML document of the form `type: [question, ...]`.
func Parse(data []byte) (*Bank, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	b := &Bank{questions: make(map[string][]string, len(raw))}
	for kind, questions := range raw {
		key := normalize(kind)
		if key == "" {
			continue
		}
		for _, q := range questions {
			if q = strings.TrimSpace(q); q != "" {
				b.questions[key] = append(b.questions[key], q)
			}
		}
	}

	if len(b.questions) == 0 {
		return nil, fmt.Errorf("question bank has no questions")
	}

	return b, nil
}

// Pick returns the first question for interviewType that is not in asked.
func (b *Bank) Pick(interviewType string, asked []string) (string, bool) {
	if b == nil {
		return "", false
	}

	for _, q := range b.questions[normalize(interviewType)] {
		if !slices.Contains(asked, q) {
			return q, true
		}
	}

	return "", false
}

// Types lists the interview types known to the bank in sorted order.
func (b *Bank) Types() []string {
	if b == nil {
		return nil
	}

	types := make([]string, 0, len(b.questions))
	for kind := range b.questions {
		types = append(types, kind)
	}
	slices.Sort(types)
	return types
}

// Len returns the number of questions for interviewType.
func (b *Bank) Len(interviewType string) int {
	if b == nil {
		return 0
	}
	return len(b.questions[normalize(interviewType)])
}

func normalize(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
