// Package vocab holds the word lists a fitness evaluation draws from.
package vocab

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"swypesim/internal/model"
)

// WordList is the read-only vocabulary view used during an evaluation.
type WordList interface {
	Words() int
	Word(i int) (string, error)
	RandomWord() string
}

// List is an ordered, duplicate-free set of lowercase words. A List is safe
// for concurrent reads; random draws go through a Sampler.
type List struct {
	words []string
	rng   *rand.Rand
}

// NewList lowercases and deduplicates words, keeping first occurrence order.
// Blank entries are skipped.
func NewList(words []string) *List {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return &List{words: out, rng: rand.New(rand.NewSource(1))}
}

// LoadFile reads one word per line. Blank lines and lines starting with '#'
// are ignored.
func LoadFile(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary %s: %w", path, err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return NewList(words), nil
}

func (l *List) Words() int {
	return len(l.words)
}

func (l *List) Word(i int) (string, error) {
	if i < 0 || i >= len(l.words) {
		return "", fmt.Errorf("%w: word %d of %d", model.ErrIndexOutOfRange, i, len(l.words))
	}
	return l.words[i], nil
}

// All returns a copy of the words in order.
func (l *List) All() []string {
	return append([]string(nil), l.words...)
}

// RandomWord draws from the list's own generator, seeded with 1. It is not
// safe for concurrent use; concurrent callers take a Sampler each.
func (l *List) RandomWord() string {
	if len(l.words) == 0 {
		return ""
	}
	return l.words[l.rng.Intn(len(l.words))]
}

// Sampler returns a view of the list with an independent generator.
func (l *List) Sampler(seed int64) *Sampler {
	return &Sampler{list: l, rng: rand.New(rand.NewSource(seed))}
}

// Sampler shares the words of a List and owns its random source.
type Sampler struct {
	list *List
	rng  *rand.Rand
}

func (s *Sampler) Words() int {
	return s.list.Words()
}

func (s *Sampler) Word(i int) (string, error) {
	return s.list.Word(i)
}

func (s *Sampler) RandomWord() string {
	if len(s.list.words) == 0 {
		return ""
	}
	return s.list.words[s.rng.Intn(len(s.list.words))]
}
