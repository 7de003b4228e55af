// Package keyboard provides the key geometry consumed by trajectory synthesis
// and hit-testing.
package keyboard

import (
	"fmt"
	"os"
	"sort"
	"unicode"

	"gopkg.in/yaml.v3"

	"swypesim/internal/model"
)

// Key is a hit region on a virtual keyboard.
type Key interface {
	IsInside(x, y float64) bool
	Center() (x, y float64)
}

// Keyboard maps characters to key regions. Keys are indexed in a fixed order;
// hit-testing walks them in that order.
type Keyboard interface {
	NKeys() int
	CharN(i int) rune
	GetKey(c rune) (Key, bool)
}

// RectKey is an axis-aligned key. X and Y locate the top-left corner.
type RectKey struct {
	Char   rune    `json:"-" yaml:"-"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// IsInside reports whether (x, y) lies in the key. The left and top edges are
// inclusive, the right and bottom edges exclusive, so adjacent keys never
// both claim a point.
func (k RectKey) IsInside(x, y float64) bool {
	return x >= k.X && x < k.X+k.Width && y >= k.Y && y < k.Y+k.Height
}

func (k RectKey) Center() (float64, float64) {
	return k.X + k.Width/2, k.Y + k.Height/2
}

// Layout is an immutable set of rectangular keys.
type Layout struct {
	chars []rune
	keys  map[rune]RectKey
}

func NewLayout(keys []RectKey) (*Layout, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: layout has no keys", model.ErrInvalidInput)
	}
	l := &Layout{
		chars: make([]rune, 0, len(keys)),
		keys:  make(map[rune]RectKey, len(keys)),
	}
	for _, k := range keys {
		c := unicode.ToLower(k.Char)
		if _, exists := l.keys[c]; exists {
			return nil, fmt.Errorf("%w: duplicate key %q", model.ErrInvalidInput, c)
		}
		if k.Width <= 0 || k.Height <= 0 {
			return nil, fmt.Errorf("%w: key %q has non-positive size", model.ErrInvalidInput, c)
		}
		k.Char = c
		l.chars = append(l.chars, c)
		l.keys[c] = k
	}
	return l, nil
}

func (l *Layout) NKeys() int {
	return len(l.chars)
}

func (l *Layout) CharN(i int) rune {
	return l.chars[i]
}

func (l *Layout) GetKey(c rune) (Key, bool) {
	k, ok := l.keys[unicode.ToLower(c)]
	if !ok {
		return nil, false
	}
	return k, true
}

// Rows lays out unit keys row by row. Row r is shifted right by offsets[r]
// key widths; missing offsets default to zero.
func Rows(rows []string, offsets []float64) (*Layout, error) {
	var keys []RectKey
	for r, row := range rows {
		offset := 0.0
		if r < len(offsets) {
			offset = offsets[r]
		}
		for i, c := range []rune(row) {
			keys = append(keys, RectKey{
				Char:   c,
				X:      offset + float64(i),
				Y:      float64(r),
				Width:  1,
				Height: 1,
			})
		}
	}
	return NewLayout(keys)
}

// QWERTY returns the standard three-row letter layout with unit keys.
func QWERTY() *Layout {
	l, err := Rows([]string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}, []float64{0, 0.25, 0.75})
	if err != nil {
		panic(err)
	}
	return l
}

type layoutFile struct {
	Rows    []string           `yaml:"rows"`
	Offsets []float64          `yaml:"offsets"`
	Keys    map[string]RectKey `yaml:"keys"`
}

// LoadLayout reads a layout description. The file either lists rows of unit
// keys (with optional per-row offsets) or explicit keys by character. YAML
// and JSON are both accepted.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}
	return ParseLayout(data)
}

func ParseLayout(data []byte) (*Layout, error) {
	var f layoutFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode layout: %v", model.ErrInvalidInput, err)
	}
	if len(f.Rows) > 0 {
		return Rows(f.Rows, f.Offsets)
	}
	keys := make([]RectKey, 0, len(f.Keys))
	for name, k := range f.Keys {
		r := []rune(name)
		if len(r) != 1 {
			return nil, fmt.Errorf("%w: key name %q must be one character", model.ErrInvalidInput, name)
		}
		k.Char = r[0]
		keys = append(keys, k)
	}
	sortKeys(keys)
	return NewLayout(keys)
}

// sortKeys orders explicit keys top-to-bottom, left-to-right so hit-testing
// order does not depend on map iteration.
func sortKeys(keys []RectKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Char < b.Char
	})
}
