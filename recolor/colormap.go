// Package recolor replaces known source colors in stylesheets with their
// target colors.
package recolor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmptyMap       = errors.New("color map is empty")
	ErrInvalidColor   = errors.New("invalid hex color")
	ErrDuplicateColor = errors.New("duplicate source color")
)

// hexColorPattern is the only accepted shape for both sides of a pair.
var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Pair maps source color token to target color token.
type Pair struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// ColorMap is an immutable ordered table of color replacements.
//
// Matching is done on the substring level and is NOT aware of token
// boundaries: a source color embedded into longer hex string (say "#0176d3"
// inside "#0176d3ff") is replaced as well. Both sides are stored lower-cased
// and replacement is written exactly as stored, original letter case of the
// match is lost.
type ColorMap struct {
	pairs   []Pair
	targets map[string]string
	pattern *regexp.Regexp
}

// NewColorMap validates pairs and builds the table. Source tokens are stored
// lower-cased and must be unique after that. When several tokens could match
// at the same position the one declared first wins.
func NewColorMap(pairs ...Pair) (*ColorMap, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyMap
	}

	cm := &ColorMap{
		pairs:   make([]Pair, 0, len(pairs)),
		targets: make(map[string]string, len(pairs)),
	}
	alts := make([]string, 0, len(pairs))
	for i, p := range pairs {
		if !IsHexColor(p.From) {
			return nil, fmt.Errorf("entry %d: source %q: %w", i, p.From, ErrInvalidColor)
		}
		if !IsHexColor(p.To) {
			return nil, fmt.Errorf("entry %d: target %q: %w", i, p.To, ErrInvalidColor)
		}
		from, to := strings.ToLower(p.From), strings.ToLower(p.To)
		if _, exists := cm.targets[from]; exists {
			return nil, fmt.Errorf("entry %d: %q: %w", i, p.From, ErrDuplicateColor)
		}
		cm.targets[from] = to
		cm.pairs = append(cm.pairs, Pair{From: from, To: to})
		alts = append(alts, regexp.QuoteMeta(from))
	}
	// Go regexp alternation is leftmost-first, so declaration order decides
	// between entries matching at the same position.
	cm.pattern = regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
	return cm, nil
}

// MustColorMap is like NewColorMap but panics on error. Use only for tables
// known at compile time.
func MustColorMap(pairs ...Pair) *ColorMap {
	cm, err := NewColorMap(pairs...)
	if err != nil {
		panic(fmt.Sprintf("recolor: bad color map: %v", err))
	}
	return cm
}

// IsHexColor reports whether s is "#rgb" or "#rrggbb".
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// Len returns number of entries.
func (cm *ColorMap) Len() int {
	return len(cm.pairs)
}

// Pairs returns copy of the table in declaration order.
func (cm *ColorMap) Pairs() []Pair {
	out := make([]Pair, len(cm.pairs))
	copy(out, cm.pairs)
	return out
}

// Lookup returns target color for source token, case-insensitively.
func (cm *ColorMap) Lookup(token string) (string, bool) {
	to, ok := cm.targets[strings.ToLower(token)]
	return to, ok
}

// Replace substitutes every occurrence of a source token in s and returns
// the new string and the number of replacements made.
func (cm *ColorMap) Replace(s string) (string, int) {
	return cm.replace(s, nil)
}

// replace calls seen, when not nil, with every lower-cased matched token.
func (cm *ColorMap) replace(s string, seen func(from string)) (string, int) {
	// nothing can match without '#'
	if !strings.Contains(s, "#") {
		return s, 0
	}
	count := 0
	out := cm.pattern.ReplaceAllStringFunc(s, func(match string) string {
		from := strings.ToLower(match)
		to, ok := cm.targets[from]
		if !ok {
			return match
		}
		count++
		if seen != nil {
			seen(from)
		}
		return to
	})
	if count == 0 {
		return s, 0
	}
	return out, count
}
