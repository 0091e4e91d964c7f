// Package normalize rewrites source-code abbreviations into words a speech
// engine reads naturally ("fn" becomes "function").
//
// Tokens match ignoring ASCII case and only as whole words: a token next to a
// letter, digit or underscore is left alone, so "integers" and "constant"
// survive untouched. Non-ASCII look-alikes such as "ſ" (long s) or the
// Kelvin sign never match.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
)

var wordPattern = regexp.MustCompile(`^\w+$`)

type rule struct {
	pattern *regexp.Regexp
	spoken  string
}

type table struct {
	tokens TokenMap
	rules  []rule
}

func compile(tm TokenMap) (*table, error) {
	t := &table{
		tokens: make(TokenMap, len(tm)),
		rules:  make([]rule, 0, len(tm)),
	}
	copy(t.tokens, tm)

	for i, r := range tm {
		if !wordPattern.MatchString(r.Token) {
			return nil, fmt.Errorf("token %d %q: must be a non-empty run of letters, digits or underscores", i, r.Token)
		}
		re, err := regexp.Compile(`\b` + foldASCII(r.Token) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("token %d %q: %w", i, r.Token, err)
		}
		t.rules = append(t.rules, rule{pattern: re, spoken: r.Spoken})
	}
	return t, nil
}

// foldASCII turns a word token into a pattern matching it in any ASCII case.
// (?i) is not used: its Unicode folding makes "ſ" match "s".
func foldASCII(token string) string {
	var b strings.Builder
	for i := 0; i < len(token); i++ {
		c := token[i]
		lower, upper := c|0x20, c&^0x20
		if lower < 'a' || lower > 'z' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('[')
		b.WriteByte(upper)
		b.WriteByte(lower)
		b.WriteByte(']')
	}
	return b.String()
}

// Normalizer applies a token map to text. The table can be swapped while
// Normalize is being called from other goroutines; each call sees exactly one
// table.
type Normalizer struct {
	current atomic.Pointer[table]
}

// New creates a Normalizer for the given token map.
func New(tm TokenMap) (*Normalizer, error) {
	t, err := compile(tm)
	if err != nil {
		return nil, err
	}
	n := &Normalizer{}
	n.current.Store(t)
	return n, nil
}

// Default creates a Normalizer using DefaultTokens.
func Default() *Normalizer {
	n, err := New(DefaultTokens())
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize replaces every whole-word occurrence, ignoring ASCII case, of each
// token with its spoken form. The spoken form is inserted verbatim.
func (n *Normalizer) Normalize(text string) string {
	t := n.current.Load()
	for _, r := range t.rules {
		text = r.pattern.ReplaceAllLiteralString(text, r.spoken)
	}
	return text
}

// Swap replaces the active token map. On error the previous map stays active.
func (n *Normalizer) Swap(tm TokenMap) error {
	t, err := compile(tm)
	if err != nil {
		return err
	}
	n.current.Store(t)
	return nil
}

// Tokens returns a copy of the active token map.
func (n *Normalizer) Tokens() TokenMap {
	t := n.current.Load()
	out := make(TokenMap, len(t.tokens))
	copy(out, t.tokens)
	return out
}

var std = Default()

// Normalize applies the built-in token map to text.
func Normalize(text string) string {
	return std.Normalize(text)
}
