package reduce

import (
	"fmt"
	"strings"
)

// Rule replaces the leftmost occurrence of Pattern with Replacement.
type Rule struct {
	Pattern     string `toml:"from" json:"from"`
	Replacement string `toml:"to" json:"to"`
}

// Finisher removes Suffix from the end of a word.
type Finisher struct {
	Suffix string `toml:"suffix" json:"suffix"`
}

// Step records one rewrite applied during reduction.
type Step struct {
	Rule   string `json:"rule"`
	Depth  int    `json:"depth"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// rewriter is one entry of a phase: a Rule or a Finisher.
type rewriter interface {
	apply(word string, maxDepth int) (string, int, bool)
	String() string
}

// expand lengthens every 'u' of s to a run of depth+1.
func expand(s string, depth int) string {
	if depth == 0 {
		return s
	}
	return strings.ReplaceAll(s, "u", strings.Repeat("u", depth+1))
}

// parameterized reports whether s is subject to depth expansion.
func parameterized(s string) bool {
	return strings.IndexByte(s, Up) >= 0
}

// apply rewrites the first match of the shallowest depth that occurs in word.
func (r Rule) apply(word string, maxDepth int) (string, int, bool) {
	if !parameterized(r.Pattern) {
		maxDepth = 0
	}
	for depth := 0; depth <= maxDepth; depth++ {
		pattern := expand(r.Pattern, depth)
		if len(pattern) > len(word) {
			break
		}
		if i := strings.Index(word, pattern); i >= 0 {
			return word[:i] + expand(r.Replacement, depth) + word[i+len(pattern):], depth, true
		}
	}
	return word, 0, false
}

func (r Rule) String() string {
	return fmt.Sprintf("%s -> %s", show(r.Pattern), show(r.Replacement))
}

func (f Finisher) apply(word string, maxDepth int) (string, int, bool) {
	if !parameterized(f.Suffix) {
		maxDepth = 0
	}
	for depth := 0; depth <= maxDepth; depth++ {
		suffix := expand(f.Suffix, depth)
		if len(suffix) > len(word) {
			break
		}
		if strings.HasSuffix(word, suffix) {
			return word[:len(word)-len(suffix)], depth, true
		}
	}
	return word, 0, false
}

func (f Finisher) String() string {
	return fmt.Sprintf("%s$ -> ε", f.Suffix)
}

// show renders the empty word visibly.
func show(s string) string {
	if s == "" {
		return "ε"
	}
	return s
}
