// Package textkit provides the text normalization and fuzzy similarity
// primitives used by every matching routine in the engine. All functions are
// pure and deterministic for identical inputs.
package textkit

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// symbolAliases maps symbol-bearing technology names to a normalized spelling
// before punctuation stripping would destroy them.
var symbolAliases = map[string]string{
	"c++":     "cplusplus",
	"c#":      "csharp",
	"f#":      "fsharp",
	".net":    "dotnet",
	"node.js": "nodejs",
	"vue.js":  "vuejs",
	"next.js": "nextjs",
	"d3.js":   "d3js",
	"ci/cd":   "cicd",
	"a/b":     "ab",
	"r&d":     "rnd",
}

// diacriticFolds covers the accented characters that show up in Canadian
// bilingual postings. Anything outside this table passes through unchanged.
var diacriticFolds = map[rune]rune{
	'à': 'a', 'â': 'a', 'ä': 'a', 'á': 'a', 'ã': 'a',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'î': 'i', 'ï': 'i', 'í': 'i',
	'ò': 'o', 'ô': 'o', 'ö': 'o', 'ó': 'o', 'õ': 'o',
	'ù': 'u', 'û': 'u', 'ü': 'u', 'ú': 'u',
	'ç': 'c', 'ñ': 'n', 'ý': 'y', 'ÿ': 'y',
}

// Normalize lowercases text, folds diacritics, expands symbol aliases,
// strips punctuation, and collapses whitespace.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	for alias, expanded := range symbolAliases {
		lower = strings.ReplaceAll(lower, alias, expanded)
	}

	var sb strings.Builder
	sb.Grow(len(lower))
	lastSpace := true
	for _, r := range lower {
		if folded, ok := diacriticFolds[r]; ok {
			r = folded
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(sb.String())
}

// Compact returns the normalized form with all whitespace removed. Useful for
// substring containment checks across word-boundary variants ("auto cad" vs
// "autocad").
func Compact(text string) string {
	return strings.ReplaceAll(Normalize(text), " ", "")
}

// NormalizeKey produces the canonical dedup key for a requirement label.
func NormalizeKey(label string) string {
	return strings.Join(Tokens(label), " ")
}

// ClipRunes truncates s to at most max bytes without splitting a multi-byte
// rune, so clipped text stays valid UTF-8 and a literal prefix of s.
func ClipRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
