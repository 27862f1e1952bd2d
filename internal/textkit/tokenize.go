package textkit

import "strings"

// irregularStems maps tokens the suffix rules would mangle to their stem.
var irregularStems = map[string]string{
	"analyses":     "analysis",
	"diagnoses":    "diagnosis",
	"men":          "man",
	"women":        "woman",
	"children":     "child",
	"people":       "person",
	"criteria":     "criterion",
	"data":         "data",
	"media":        "media",
	"series":       "series",
	"species":      "species",
	"licences":     "licence",
	"licenses":     "license",
	"apprentices":  "apprentice",
	"certificates": "certificate",
}

// stemToken strips trivial plural suffixes: trailing "ies" becomes "y" and a
// trailing "s" is dropped for tokens longer than 3 characters. Irregular
// plurals are looked up first.
func stemToken(tok string) string {
	if stem, ok := irregularStems[tok]; ok {
		return stem
	}
	if strings.HasSuffix(tok, "ies") && len(tok) > 4 {
		return tok[:len(tok)-3] + "y"
	}
	if strings.HasSuffix(tok, "ss") {
		return tok
	}
	if strings.HasSuffix(tok, "s") && len(tok) > 3 {
		return tok[:len(tok)-1]
	}
	return tok
}

// Tokens splits text into ordered stemmed tokens. Empty tokens are dropped;
// duplicates are preserved so callers can count occurrences.
func Tokens(text string) []string {
	fields := strings.Fields(Normalize(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if stem := stemToken(f); stem != "" {
			out = append(out, stem)
		}
	}
	return out
}

// TokenSet returns the stemmed tokens of text as a set.
func TokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokens(text) {
		set[t] = true
	}
	return set
}
