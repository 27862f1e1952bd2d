package textkit

// Similarity computes the Jaccard overlap of the stemmed token sets of a and
// b: |A ∩ B| / |A ∪ B|. Returns 0 when either side has no tokens.
func Similarity(a, b string) float64 {
	aSet := TokenSet(a)
	bSet := TokenSet(b)
	if len(aSet) == 0 || len(bSet) == 0 {
		return 0
	}

	inter := 0
	for t := range aSet {
		if bSet[t] {
			inter++
		}
	}
	union := len(aSet) + len(bSet) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// DiceCoefficient computes bigram overlap between the compact forms of a and
// b. Identical strings score 1.0; strings shorter than 2 characters score 0.
func DiceCoefficient(a, b string) float64 {
	ca := Compact(a)
	cb := Compact(b)
	if ca == cb && ca != "" {
		return 1.0
	}
	if len(ca) < 2 || len(cb) < 2 {
		return 0
	}

	bigrams := make(map[string]int)
	for i := 0; i < len(ca)-1; i++ {
		bigrams[ca[i:i+2]]++
	}

	matches := 0
	for i := 0; i < len(cb)-1; i++ {
		bg := cb[i : i+2]
		if bigrams[bg] > 0 {
			bigrams[bg]--
			matches++
		}
	}

	return 2.0 * float64(matches) / float64(len(ca)-1+len(cb)-1)
}

// Clamp01 bounds x into [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
