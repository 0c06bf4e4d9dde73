package registry

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// ratio is the edit-distance similarity of a and b on a 0..100 scale.
func ratio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	d := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(d)/float64(longest))
}

// partialRatio slides the shorter string across the longer one and keeps
// the best window similarity.
func partialRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return 0
	}
	if len(ra) == len(rb) {
		return ratio(a, b)
	}
	short := string(ra)
	best := 0.0
	for i := 0; i+len(ra) <= len(rb); i++ {
		s := ratio(short, string(rb[i:i+len(ra)]))
		if s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}

// tokenSetRatio compares the shared tokens against each side's remainder so
// word order and extra words weigh less than differing words.
func tokenSetRatio(a, b string) float64 {
	ta := newTokenSet(strings.Fields(a)...)
	tb := newTokenSet(strings.Fields(b)...)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	var inter, onlyA, onlyB []string
	for _, w := range sortedKeys(ta) {
		if _, ok := tb[w]; ok {
			inter = append(inter, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for _, w := range sortedKeys(tb) {
		if _, ok := ta[w]; !ok {
			onlyB = append(onlyB, w)
		}
	}
	if len(inter) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}
	t0 := strings.Join(inter, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(onlyA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(onlyB, " "))
	best := ratio(t1, t2)
	if t0 != "" {
		best = max(best, ratio(t0, t1), ratio(t0, t2))
	}
	return best
}

// similarity is the base fuzzy score used for ranking.
func similarity(a, b string) float64 {
	return max(tokenSetRatio(a, b), partialRatio(a, b))
}
