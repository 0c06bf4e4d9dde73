package registry

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_& ]+`)
	spaceRe   = regexp.MustCompile(`\s+`)
	folder    = cases.Fold()
)

// Normalize maps a name to its lookup key: NFKC, case folded, punctuation
// other than & replaced by spaces, whitespace collapsed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = folder.String(s)
	s = nonWordRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

type tokenSet map[string]struct{}

func tokenize(s string, stop tokenSet) tokenSet {
	out := tokenSet{}
	for _, w := range strings.Fields(Normalize(s)) {
		if _, skip := stop[w]; skip {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func (t tokenSet) overlaps(o tokenSet) bool {
	for w := range t {
		if _, ok := o[w]; ok {
			return true
		}
	}
	return false
}

func newTokenSet(words ...string) tokenSet {
	out := make(tokenSet, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

func sortedKeys(t tokenSet) []string {
	out := make([]string, 0, len(t))
	for w := range t {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}
