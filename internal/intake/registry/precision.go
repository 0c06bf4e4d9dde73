package registry

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	formerlyRe  = regexp.MustCompile(`(?i)\(.*?formerly.*?\)`)
	slashTailRe = regexp.MustCompile(`/.*`)
	fundNoiseRe = regexp.MustCompile(`(?i)\b(mutual\s+fund|amc|asset\s+management|company|private|pvt|limited|ltd|idf)\b`)
	nonAlnumRe  = regexp.MustCompile(`[^a-z0-9 ]+`)
	alnumRunRe  = regexp.MustCompile(`[a-z0-9]+`)
	mutualFund  = regexp.MustCompile(`\bmutual fund\b`)
)

var genericFundTokens = newTokenSet("fund", "funds", "scheme", "schemes", "mf", "nav", "units")

const minAliasLen = 3

// canonicalFundName strips "(formerly ...)" notes and slash tails, then
// title-cases words except short all-caps abbreviations such as UTI.
func canonicalFundName(raw string) string {
	s := formerlyRe.ReplaceAllString(raw, " ")
	s = slashTailRe.ReplaceAllString(s, " ")
	words := strings.Fields(s)
	for i, w := range words {
		if len([]rune(w)) <= 4 && isUpper(w) {
			continue
		}
		words[i] = titleWord(w)
	}
	return strings.Join(words, " ")
}

func isUpper(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func titleWord(w string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range w {
		if prevLetter {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}

// fundKey is the alias-key normalization: generic corporate words removed,
// & spelled out, ASCII alphanumerics only.
func fundKey(s string) string {
	if s == "" {
		return ""
	}
	s = folder.String(norm.NFKC.String(s))
	s = formerlyRe.ReplaceAllString(s, " ")
	s = slashTailRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&", " and ")
	s = fundNoiseRe.ReplaceAllString(s, " ")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func (x *Index) buildPrecision(rows []Row) {
	for _, r := range rows {
		canon := canonicalFundName(r.Name)
		if canon == "" {
			continue
		}
		n := Normalize(canon)
		if _, dup := x.byNorm[n]; dup {
			continue
		}
		x.byNorm[n] = len(x.entries)
		x.entries = append(x.entries, entry{
			name:   canon,
			norm:   n,
			lower:  strings.ToLower(canon),
			tokens: tokenize(canon, nil),
		})

		key := fundKey(canon)
		x.addAlias(key, canon)
		x.addAlias(strings.TrimSpace(mutualFund.ReplaceAllString(key, "")), canon)
		for _, a := range x.profile.ExtraAliases[canon] {
			x.addAlias(fundKey(a), canon)
		}
		for _, a := range r.Aliases {
			x.addAlias(fundKey(a), canon)
		}
	}
}

func (x *Index) usableAlias(k string) bool {
	if len(k) < minAliasLen {
		return false
	}
	_, generic := genericFundTokens[k]
	return !generic
}

func (x *Index) resolvePrecision(name string) (string, bool) {
	q := fundKey(name)
	if q == "" {
		return "", false
	}
	if c, ok := x.aliases[q]; ok {
		return c, true
	}
	bestKey, best := "", 0.0
	for _, k := range x.aliasOrder {
		if s := tokenSetRatio(q, k); s > best {
			bestKey, best = k, s
		}
	}
	if bestKey != "" && best >= x.profile.PrecisionCutoff {
		return x.aliases[bestKey], true
	}
	return "", false
}

// aliasHits returns canonicals whose alias key occurs in q on word
// boundaries, in alias order.
func (x *Index) aliasHits(q string) []string {
	padded := " " + q + " "
	var out []string
	seen := map[string]bool{}
	for _, k := range x.aliasOrder {
		if !x.usableAlias(k) {
			continue
		}
		if !strings.Contains(padded, " "+k+" ") {
			continue
		}
		c := x.aliases[k]
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (x *Index) suggestPrecision(query string) []Suggestion {
	q := fundKey(query)
	if q == "" {
		return nil
	}
	limit := x.profile.Limit

	if hits := x.aliasHits(q); len(hits) > 0 {
		out := make([]Suggestion, 0, len(hits))
		for _, c := range hits {
			out = append(out, Suggestion{Name: c, Score: 99, Similarity: 99})
		}
		if len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	words := alnumRunRe.FindAllString(q, -1)
	var windows []string
	for n := 2; n <= 6; n++ {
		for i := 0; i+n <= len(words); i++ {
			chunk := words[i : i+n]
			allGeneric := true
			for _, w := range chunk {
				if _, g := genericFundTokens[w]; !g {
					allGeneric = false
					break
				}
			}
			if !allGeneric {
				windows = append(windows, strings.Join(chunk, " "))
			}
		}
	}
	if len(windows) == 0 && len(words) > 0 {
		windows = []string{strings.Join(words, " ")}
	}

	best := map[string]float64{}
	var order []string
	for _, w := range windows {
		for _, k := range x.aliasOrder {
			if !x.usableAlias(k) {
				continue
			}
			s := tokenSetRatio(w, k)
			if s < x.profile.PrecisionCutoff {
				continue
			}
			c := x.aliases[k]
			prev, seen := best[c]
			if !seen {
				order = append(order, c)
			}
			if s > prev {
				best[c] = s
			}
		}
	}
	out := make([]Suggestion, 0, len(order))
	for _, c := range order {
		out = append(out, Suggestion{Name: c, Score: best[c], Similarity: best[c]})
	}
	sortSuggestions(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (x *Index) detectPrecision(text string) []string {
	hits := x.aliasHits(fundKey(text))
	if len(hits) > MaxDetected {
		hits = hits[:MaxDetected]
	}
	return hits
}
