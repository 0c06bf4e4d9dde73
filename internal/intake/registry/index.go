package registry

import (
	"sort"
	"strings"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
)

// MaxDetected caps Detect results.
const MaxDetected = 5

// Suggestion is one ranked candidate. Score includes prefix, substring and
// token bonuses; Similarity is the raw fuzzy score.
type Suggestion struct {
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"-"`
}

type entry struct {
	name   string
	norm   string
	lower  string
	tokens tokenSet
}

// Index is an immutable lookup structure for one entity kind. Build a new
// one to reload.
type Index struct {
	profile Profile

	entries []entry
	byNorm  map[string]int

	// alias key -> canonical, plus insertion order for deterministic scans
	aliases    map[string]string
	aliasOrder []string
}

// NewIndex builds an index from parsed rows. Rows are deduplicated by
// normalized name; the first display form wins.
func NewIndex(p Profile, rows []Row) *Index {
	idx := &Index{
		profile: p,
		byNorm:  make(map[string]int, len(rows)),
		aliases: make(map[string]string),
	}
	if p.Precision {
		idx.buildPrecision(rows)
		return idx
	}
	for _, r := range rows {
		n := Normalize(r.Name)
		if n == "" {
			continue
		}
		if _, dup := idx.byNorm[n]; !dup {
			idx.byNorm[n] = len(idx.entries)
			idx.entries = append(idx.entries, entry{
				name:   r.Name,
				norm:   n,
				lower:  strings.ToLower(r.Name),
				tokens: tokenize(r.Name, p.Stopwords),
			})
		}
		canon := idx.entries[idx.byNorm[n]].name
		for _, a := range r.Aliases {
			idx.addAlias(Normalize(a), canon)
		}
	}
	return idx
}

func (x *Index) addAlias(key, canon string) {
	if key == "" {
		return
	}
	if _, ok := x.aliases[key]; !ok {
		x.aliasOrder = append(x.aliasOrder, key)
	}
	x.aliases[key] = canon
}

func (x *Index) Kind() model.EntityKind { return x.profile.Kind }

// Len is the number of canonical names.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.entries)
}

// Names lists canonical names in load order.
func (x *Index) Names() []string {
	if x == nil {
		return nil
	}
	out := make([]string, len(x.entries))
	for i, e := range x.entries {
		out[i] = e.name
	}
	return out
}

// Resolve returns the canonical name for an exact normalized or alias hit.
func (x *Index) Resolve(name string) (string, bool) {
	if x == nil {
		return "", false
	}
	if x.profile.Precision {
		return x.resolvePrecision(name)
	}
	n := Normalize(name)
	if n == "" {
		return "", false
	}
	if i, ok := x.byNorm[n]; ok {
		return x.entries[i].name, true
	}
	if c, ok := x.aliases[n]; ok {
		return c, true
	}
	return "", false
}

// IsRegistered reports whether name resolves exactly.
func (x *Index) IsRegistered(name string) bool {
	_, ok := x.Resolve(name)
	return ok
}

// Suggest ranks canonical names against query, best first.
func (x *Index) Suggest(query string) []Suggestion {
	if x == nil {
		return nil
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil
	}
	if x.profile.Precision {
		return x.suggestPrecision(q)
	}
	if full, ok := x.Resolve(q); ok {
		return []Suggestion{{Name: full, Score: 100, Similarity: 100}}
	}

	p := x.profile
	qNorm := Normalize(q)
	if qNorm == "" {
		return nil
	}
	qTokens := tokenize(q, p.Stopwords)
	short := len([]rune(qNorm)) <= p.ShortLen
	cutoff := p.Cutoff
	if short {
		cutoff = p.ShortCutoff
	}

	var res []Suggestion
	for _, e := range x.entries {
		sim := similarity(qNorm, e.norm)
		s := sim
		switch {
		case strings.HasPrefix(e.lower, qNorm):
			s += 24
		case strings.Contains(e.lower, qNorm):
			s += 12
		}
		if qTokens.overlaps(e.tokens) {
			s += 10
		}
		if s >= cutoff {
			res = append(res, Suggestion{Name: e.name, Score: s, Similarity: sim})
		}
	}
	sortSuggestions(res)

	if len(res) == 0 && short {
		for _, e := range x.entries {
			prefix := strings.HasPrefix(e.lower, qNorm)
			if !prefix && !strings.Contains(e.lower, qNorm) && !qTokens.overlaps(e.tokens) {
				continue
			}
			score := 72.0
			if prefix {
				score = 95
			}
			res = append(res, Suggestion{Name: e.name, Score: score, Similarity: similarity(qNorm, e.norm)})
		}
		sortSuggestions(res)
		if len(res) > 5 {
			res = res[:5]
		}
	}
	if p.Limit > 0 && len(res) > p.Limit {
		res = res[:p.Limit]
	}
	return res
}

func sortSuggestions(s []Suggestion) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Score > s[j].Score })
}

// Detect scans text for canonical names and aliases appearing verbatim after
// normalization. Results keep scan order and are capped at MaxDetected.
func (x *Index) Detect(text string) []string {
	if x == nil {
		return nil
	}
	if x.profile.Precision {
		return x.detectPrecision(text)
	}
	t := Normalize(text)
	if t == "" {
		return nil
	}
	var hits []string
	add := func(name string) {
		for _, h := range hits {
			if h == name {
				return
			}
		}
		hits = append(hits, name)
	}
	for _, e := range x.entries {
		if strings.Contains(t, e.norm) {
			add(e.name)
		}
	}
	for _, k := range x.aliasOrder {
		if strings.Contains(t, k) {
			add(x.aliases[k])
		}
	}
	if len(hits) > MaxDetected {
		hits = hits[:MaxDetected]
	}
	return hits
}

// Validate gates silent acceptance of a typed name: exact case-insensitive
// match, then Resolve, then the top suggestion when its raw similarity
// clears the profile's accept threshold.
func (x *Index) Validate(name string) (string, bool) {
	if x == nil {
		return "", false
	}
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return "", false
	}
	for _, e := range x.entries {
		if e.lower == q {
			return e.name, true
		}
	}
	if full, ok := x.Resolve(name); ok {
		return full, true
	}
	if sug := x.Suggest(name); len(sug) > 0 && sug[0].Similarity >= x.profile.AcceptSimilarity {
		return sug[0].Name, true
	}
	return "", false
}

// Candidates returns up to the profile's candidate count of distinct names
// for a menu, falling back to a plain substring scan.
func (x *Index) Candidates(q string) []string {
	if x == nil || strings.TrimSpace(q) == "" {
		return nil
	}
	k := x.profile.Candidates
	seen := map[string]bool{}
	var out []string
	for _, s := range x.Suggest(q) {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s.Name)
		if len(out) >= k {
			break
		}
	}
	if len(out) > 0 {
		return out
	}
	ql := strings.ToLower(strings.TrimSpace(q))
	for _, e := range x.entries {
		if strings.Contains(e.lower, ql) {
			out = append(out, e.name)
			if len(out) >= k {
				break
			}
		}
	}
	return out
}

// BestPartial returns the entry whose name best aligns inside text, when
// the window similarity reaches floor.
func (x *Index) BestPartial(text string, floor float64) (string, bool) {
	if x == nil {
		return "", false
	}
	t := Normalize(text)
	if t == "" {
		return "", false
	}
	bestName, bestScore := "", 0.0
	for _, e := range x.entries {
		if s := partialRatio(t, e.norm); s > bestScore {
			bestName, bestScore = e.name, s
		}
	}
	return bestName, bestName != "" && bestScore >= floor
}
