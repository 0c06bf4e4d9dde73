package classifier

import (
	"context"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/Chative-core-poc-v1/intake/internal/intake/model"
	"github.com/Chative-core-poc-v1/intake/internal/intake/registry"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

// typoMinLen is the shortest word that tolerates a one-edit typo.
const typoMinLen = 5

// KeywordClassifier scores the taxonomy by keyword hits. It is deterministic
// and needs no external service.
type KeywordClassifier struct {
	rules   []categoryRule
	general []string
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: taxonomy, general: generalTerms}
}

type document struct {
	padded string
	tokens []string
}

func newDocument(text string) document {
	norm := registry.Normalize(text)
	return document{padded: " " + norm + " ", tokens: strings.Fields(norm)}
}

func (d document) has(keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	if strings.Contains(kw, " ") {
		return strings.Contains(d.padded, " "+kw+" ")
	}
	for _, t := range d.tokens {
		if t == kw {
			return true
		}
		if len(kw) >= typoMinLen && len(t) >= typoMinLen && fuzzy.LevenshteinDistance(t, kw) <= 1 {
			return true
		}
	}
	return false
}

func (d document) hits(keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if d.has(kw) {
			n++
		}
	}
	return n
}

func (k *KeywordClassifier) Classify(_ context.Context, text string) model.Classification {
	doc := newDocument(text)
	if len(doc.tokens) == 0 {
		return model.Classification{}
	}

	best, bestHits := -1, 0
	for i, c := range k.rules {
		if h := doc.hits(c.Keywords); h > bestHits {
			best, bestHits = i, h
		}
	}
	if best < 0 || bestHits < minCategoryHitCount {
		if doc.hits(k.general) > 0 {
			return model.Classification{Category: CategoryOthers, SubCategory: generalSubCategory}
		}
		logx.Debug().Str("backend", BackendKeyword).Msg("No category matched")
		return model.Classification{}
	}

	cat := k.rules[best]
	sub, subHits := cat.DefaultSub, 0
	for _, s := range cat.Subs {
		if h := doc.hits(s.Keywords); h > subHits {
			sub, subHits = s.Name, h
		}
	}

	logx.Debug().
		Str("backend", BackendKeyword).
		Str("category", cat.Name).
		Str("sub_category", sub).
		Int("category_hits", bestHits).
		Int("sub_hits", subHits).
		Msg("Keyword classification")
	return model.Classification{Category: cat.Name, SubCategory: sub}
}
