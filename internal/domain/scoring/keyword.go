package scoring

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/okian/skillcat/internal/domain/model"
)

// Keyword strategy tuning.
const (
	defaultRelatedWeight     = 0.6
	defaultRelatedSaturation = 3
)

var stopWords = map[string]struct{}{ //nolint:gochecknoglobals // read-only lookup table
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "both": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "into": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "using": {}, "with": {}, "year": {}, "experience": {},
}

// KeywordOption configures a KeywordStrategy.
type KeywordOption func(*KeywordStrategy)

// WithRelatedWeight sets the share of the score that comes from related-skill
// hits; the remainder comes from vocabulary coverage. Must be within [0,1].
func WithRelatedWeight(w float64) KeywordOption {
	return func(k *KeywordStrategy) {
		if w >= 0 && w <= 1 {
			k.relatedWeight = w
		}
	}
}

// WithRelatedSaturation sets how many related-skill hits earn the full
// related share.
func WithRelatedSaturation(n int) KeywordOption {
	return func(k *KeywordStrategy) {
		if n > 0 {
			k.relatedSaturation = n
		}
	}
}

// KeywordStrategy scores categories by rule-based token matching.
//
// A related skill is a hit when every one of its tokens occurs in the
// description. Coverage is the fraction of description tokens found anywhere
// in the category's name, description or related skills.
//
//	score = w * min(1, hits/saturation) + (1-w) * coverage
type KeywordStrategy struct {
	relatedWeight     float64
	relatedSaturation int
}

// NewKeywordStrategy creates a keyword strategy.
func NewKeywordStrategy(opts ...KeywordOption) *KeywordStrategy {
	k := &KeywordStrategy{
		relatedWeight:     defaultRelatedWeight,
		relatedSaturation: defaultRelatedSaturation,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Match implements Strategy.
func (k *KeywordStrategy) Match(ctx context.Context, description string, categories []model.Category) ([]model.MatchResult, error) {
	desc := tokenSet(description)
	results := make([]model.MatchResult, 0, len(categories))

	for _, c := range categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hits := make([]string, 0, len(c.RelatedSkills))
		for _, skill := range c.RelatedSkills {
			if containsAll(desc, tokens(skill)) {
				hits = append(hits, skill)
			}
		}

		vocab := tokenSet(c.Name + " " + c.Description + " " + strings.Join(c.RelatedSkills, " "))
		coverage := 0.0
		if len(desc) > 0 {
			overlap := 0
			for t := range desc {
				if _, ok := vocab[t]; ok {
					overlap++
				}
			}
			coverage = float64(overlap) / float64(len(desc))
		}

		related := math.Min(1, float64(len(hits))/float64(k.relatedSaturation))
		score := k.relatedWeight*related + (1-k.relatedWeight)*coverage

		results = append(results, model.MatchResult{
			Category:      c.Name,
			Score:         math.Max(0, math.Min(1, score)),
			RelatedSkills: hits,
		})
	}
	return results, nil
}

func containsAll(set map[string]struct{}, toks []string) bool {
	if len(toks) == 0 {
		return false
	}
	for _, t := range toks {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}

func tokenSet(s string) map[string]struct{} {
	toks := tokens(s)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}

// tokens lowercases s, splits it on anything but letters and digits, drops
// stop words and folds a trailing plural "s".
func tokens(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 3 && strings.HasSuffix(f, "s") && !strings.HasSuffix(f, "ss") {
			f = strings.TrimSuffix(f, "s")
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}
