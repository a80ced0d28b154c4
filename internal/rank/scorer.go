// Package rank orders search listings by how well they match a rule, so a
// capped daily budget goes to the strongest matches first.
package rank

import (
	"sort"
	"strings"

	"jobtrack-engine/internal/domain"
)

type Scorer interface {
	Score(listing domain.Listing) int
}

// KeywordScorer scores a listing title against a rule's search keywords.
// Each keyword hit counts, the full phrase counts extra.
type KeywordScorer struct {
	keywords []string
	phrase   string
}

func NewKeywordScorer(rule domain.AutomationRule) KeywordScorer {
	phrase := strings.ToLower(strings.TrimSpace(rule.SearchKeywords))
	var kws []string
	for _, k := range strings.FieldsFunc(phrase, func(r rune) bool {
		return r == ' ' || r == ','
	}) {
		if k != "" {
			kws = append(kws, k)
		}
	}
	return KeywordScorer{keywords: kws, phrase: phrase}
}

func (s KeywordScorer) Score(listing domain.Listing) int {
	title := strings.ToLower(listing.Title)

	score := 0
	for _, k := range s.keywords {
		if strings.Contains(title, k) {
			score++
		}
	}
	if s.phrase != "" && strings.Contains(title, s.phrase) {
		score += len(s.keywords)
	}
	return score
}

// Sort orders listings best match first. Ties keep their original order,
// which is the board's own ranking.
func Sort(listings []domain.Listing, s Scorer) {
	sort.SliceStable(listings, func(i, j int) bool {
		return s.Score(listings[i]) > s.Score(listings[j])
	})
}
