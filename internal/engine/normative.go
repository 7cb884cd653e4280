package engine

import (
	"strings"
	"time"

	"github.com/clinsa/psicotest-backend/internal/model"
)

// Sentinel band labels. A raw score outside every configured range maps to
// BandOutOfRange; a domain with no configured table at all maps to
// BandNotAvailable. Both degrade gracefully: a best-effort score is still
// useful to the clinician, so missing configuration never aborts scoring.
const (
	BandOutOfRange   = "Fuera de rango"
	BandNotAvailable = "Interpretación no disponible"
)

// ScoreDomains computes the normative interpretation for every domain of an
// instrument. Questions without a domain are ignored. For each domain the raw
// score is the count of questions whose selected option value matches the
// instrument's negative marker (case-insensitive); the band label comes from
// the first configured range containing the raw score.
//
// Domains are returned in order of first appearance in the question set.
func ScoreDomains(
	questions []model.Question,
	answers []model.Answer,
	respondentID int,
	tables map[string][]model.BandRange,
	negativeMarker string,
	now time.Time,
) []model.DomainScore {
	grouped := groupByQuestion(answers, respondentID)

	var order []string
	raw := make(map[string]int)
	counts := make(map[string]int)

	for i := range questions {
		q := &questions[i]
		if q.Domain == nil || *q.Domain == "" {
			continue
		}
		domain := *q.Domain
		if _, seen := counts[domain]; !seen {
			order = append(order, domain)
		}
		counts[domain]++
		if hasMarkerAnswer(q, grouped[q.ID], negativeMarker) {
			raw[domain]++
		}
	}

	scores := make([]model.DomainScore, 0, len(order))
	for _, domain := range order {
		scores = append(scores, model.DomainScore{
			Domain:        domain,
			RawScore:      raw[domain],
			QuestionCount: counts[domain],
			Band:          LookupBand(tables, domain, raw[domain]),
			UpdatedAt:     now,
		})
	}
	return scores
}

// LookupBand resolves a raw score to its band label through the per-domain
// range table. Bounds are inclusive on both ends; the first matching range
// wins, so a score sitting exactly on a boundary belongs to the range that
// declares it.
func LookupBand(tables map[string][]model.BandRange, domain string, rawScore int) string {
	ranges, ok := tables[domain]
	if !ok || len(ranges) == 0 {
		return BandNotAvailable
	}
	for _, r := range ranges {
		if rawScore >= r.Min && rawScore <= r.Max {
			return r.Label
		}
	}
	return BandOutOfRange
}

// hasMarkerAnswer reports whether any of the question's answer rows selected
// an option whose underlying value equals the negative marker.
func hasMarkerAnswer(q *model.Question, answers []model.Answer, marker string) bool {
	for i := range answers {
		if answers[i].OptionID == nil {
			continue
		}
		opt := q.OptionByID(*answers[i].OptionID)
		if opt != nil && strings.EqualFold(opt.Value, marker) {
			return true
		}
	}
	return false
}
