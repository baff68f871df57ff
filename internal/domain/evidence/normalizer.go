// Package evidence converts raw citation counts and journal names into
// normalized 0–100 sub-scores.  Like the rest of the scoring core it is pure
// computation: unknown journals fall back to a neutral multiplier and invalid
// numeric input is clamped, never rejected.
package evidence

import "strings"

// JournalCitations is one per-journal citation entry used for impact-factor
// weighted scoring.
type JournalCitations struct {
	Journal       string  `json:"journal"`
	CitationCount float64 `json:"citation_count"`
}

// journalImpactFactors is the curated journal → impact factor table.  Lookup
// is a fuzzy case-insensitive substring match in either direction, so both
// "NEJM style citations in The New England Journal of Medicine (2021)" and
// abbreviated forms resolve.
var journalImpactFactors = map[string]float64{
	"new england journal of medicine": 91.2,
	"nejm":                            91.2,
	"the lancet":                      79.3,
	"lancet":                          79.3,
	"jama":                            56.3,
	"nature medicine":                 53.4,
	"bmj":                             39.9,
	"british medical journal":         39.9,
	"circulation":                     29.7,
	"journal of clinical oncology":    28.2,
	"european heart journal":          22.7,
	"annals of internal medicine":     19.3,
	"jama surgery":                    13.6,
	"annals of surgery":               10.1,
	"journal of the american college of cardiology": 17.6,
	"british journal of surgery":                    8.6,
	"journal of neurosurgery":                       5.3,
	"surgery":                                       4.0,
	"world journal of surgery":                      3.1,
	"indian journal of surgery":                     0.8,
}

// ImpactFactorMultiplier maps a journal name to a discrete citation-weight
// multiplier based on its impact factor:
//
//	IF ≥ 50 → 5.0, IF ≥ 20 → 3.0, IF ≥ 10 → 2.0, IF ≥ 5 → 1.5, else 1.0.
//
// Unknown journals return the neutral multiplier 1.0, never an error.
func ImpactFactorMultiplier(journalName string) float64 {
	name := strings.ToLower(strings.TrimSpace(journalName))
	if name == "" {
		return 1.0
	}

	impactFactor, exact := journalImpactFactors[name]
	if !exact {
		// Fuzzy fallback: substring in either direction; ambiguous names
		// resolve to the most prestigious match.
		for known, factor := range journalImpactFactors {
			if strings.Contains(name, known) || strings.Contains(known, name) {
				if factor > impactFactor {
					impactFactor = factor
				}
			}
		}
	}

	switch {
	case impactFactor >= 50:
		return 5.0
	case impactFactor >= 20:
		return 3.0
	case impactFactor >= 10:
		return 2.0
	case impactFactor >= 5:
		return 1.5
	default:
		return 1.0
	}
}

// Normalize maps value onto a 0–100 scale against a ceiling: (value/ceiling)
// × 100, capped at 100.  Negative values clamp to 0 — the scoring core treats
// out-of-range numeric input as a caller contract violation and clamps
// defensively rather than erroring, applied consistently across every metric.
// A non-positive ceiling also yields 0.
func Normalize(value, ceiling float64) float64 {
	if value <= 0 || ceiling <= 0 {
		return 0
	}
	score := value / ceiling * 100
	if score > 100 {
		return 100
	}
	return score
}

// IFWeightedCitationScore computes the citation sub-score.  When a per-journal
// breakdown is supplied, each journal's citations are weighted by its
// impact-factor multiplier and the sum is normalized against three times the
// base ceiling — IF weighting can legitimately exceed the raw citation scale.
// Without a breakdown it falls back to plain Normalize(citations, ceiling).
func IFWeightedCitationScore(citations float64, perJournal []JournalCitations, ceiling float64) float64 {
	if len(perJournal) == 0 {
		return Normalize(citations, ceiling)
	}

	weighted := 0.0
	for _, entry := range perJournal {
		if entry.CitationCount <= 0 {
			continue
		}
		weighted += entry.CitationCount * ImpactFactorMultiplier(entry.Journal)
	}
	return Normalize(weighted, ceiling*3)
}
