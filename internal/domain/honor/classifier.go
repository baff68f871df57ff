// Package honor classifies free-text award names into prestige tiers and
// aggregates a profile's award list into a single honor bonus.  The package is
// pure computation over a static table: no I/O, no external lookups, and no
// errors — unrecognised award names silently classify as TierUnclassified.
package honor

import "strings"

// Tier is the prestige bracket of a classified honor.
type Tier string

const (
	TierGlobalLandmark         Tier = "GLOBAL_LANDMARK"
	TierNationalHonor          Tier = "NATIONAL_HONOR"
	TierProfessionalExcellence Tier = "PROFESSIONAL_EXCELLENCE"
	TierUnclassified           Tier = "UNCLASSIFIED"
)

// rank orders tiers for highest-tier tracking; higher is more prestigious.
func (t Tier) rank() int {
	switch t {
	case TierGlobalLandmark:
		return 3
	case TierNationalHonor:
		return 2
	case TierProfessionalExcellence:
		return 1
	default:
		return 0
	}
}

// Points returns the fixed point value awarded per classified honor.
func (t Tier) Points() float64 {
	switch t {
	case TierGlobalLandmark:
		return 100
	case TierNationalHonor:
		return 75
	case TierProfessionalExcellence:
		return 50
	default:
		return 0
	}
}

// Award is a raw, unvalidated honor entry as supplied by upstream callers.
// Classification is derived on every call and never stored.
type Award struct {
	Name        string `json:"name"`
	Year        int    `json:"year,omitempty"`
	IssuingBody string `json:"issuing_body,omitempty"`
}

// Classification is the derived result for a single award.
type Classification struct {
	Tier    Tier         `json:"tier"`
	Points  float64      `json:"points"`
	Matched *GlobalHonor `json:"matched_honor,omitempty"`
}

// BonusResult aggregates a full award list.
type BonusResult struct {
	TotalPoints float64 `json:"total_points"`
	HighestTier Tier    `json:"highest_tier"`

	// FloorProtection is set when the highest tier seen is GLOBAL_LANDMARK or
	// NATIONAL_HONOR.  The score engine consumes it as a contract: holders of
	// top-two-tier honors are never demoted below ELITE by numeric score alone.
	FloorProtection bool `json:"floor_protection"`

	Classifications []Classification `json:"classifications,omitempty"`
}

// quoteReplacer unifies typographic quote characters before matching.
var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‛", "'",
	"“", `"`, "”", `"`,
	"`", "'", "´", "'",
)

// normalizeName lowercases, unifies quotes, collapses internal whitespace, and
// trims the award name so that cosmetic differences never defeat a match.
func normalizeName(name string) string {
	s := strings.ToLower(quoteReplacer.Replace(name))
	return strings.Join(strings.Fields(s), " ")
}

// ClassifyAward maps a free-text award name to a tier.  Matching order, first
// hit wins:
//
//  1. exact match against the normalized table names;
//  2. substring match in either direction against the table;
//  3. keyword match against the curated tier-indicative keyword list;
//  4. fallback to TierUnclassified with zero points.
//
// ClassifyAward never fails; garbage input degrades to TierUnclassified.
func ClassifyAward(name string) Classification {
	normalized := normalizeName(name)
	if normalized == "" {
		return Classification{Tier: TierUnclassified}
	}

	// Stage 1: exact.
	for i := range knownHonors {
		if normalizeName(knownHonors[i].Name) == normalized {
			return Classification{
				Tier:    knownHonors[i].Tier,
				Points:  knownHonors[i].Tier.Points(),
				Matched: &knownHonors[i],
			}
		}
	}

	// Stage 2: substring, either direction.
	for i := range knownHonors {
		tableName := normalizeName(knownHonors[i].Name)
		if strings.Contains(normalized, tableName) || strings.Contains(tableName, normalized) {
			return Classification{
				Tier:    knownHonors[i].Tier,
				Points:  knownHonors[i].Tier.Points(),
				Matched: &knownHonors[i],
			}
		}
	}

	// Stage 3: keywords.
	for _, rule := range tierKeywords {
		if strings.Contains(normalized, rule.Keyword) {
			return Classification{Tier: rule.Tier, Points: rule.Tier.Points()}
		}
	}

	return Classification{Tier: TierUnclassified}
}

// CalculateBonus classifies every award in the list and aggregates the result.
// Awards that matched the same table category are deduplicated: only the first
// occurrence per category contributes points.  Awards without a matched
// category (keyword-only or unclassified) are never deduplicated against each
// other, since nothing ties them together.
func CalculateBonus(awards []Award) BonusResult {
	result := BonusResult{HighestTier: TierUnclassified}
	if len(awards) == 0 {
		return result
	}

	seenCategories := make(map[string]bool, len(awards))
	result.Classifications = make([]Classification, 0, len(awards))

	for _, award := range awards {
		c := ClassifyAward(award.Name)
		result.Classifications = append(result.Classifications, c)

		// Highest tier considers every award, deduplicated or not.
		if c.Tier.rank() > result.HighestTier.rank() {
			result.HighestTier = c.Tier
		}

		if c.Matched != nil && c.Matched.Category != "" {
			if seenCategories[c.Matched.Category] {
				continue
			}
			seenCategories[c.Matched.Category] = true
		}

		result.TotalPoints += c.Points
	}

	result.FloorProtection = result.HighestTier == TierGlobalLandmark ||
		result.HighestTier == TierNationalHonor
	return result
}
