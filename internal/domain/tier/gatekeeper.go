// Package tier implements the gatekeeper: a second, independent tier gate
// layered after the score engine's numeric tier.  It re-validates categorical
// eligibility with its own, stricter thresholds; the two gates deliberately
// disagree (engine TITAN at score ≥90 vs gatekeeper at ≥95) and callers
// choose which policy — or both — to apply.  The evaluation record persists
// the engine tier; the gatekeeper assignment rides alongside for display.
package tier

import (
	"fmt"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
)

// Gatekeeper thresholds.  Stricter than the engine's by design.
const (
	TitanScoreThreshold  = 95.0
	EliteScoreThreshold  = 80.0
	MasterScoreThreshold = 60.0

	TitanMinManualVerifications = 3
	TitanMinHIndex              = 60.0
	TitanMinLivesSaved          = 20000
	EliteMinPublications        = 100
	MasterMinYearsActive        = 15.0
)

// Facts carries the categorical inputs the gatekeeper checks beyond the
// numeric score.
type Facts struct {
	HasInvention        bool    `json:"has_invention"`
	ManualVerifications int     `json:"manual_verifications"`
	HIndex              float64 `json:"h_index"`
	LivesSaved          int     `json:"lives_saved"`
	LicenseVerified     bool    `json:"license_verified"`
	Publications        int     `json:"publications"`
	YearsActive         float64 `json:"years_active"`
}

// Assignment is the gatekeeper's verdict.  Reason and UnmetRequirements are
// display-only explanatory text; only Tier and MeetsAllRequirements are
// machine contracts.
type Assignment struct {
	Tier                 scoring.Tier `json:"tier"`
	Reason               string       `json:"reason"`
	MeetsAllRequirements bool         `json:"meets_all_requirements"`
	UnmetRequirements    []string     `json:"unmet_requirements,omitempty"`
}

// AssignTier applies the gatekeeper policy to an engine result.
//
// Downgrade semantics: a candidate that clears a tier's score threshold but
// misses a categorical requirement is re-evaluated one tier down with the
// same score — never rejected outright.  The MASTER years-active requirement
// is soft: it flags MeetsAllRequirements without downgrading.  That asymmetry
// against TITAN/ELITE is a documented design choice, not an oversight.
func AssignTier(result scoring.ScoreResult, facts Facts) Assignment {
	if result.Disqualified {
		return Assignment{
			Tier:                 scoring.TierUnranked,
			Reason:               fmt.Sprintf("disqualified: %s", result.Reason),
			MeetsAllRequirements: false,
			UnmetRequirements:    []string{result.Reason},
		}
	}

	score := result.ScoreValue()
	var unmet []string

	// ── TITAN ─────────────────────────────────────────────────────────────
	if score >= TitanScoreThreshold {
		titanUnmet := titanRequirementGaps(facts)
		if len(titanUnmet) == 0 {
			return Assignment{
				Tier:                 scoring.TierTitan,
				Reason:               fmt.Sprintf("score %.2f meets the TITAN threshold of %.0f with all categorical requirements satisfied", score, TitanScoreThreshold),
				MeetsAllRequirements: true,
			}
		}
		// Missing TITAN requirements downgrade to the ELITE evaluation.
		unmet = append(unmet, titanUnmet...)
	}

	// ── ELITE ─────────────────────────────────────────────────────────────
	if score >= EliteScoreThreshold {
		eliteUnmet := eliteRequirementGaps(facts)
		if len(eliteUnmet) == 0 {
			reason := fmt.Sprintf("score %.2f meets the ELITE threshold of %.0f", score, EliteScoreThreshold)
			if len(unmet) > 0 {
				reason = fmt.Sprintf("downgraded from TITAN candidacy: score %.2f meets the ELITE threshold of %.0f", score, EliteScoreThreshold)
			}
			return Assignment{
				Tier:                 scoring.TierElite,
				Reason:               reason,
				MeetsAllRequirements: len(unmet) == 0,
				UnmetRequirements:    unmet,
			}
		}
		// Missing ELITE requirements downgrade to the MASTER evaluation.
		unmet = append(unmet, eliteUnmet...)
	}

	// ── MASTER ────────────────────────────────────────────────────────────
	if score >= MasterScoreThreshold {
		assignment := Assignment{
			Tier:                 scoring.TierMaster,
			Reason:               fmt.Sprintf("score %.2f meets the MASTER threshold of %.0f", score, MasterScoreThreshold),
			MeetsAllRequirements: len(unmet) == 0,
			UnmetRequirements:    unmet,
		}
		if len(unmet) > 0 {
			assignment.Reason = fmt.Sprintf("downgraded: score %.2f meets the MASTER threshold of %.0f", score, MasterScoreThreshold)
		}
		// Soft requirement: short careers keep MASTER but are flagged.
		if facts.YearsActive < MasterMinYearsActive {
			assignment.MeetsAllRequirements = false
			assignment.UnmetRequirements = append(assignment.UnmetRequirements,
				fmt.Sprintf("years active %.0f is below the recommended minimum of %.0f", facts.YearsActive, MasterMinYearsActive))
		}
		return assignment
	}

	// ── Below every threshold ─────────────────────────────────────────────
	return Assignment{
		Tier:                 scoring.TierUnranked,
		Reason:               fmt.Sprintf("score %.2f is below the MASTER threshold of %.0f", score, MasterScoreThreshold),
		MeetsAllRequirements: false,
		UnmetRequirements: append(unmet,
			fmt.Sprintf("score %.2f is below the minimum ranked threshold of %.0f", score, MasterScoreThreshold)),
	}
}

// titanRequirementGaps returns one human-readable string per failed TITAN
// categorical requirement.
func titanRequirementGaps(facts Facts) []string {
	var unmet []string
	if !facts.HasInvention {
		unmet = append(unmet, "TITAN requires at least one credited invention")
	}
	if facts.ManualVerifications < TitanMinManualVerifications {
		unmet = append(unmet, fmt.Sprintf("TITAN requires %d manual peer verifications, have %d",
			TitanMinManualVerifications, facts.ManualVerifications))
	}
	if facts.HIndex < TitanMinHIndex && facts.LivesSaved < TitanMinLivesSaved {
		unmet = append(unmet, fmt.Sprintf("TITAN requires h-index ≥ %.0f or lives saved ≥ %d, have %.0f and %d",
			TitanMinHIndex, TitanMinLivesSaved, facts.HIndex, facts.LivesSaved))
	}
	return unmet
}

// eliteRequirementGaps returns one human-readable string per failed ELITE
// categorical requirement.
func eliteRequirementGaps(facts Facts) []string {
	var unmet []string
	if !facts.LicenseVerified {
		unmet = append(unmet, "ELITE requires a verified license")
	}
	if facts.Publications < EliteMinPublications {
		unmet = append(unmet, fmt.Sprintf("ELITE requires %d publications, have %d",
			EliteMinPublications, facts.Publications))
	}
	return unmet
}
