package scoring

import (
	"github.com/openmdr/MedRank-Intelligence/internal/domain/evidence"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/pillar"
)

// Tier is the discrete reputation bracket produced by the engine.
type Tier string

const (
	TierTitan    Tier = "TITAN"
	TierElite    Tier = "ELITE"
	TierMaster   Tier = "MASTER"
	TierUnranked Tier = "UNRANKED"
)

// Disqualification reasons.  These are the only two terminal states; both are
// ordinary return values, never errors.
const (
	ReasonRetracted           = "retracted"
	ReasonUnverifiableLicense = "unverifiable license"
)

// ScoreInput is the immutable value object a single evaluation is computed
// from.  The engine makes no assumption about how the fields were obtained;
// upstream sync jobs are responsible for resolving citations, honors, and
// registry facts into these plain values.
type ScoreInput struct {
	Citations   float64 `json:"citations"`
	YearsActive float64 `json:"years_active"`
	HIndex      float64 `json:"h_index"`

	VerifiedSurgeries   int `json:"verified_surgeries"`
	LivesSaved          int `json:"lives_saved"`
	TechniquesInvented  int `json:"techniques_invented"`
	BoardCertifications int `json:"board_certifications"`
	ManualVerifications int `json:"manual_verifications"`

	HasInvention    bool `json:"has_invention"`
	LicenseVerified bool `json:"license_verified"`
	IsHistorical    bool `json:"is_historical"`
	IsPioneer       bool `json:"is_pioneer"`
	IsLeader        bool `json:"is_leader"`
	HasRetraction   bool `json:"has_retraction"`

	// Pillars is a caller-supplied seed.  The engine recomputes pillars from
	// the raw counters above; the seed is honored only when every raw counter
	// is zero, so partial or legacy callers can short-circuit the pipeline.
	Pillars pillar.FourPillars `json:"pillars"`

	Honors               []honor.Award               `json:"honors,omitempty"`
	JournalImpactFactors []evidence.JournalCitations `json:"journal_impact_factors,omitempty"`

	// Historical-subject decay inputs.  YearOfDeath zero means unknown, in
	// which case no decay is applied.
	YearOfDeath                int  `json:"year_of_death,omitempty"`
	TechniqueStillGoldStandard bool `json:"technique_still_gold_standard,omitempty"`
}

// Breakdown itemises every weighted component that entered the final score,
// for auditability.  All factor values are post-weighting contributions.
type Breakdown struct {
	CitationScore   float64 `json:"citation_score"`
	YearsScore      float64 `json:"years_score"`
	TechniqueScore  float64 `json:"technique_score"`
	HonorScore      float64 `json:"honor_score"`
	PioneerBonus    float64 `json:"pioneer_bonus"`
	LeadershipBonus float64 `json:"leadership_bonus"`
	FactorSum       float64 `json:"factor_sum"`
	PillarAverage   float64 `json:"pillar_average"`
	DecayFactor     float64 `json:"decay_factor"`
}

// ScoreResult is the immutable output of one engine invocation.
//
// Score is nil iff the profile was disqualified for an unverifiable license;
// a retraction disqualification instead carries a concrete zero score.  The
// two terminal states are deliberately distinct and must never be conflated —
// callers must branch on Disqualified before trusting Score.
type ScoreResult struct {
	Score          *float64           `json:"score"`
	Tier           Tier               `json:"tier"`
	Pillars        pillar.FourPillars `json:"pillars"`
	Breakdown      Breakdown          `json:"breakdown"`
	Disqualified   bool               `json:"disqualified"`
	Reason         string             `json:"reason,omitempty"`
	FloorProtected bool               `json:"floor_protected"`
}

// ScoreValue returns the dereferenced score, or 0 when Score is nil.
func (r ScoreResult) ScoreValue() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}
