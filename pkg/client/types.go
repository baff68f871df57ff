package client

import "time"

// Pillars are the four reputation pillars, each on a 0-100 scale.
type Pillars struct {
	ClinicalMasteryIndex  float64 `json:"clinical_mastery_index"`
	IntellectualLegacy    float64 `json:"intellectual_legacy"`
	GlobalMentorshipScore float64 `json:"global_mentorship_score"`
	HumanitarianImpact    float64 `json:"humanitarian_impact"`
}

// Breakdown itemises the weighted components behind a score.
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

// Evaluation is one persisted score-engine run for one profile. Score is nil
// when the profile was disqualified for an unverifiable license.
type Evaluation struct {
	ID        string `json:"id"`
	ProfileID string `json:"profile_id"`

	Score          *float64  `json:"score"`
	EngineTier     string    `json:"engine_tier"`
	Pillars        Pillars   `json:"pillars"`
	Breakdown      Breakdown `json:"breakdown"`
	Disqualified   bool      `json:"disqualified"`
	Reason         string    `json:"reason,omitempty"`
	FloorProtected bool      `json:"floor_protected"`

	GateTier          string   `json:"gate_tier"`
	GateReason        string   `json:"gate_reason,omitempty"`
	MeetsGateCriteria bool     `json:"meets_gate_criteria"`
	UnmetRequirements []string `json:"unmet_requirements,omitempty"`

	EngineVersion string    `json:"engine_version"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}

// ScoreValue returns the dereferenced score, or 0 when Score is nil.
func (e *Evaluation) ScoreValue() float64 {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}

// BatchItemError is one failed profile inside a batch evaluation.
type BatchItemError struct {
	ProfileID string `json:"profile_id"`
	Error     string `json:"error"`
}

// BatchResult is the outcome of a batch evaluation.
type BatchResult struct {
	Evaluations []*Evaluation    `json:"evaluations"`
	Failed      []BatchItemError `json:"failed,omitempty"`
	Total       int              `json:"total"`
}

// TierDistribution is the platform-wide tier breakdown.
type TierDistribution struct {
	Total        int            `json:"total"`
	Counts       map[string]int `json:"counts"`
	Disqualified int            `json:"disqualified"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// LeaderboardEntry is one ranked profile.
type LeaderboardEntry struct {
	ProfileID string  `json:"profile_id"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

// Snapshot is one evaluation projected for comparison.
type Snapshot struct {
	EvaluationID string    `json:"evaluation_id"`
	Score        float64   `json:"score"`
	EngineTier   string    `json:"engine_tier"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// SignificantChange flags a component that moved materially between runs.
type SignificantChange struct {
	Component     string  `json:"component"`
	OldValue      float64 `json:"old_value"`
	NewValue      float64 `json:"new_value"`
	ChangePercent float64 `json:"change_percent"`
}

// Comparison contrasts a profile's recent evaluations.
type Comparison struct {
	ProfileID          string              `json:"profile_id"`
	Snapshots          []Snapshot          `json:"snapshots"`
	Trend              string              `json:"trend"`
	ScoreDelta         float64             `json:"score_delta"`
	TierChanged        bool                `json:"tier_changed"`
	SignificantChanges []SignificantChange `json:"significant_changes,omitempty"`
}

// Award is one named honor attached to a profile.
type Award struct {
	Name        string `json:"name"`
	Year        int    `json:"year,omitempty"`
	IssuingBody string `json:"issuing_body,omitempty"`
}

// JournalCitations is a per-journal citation count.
type JournalCitations struct {
	Journal       string  `json:"journal"`
	CitationCount float64 `json:"citation_count"`
}

// Profile is a practitioner directory record.
type Profile struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
	Country   string `json:"country"`

	LicenseVerified bool `json:"license_verified"`
	HasRetraction   bool `json:"has_retraction"`

	IsHistorical               bool `json:"is_historical"`
	YearOfDeath                int  `json:"year_of_death,omitempty"`
	TechniqueStillGoldStandard bool `json:"technique_still_gold_standard,omitempty"`

	Citations    float64 `json:"citations"`
	HIndex       float64 `json:"h_index"`
	YearsActive  float64 `json:"years_active"`
	Publications int     `json:"publications"`

	VerifiedSurgeries   int `json:"verified_surgeries"`
	LivesSaved          int `json:"lives_saved"`
	TechniquesInvented  int `json:"techniques_invented"`
	BoardCertifications int `json:"board_certifications"`
	ManualVerifications int `json:"manual_verifications"`

	HasInvention bool `json:"has_invention"`
	IsPioneer    bool `json:"is_pioneer"`
	IsLeader     bool `json:"is_leader"`

	Honors               []Award            `json:"honors,omitempty"`
	JournalImpactFactors []JournalCitations `json:"journal_impact_factors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ProfilePage is one page of directory listings.
type ProfilePage struct {
	Items      []*Profile `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// SearchHit is one matched profile projection from the search index.
type SearchHit struct {
	ProfileID string  `json:"profile_id"`
	FullName  string  `json:"full_name"`
	Specialty string  `json:"specialty"`
	Country   string  `json:"country"`
	Score     float64 `json:"score"`
	Tier      string  `json:"tier"`
}

// SearchResult is a scored search response.
type SearchResult struct {
	Total int         `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// LineageEdge is one mentorship relationship.
type LineageEdge struct {
	MentorID  string `json:"mentor_id"`
	MenteeID  string `json:"mentee_id"`
	Field     string `json:"field,omitempty"`
	StartYear int    `json:"start_year,omitempty"`
}

// LineageNode is one practitioner in a lineage traversal.
type LineageNode struct {
	ProfileID string `json:"profile_id"`
	FullName  string `json:"full_name"`
	Specialty string `json:"specialty"`
	Depth     int    `json:"depth"`
}

// Lineage is a profile's mentorship neighborhood.
type Lineage struct {
	ProfileID string        `json:"profile_id"`
	Mentors   []LineageNode `json:"mentors"`
	Mentees   []LineageNode `json:"mentees"`
	Depth     int           `json:"depth"`
}
