// Package evaluation models a persisted score evaluation: one engine run for
// one profile, kept as an append-only history row for auditability.  The
// engine tier is the persisted tier of record; the gatekeeper's assignment is
// stored alongside in a separate column and never overwrites it.
package evaluation

import (
	"context"
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/pillar"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/tier"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// Evaluation is one immutable score-engine run for one profile.
type Evaluation struct {
	ID        common.EvaluationID `json:"id"`
	ProfileID common.ProfileID    `json:"profile_id"`

	// Score is nil iff the profile was disqualified for an unverifiable
	// license; a retraction carries a concrete zero.
	Score          *float64           `json:"score"`
	EngineTier     scoring.Tier       `json:"engine_tier"`
	Pillars        pillar.FourPillars `json:"pillars"`
	Breakdown      scoring.Breakdown  `json:"breakdown"`
	Disqualified   bool               `json:"disqualified"`
	Reason         string             `json:"reason,omitempty"`
	FloorProtected bool               `json:"floor_protected"`

	// Gatekeeper verdict, display-only.
	GateTier          scoring.Tier `json:"gate_tier"`
	GateReason        string       `json:"gate_reason,omitempty"`
	MeetsGateCriteria bool         `json:"meets_gate_criteria"`
	UnmetRequirements []string     `json:"unmet_requirements,omitempty"`

	EngineVersion string    `json:"engine_version"`
	EvaluatedAt   time.Time `json:"evaluated_at"`
}

// NewEvaluation assembles an evaluation record from the two gate outputs.
func NewEvaluation(profileID common.ProfileID, result scoring.ScoreResult, gate tier.Assignment, engineVersion string, at time.Time) *Evaluation {
	return &Evaluation{
		ID:                common.EvaluationID(common.GenerateID("eval")),
		ProfileID:         profileID,
		Score:             result.Score,
		EngineTier:        result.Tier,
		Pillars:           result.Pillars,
		Breakdown:         result.Breakdown,
		Disqualified:      result.Disqualified,
		Reason:            result.Reason,
		FloorProtected:    result.FloorProtected,
		GateTier:          gate.Tier,
		GateReason:        gate.Reason,
		MeetsGateCriteria: gate.MeetsAllRequirements,
		UnmetRequirements: gate.UnmetRequirements,
		EngineVersion:     engineVersion,
		EvaluatedAt:       at,
	}
}

// ScoreValue returns the dereferenced score, or 0 when Score is nil.
func (e *Evaluation) ScoreValue() float64 {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}

// HistoryQuery narrows evaluation history reads.
type HistoryQuery struct {
	Limit  int
	Offset int
}

// Repository defines the persistence contract for evaluation history.
// Evaluations are append-only: there is no update or delete.
type Repository interface {
	Save(ctx context.Context, e *Evaluation) error
	GetByID(ctx context.Context, id common.EvaluationID) (*Evaluation, error)
	ListByProfile(ctx context.Context, profileID common.ProfileID, q HistoryQuery) ([]*Evaluation, error)
	LatestPerProfile(ctx context.Context) ([]*Evaluation, error)
}
