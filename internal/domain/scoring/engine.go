// Package scoring implements the MDR score engine: a deterministic pipeline
// that converts a practitioner's heterogeneous, partially-trusted inputs into
// one bounded reputation score and a discrete tier.  Guardrails compose in a
// fixed order — disqualification first, then scoring, then legacy decay, then
// floor protection — and the whole computation is pure: no I/O, no logging,
// no shared state, identical output for identical input.
package scoring

import (
	"math"
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evidence"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/pillar"
)

// Engine computes MDR scores with a fixed, versioned constant set.  An Engine
// is immutable after construction and safe for concurrent use.
type Engine struct {
	cfg         EngineConfig
	currentYear int
}

// Option customises Engine construction.
type Option func(*Engine)

// WithCurrentYear pins the reference year used for legacy decay.  Production
// callers leave this unset (wall-clock year); tests pin it for determinism.
func WithCurrentYear(year int) Option {
	return func(e *Engine) { e.currentYear = year }
}

// NewEngine constructs an Engine.  An invalid config returns an error rather
// than a partially working engine.
func NewEngine(cfg EngineConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:         cfg,
		currentYear: time.Now().UTC().Year(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// MustNewEngine is NewEngine for static configs known to be valid.
func MustNewEngine(cfg EngineConfig, opts ...Option) *Engine {
	e, err := NewEngine(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Config returns the engine's constant set (a copy).
func (e *Engine) Config() EngineConfig { return e.cfg }

// CalculateScore runs the full evaluation pipeline for one input.
//
// Evaluation order, short-circuiting on the first terminal state:
//
//  1. retraction → score 0, UNRANKED, disqualified;
//  2. unverifiable license (non-historical only) → score nil, UNRANKED,
//     disqualified;
//  3. pillar aggregation and the weighted raw-factor sum;
//  4. 50/50 blend of factor sum and pillar average;
//  5. legacy decay for historical subjects with a known year of death;
//  6. clamp to [0,100], round to 2 decimals;
//  7. numeric tier thresholds;
//  8. honor floor protection, raising sub-ELITE tiers to ELITE (never TITAN).
func (e *Engine) CalculateScore(in ScoreInput) ScoreResult {
	// 1. A verified retraction overrides every other signal.
	if in.HasRetraction {
		zero := 0.0
		return ScoreResult{
			Score:        &zero,
			Tier:         TierUnranked,
			Disqualified: true,
			Reason:       ReasonRetracted,
		}
	}

	// 2. Living practitioners must have a verifiable license.  Historical
	// subjects are exempt: there is no registry to verify against.
	if !in.LicenseVerified && !in.IsHistorical {
		return ScoreResult{
			Score:        nil,
			Tier:         TierUnranked,
			Disqualified: true,
			Reason:       ReasonUnverifiableLicense,
		}
	}

	// 3a. Pillars.
	pillars := e.computePillars(in)

	// 3b. Weighted raw factors.
	bonus := honor.CalculateBonus(in.Honors)
	breakdown := e.computeFactors(in, bonus)

	// 4. Blend.
	breakdown.PillarAverage = pillars.WeightedAverage(e.cfg.PillarWeights)
	raw := e.cfg.FactorBlendWeight*breakdown.FactorSum +
		e.cfg.PillarBlendWeight*breakdown.PillarAverage

	// 5. Legacy decay.
	breakdown.DecayFactor = e.decayFactor(in)
	raw *= breakdown.DecayFactor

	// 6. Clamp and round.
	score := math.Round(clamp(raw, 0, 100)*100) / 100

	// 7. Numeric tier.
	tier := e.tierForScore(score)

	// 8. Floor protection: top-two-tier honors guarantee at least ELITE, but
	// TITAN must be earned through the numeric threshold.
	floorProtected := false
	if bonus.FloorProtection && tier != TierTitan && tier != TierElite {
		tier = TierElite
		floorProtected = true
	}

	return ScoreResult{
		Score:          &score,
		Tier:           tier,
		Pillars:        pillars,
		Breakdown:      breakdown,
		FloorProtected: bonus.FloorProtection || floorProtected,
	}
}

// computePillars recomputes the four pillars from raw counters.  A caller
// seed is honored only when every raw counter is zero (legacy short-circuit).
func (e *Engine) computePillars(in ScoreInput) pillar.FourPillars {
	raw := pillar.Input{
		VerifiedSurgeries:   float64(in.VerifiedSurgeries),
		YearsActive:         in.YearsActive,
		HIndex:              in.HIndex,
		Citations:           in.Citations,
		TechniquesInvented:  float64(in.TechniquesInvented),
		BoardCertifications: float64(in.BoardCertifications),
		LivesSaved:          float64(in.LivesSaved),
	}
	if raw == (pillar.Input{}) && in.Pillars != (pillar.FourPillars{}) {
		return in.Pillars
	}
	return pillar.Calculate(raw, e.cfg.Ceilings)
}

// computeFactors computes the weighted raw-factor components and their sum.
func (e *Engine) computeFactors(in ScoreInput, bonus honor.BonusResult) Breakdown {
	var b Breakdown

	citationScore := evidence.IFWeightedCitationScore(
		in.Citations, in.JournalImpactFactors, e.cfg.Ceilings.Citations)
	yearsScore := evidence.Normalize(in.YearsActive, e.cfg.Ceilings.YearsActive)

	// A confirmed invention maxes the technique factor outright; otherwise it
	// scales with the invented-technique count.
	techniqueScore := evidence.Normalize(float64(in.TechniquesInvented), e.cfg.Ceilings.TechniquesInvented)
	if in.HasInvention {
		techniqueScore = 100
	}

	b.CitationScore = e.cfg.CitationWeight * citationScore
	b.YearsScore = e.cfg.YearsActiveWeight * yearsScore
	b.TechniqueScore = e.cfg.TechniqueWeight * techniqueScore

	// The honor term participates only when honors were supplied at all, so
	// profiles without award data are not penalised by a structurally absent
	// factor.
	if len(in.Honors) > 0 {
		b.HonorScore = e.cfg.HonorWeight * math.Min(bonus.TotalPoints, e.cfg.MaxHonorScore)
	}

	if in.IsPioneer {
		b.PioneerBonus = e.cfg.PioneerBonus
	}
	if in.IsLeader {
		b.LeadershipBonus = e.cfg.LeadershipBonus
	}

	b.FactorSum = b.CitationScore + b.YearsScore + b.TechniqueScore +
		b.HonorScore + b.PioneerBonus + b.LeadershipBonus
	return b
}

// decayFactor models fading relevance of historical contributions: full value
// while the subject's technique remains the accepted standard or within the
// grace period after death, then a linear decay floored at the configured
// fraction of the original score.
func (e *Engine) decayFactor(in ScoreInput) float64 {
	if !in.IsHistorical || in.YearOfDeath <= 0 {
		return 1.0
	}
	if in.TechniqueStillGoldStandard {
		return 1.0
	}

	yearsSinceDeath := e.currentYear - in.YearOfDeath
	if yearsSinceDeath <= e.cfg.DecayGraceYears {
		return 1.0
	}

	decay := 1.0 - float64(yearsSinceDeath-e.cfg.DecayGraceYears)*e.cfg.DecayRatePerYear
	return math.Max(e.cfg.DecayFloorFactor, decay)
}

// tierForScore maps a clamped score onto the engine's numeric tiers.
func (e *Engine) tierForScore(score float64) Tier {
	switch {
	case score >= e.cfg.TitanThreshold:
		return TierTitan
	case score >= e.cfg.EliteThreshold:
		return TierElite
	case score >= e.cfg.MasterThreshold:
		return TierMaster
	default:
		return TierUnranked
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
