package scoring

import (
	"fmt"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/pillar"
)

// EngineConfig is the versioned set of constants the score engine computes
// with.  It is owned by this package on purpose: earlier revisions of the
// system scattered weight and ceiling tables across a shared app-config module
// with divergent values for the same concept (pillar blend 0.3/0.3/0.2/0.2
// here vs 0.35/0.15/0.30/0.20 in the general config, surgery ceiling 10000 vs
// 50000).  The engine's own constants are authoritative; nothing outside this
// package may redefine them.
type EngineConfig struct {
	// Version identifies the constant set for audit records.
	Version string

	// Weighted raw-factor weights.  Citation, years and technique weights
	// apply unconditionally; the honor weight applies only when the input
	// carries at least one honor.
	CitationWeight    float64
	YearsActiveWeight float64
	TechniqueWeight   float64
	HonorWeight       float64

	// Flat bonuses added to the factor sum; bounded by the final clamp.
	PioneerBonus    float64
	LeadershipBonus float64

	// Blend between the weighted factor sum and the pillar average.
	FactorBlendWeight float64
	PillarBlendWeight float64

	// PillarWeights is the engine-internal pillar blend (CMI/IL/GMS/HI).
	PillarWeights pillar.Weights

	// Ceilings is the normalization ceiling set shared with the pillar
	// aggregator.
	Ceilings pillar.Ceilings

	// MaxHonorScore caps the honor bonus points before weighting.
	MaxHonorScore float64

	// Legacy decay for historical subjects: no decay within GraceYears of
	// death, then RatePerYear per additional year, floored at FloorFactor.
	DecayGraceYears  int
	DecayRatePerYear float64
	DecayFloorFactor float64

	// Numeric tier thresholds.
	TitanThreshold  float64
	EliteThreshold  float64
	MasterThreshold float64
}

// DefaultEngineConfig returns the v1 constant set.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Version: "v1",

		CitationWeight:    0.35,
		YearsActiveWeight: 0.15,
		TechniqueWeight:   0.30,
		HonorWeight:       0.20,

		PioneerBonus:    10,
		LeadershipBonus: 5,

		FactorBlendWeight: 0.5,
		PillarBlendWeight: 0.5,

		PillarWeights: pillar.Weights{
			ClinicalMastery:  0.3,
			IntellectualLeg:  0.3,
			GlobalMentorship: 0.2,
			Humanitarian:     0.2,
		},

		// v1 ceiling set; the divergent 50000 surgery ceiling that circulated
		// in the shared config was rejected when this struct was introduced.
		Ceilings: pillar.DefaultCeilings(),

		MaxHonorScore: 100,

		DecayGraceYears:  10,
		DecayRatePerYear: 0.005,
		DecayFloorFactor: 0.5,

		TitanThreshold:  90,
		EliteThreshold:  70,
		MasterThreshold: 50,
	}
}

// Validate checks internal consistency of the configuration.
func (c EngineConfig) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("scoring: engine config version is required")
	}

	factorWeights := c.CitationWeight + c.YearsActiveWeight + c.TechniqueWeight + c.HonorWeight
	if diff := factorWeights - 1.0; diff > 1e-9 || diff < -1e-9 {
		return fmt.Errorf("scoring: factor weights must sum to 1.0, got %.4f", factorWeights)
	}

	blend := c.FactorBlendWeight + c.PillarBlendWeight
	if diff := blend - 1.0; diff > 1e-9 || diff < -1e-9 {
		return fmt.Errorf("scoring: blend weights must sum to 1.0, got %.4f", blend)
	}

	pw := c.PillarWeights.ClinicalMastery + c.PillarWeights.IntellectualLeg +
		c.PillarWeights.GlobalMentorship + c.PillarWeights.Humanitarian
	if diff := pw - 1.0; diff > 1e-9 || diff < -1e-9 {
		return fmt.Errorf("scoring: pillar weights must sum to 1.0, got %.4f", pw)
	}

	if c.DecayFloorFactor < 0 || c.DecayFloorFactor > 1 {
		return fmt.Errorf("scoring: decay floor factor must be in [0,1], got %.2f", c.DecayFloorFactor)
	}
	if c.DecayRatePerYear < 0 {
		return fmt.Errorf("scoring: decay rate must be non-negative, got %.4f", c.DecayRatePerYear)
	}

	if !(c.TitanThreshold > c.EliteThreshold && c.EliteThreshold > c.MasterThreshold) {
		return fmt.Errorf("scoring: tier thresholds must be strictly descending, got %.0f/%.0f/%.0f",
			c.TitanThreshold, c.EliteThreshold, c.MasterThreshold)
	}

	return nil
}
