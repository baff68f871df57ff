// Package pillar computes the four named sub-scores that jointly describe a
// practitioner's profile: Clinical Mastery, Intellectual Legacy, Global
// Mentorship, and Humanitarian Impact.  Each pillar is an independent pure
// function of normalized inputs — no cross-pillar coupling — so each can be
// tested and reasoned about in isolation.
package pillar

import (
	"math"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evidence"
)

// FourPillars holds the four sub-scores, each independently bounded to [0,100].
type FourPillars struct {
	ClinicalMasteryIndex  float64 `json:"clinical_mastery_index"`
	IntellectualLegacy    float64 `json:"intellectual_legacy"`
	GlobalMentorshipScore float64 `json:"global_mentorship_score"`
	HumanitarianImpact    float64 `json:"humanitarian_impact"`
}

// Input carries the raw counters the pillars are derived from.
type Input struct {
	VerifiedSurgeries   float64
	YearsActive         float64
	HIndex              float64
	Citations           float64
	TechniquesInvented  float64
	BoardCertifications float64
	LivesSaved          float64
}

// Ceilings holds the normalization ceiling per raw metric.  The values are
// owned by the score engine's versioned configuration; DefaultCeilings is the
// v1 set.
type Ceilings struct {
	Surgeries           float64
	YearsActive         float64
	HIndex              float64
	Citations           float64
	TechniquesInvented  float64
	BoardCertifications float64
	LivesSaved          float64
}

// DefaultCeilings returns the v1 ceiling set.
func DefaultCeilings() Ceilings {
	return Ceilings{
		Surgeries:           10000,
		YearsActive:         50,
		HIndex:              100,
		Citations:           500,
		TechniquesInvented:  10,
		BoardCertifications: 10,
		LivesSaved:          50000,
	}
}

// Intra-pillar weights.  These are fixed by design, not configurable: the
// pillar definitions are part of the score's public meaning.
const (
	clinicalSurgeryWeight = 0.6
	clinicalYearsWeight   = 0.4

	legacyHIndexWeight    = 0.4
	legacyCitationWeight  = 0.3
	legacyTechniqueWeight = 0.3
)

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calculate derives all four pillars from in, normalizing each raw metric
// against its ceiling.  Every output is rounded to 2 decimal places and lies
// in [0,100].
func Calculate(in Input, c Ceilings) FourPillars {
	clinical := clinicalSurgeryWeight*evidence.Normalize(in.VerifiedSurgeries, c.Surgeries) +
		clinicalYearsWeight*evidence.Normalize(in.YearsActive, c.YearsActive)

	legacy := legacyHIndexWeight*evidence.Normalize(in.HIndex, c.HIndex) +
		legacyCitationWeight*evidence.Normalize(in.Citations, c.Citations) +
		legacyTechniqueWeight*evidence.Normalize(in.TechniquesInvented, c.TechniquesInvented)

	// Single-factor pillars: mentorship currently reflects board
	// certifications only, humanitarian impact reflects lives saved.
	mentorship := evidence.Normalize(in.BoardCertifications, c.BoardCertifications)
	humanitarian := evidence.Normalize(in.LivesSaved, c.LivesSaved)

	return FourPillars{
		ClinicalMasteryIndex:  round2(clinical),
		IntellectualLegacy:    round2(legacy),
		GlobalMentorshipScore: round2(mentorship),
		HumanitarianImpact:    round2(humanitarian),
	}
}

// WeightedAverage blends the four pillars with the supplied weights.
type Weights struct {
	ClinicalMastery  float64
	IntellectualLeg  float64
	GlobalMentorship float64
	Humanitarian     float64
}

// WeightedAverage returns the weighted blend of the pillars.  Weights are the
// caller's responsibility; the score engine passes its own versioned set.
func (p FourPillars) WeightedAverage(w Weights) float64 {
	return w.ClinicalMastery*p.ClinicalMasteryIndex +
		w.IntellectualLeg*p.IntellectualLegacy +
		w.GlobalMentorship*p.GlobalMentorshipScore +
		w.Humanitarian*p.HumanitarianImpact
}
