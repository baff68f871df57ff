package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evidence"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/pillar"
)

// testYear pins the decay reference year so expectations stay stable.
const testYear = 2026

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultEngineConfig(), WithCurrentYear(testYear))
	require.NoError(t, err)
	return e
}

// strongProfile is a fully specified profile expected to reach TITAN.
func strongProfile() ScoreInput {
	return ScoreInput{
		Citations:           600,
		YearsActive:         50,
		HIndex:              90,
		VerifiedSurgeries:   9000,
		LivesSaved:          25000,
		TechniquesInvented:  5,
		BoardCertifications: 8,
		ManualVerifications: 4,
		HasInvention:        true,
		LicenseVerified:     true,
		IsPioneer:           true,
		IsLeader:            true,
		Honors:              []honor.Award{{Name: "Nobel Prize"}},
	}
}

func TestCalculateScore_RetractionDominatesEverything(t *testing.T) {
	e := newTestEngine(t)

	// Even an otherwise perfect profile is terminally disqualified.
	in := strongProfile()
	in.HasRetraction = true

	r := e.CalculateScore(in)
	require.NotNil(t, r.Score)
	assert.Equal(t, 0.0, *r.Score)
	assert.Equal(t, TierUnranked, r.Tier)
	assert.True(t, r.Disqualified)
	assert.Equal(t, ReasonRetracted, r.Reason)
}

func TestCalculateScore_RetractionWithZeroInput(t *testing.T) {
	e := newTestEngine(t)
	r := e.CalculateScore(ScoreInput{HasRetraction: true})
	require.NotNil(t, r.Score)
	assert.Equal(t, 0.0, *r.Score)
	assert.Equal(t, TierUnranked, r.Tier)
	assert.True(t, r.Disqualified)
}

func TestCalculateScore_UnverifiedLicenseGate(t *testing.T) {
	e := newTestEngine(t)

	in := strongProfile()
	in.LicenseVerified = false

	r := e.CalculateScore(in)
	assert.Nil(t, r.Score) // nil, not zero: distinct from the retraction state
	assert.Equal(t, TierUnranked, r.Tier)
	assert.True(t, r.Disqualified)
	assert.Equal(t, ReasonUnverifiableLicense, r.Reason)
}

func TestCalculateScore_HistoricalSubjectsExemptFromLicenseGate(t *testing.T) {
	e := newTestEngine(t)

	in := strongProfile()
	in.LicenseVerified = false
	in.IsHistorical = true

	r := e.CalculateScore(in)
	assert.False(t, r.Disqualified)
	require.NotNil(t, r.Score)
	assert.Greater(t, *r.Score, 0.0)
}

func TestCalculateScore_TerminalStatesNotConflated(t *testing.T) {
	e := newTestEngine(t)

	retracted := e.CalculateScore(ScoreInput{HasRetraction: true, LicenseVerified: true})
	unlicensed := e.CalculateScore(ScoreInput{})

	require.NotNil(t, retracted.Score)
	assert.Nil(t, unlicensed.Score)
	assert.NotEqual(t, retracted.Reason, unlicensed.Reason)
}

func TestCalculateScore_StrongProfileReachesTitan(t *testing.T) {
	e := newTestEngine(t)
	r := e.CalculateScore(strongProfile())

	require.NotNil(t, r.Score)
	assert.GreaterOrEqual(t, *r.Score, 90.0)
	assert.Equal(t, TierTitan, r.Tier)
	assert.True(t, r.FloorProtected) // Nobel grants the floor, TITAN was earned
}

func TestCalculateScore_StrongProfileBreakdown(t *testing.T) {
	e := newTestEngine(t)
	r := e.CalculateScore(strongProfile())

	// Factor components: citations 100×0.35, years 100×0.15, invention
	// 100×0.30, Nobel 100×0.20, +10 pioneer +5 leadership.
	assert.InDelta(t, 35.0, r.Breakdown.CitationScore, 1e-9)
	assert.InDelta(t, 15.0, r.Breakdown.YearsScore, 1e-9)
	assert.InDelta(t, 30.0, r.Breakdown.TechniqueScore, 1e-9)
	assert.InDelta(t, 20.0, r.Breakdown.HonorScore, 1e-9)
	assert.InDelta(t, 10.0, r.Breakdown.PioneerBonus, 1e-9)
	assert.InDelta(t, 5.0, r.Breakdown.LeadershipBonus, 1e-9)
	assert.InDelta(t, 115.0, r.Breakdown.FactorSum, 1e-9)
	assert.InDelta(t, 1.0, r.Breakdown.DecayFactor, 1e-9)

	// Pillars: CMI 94 (0.6×90 + 0.4×100), IL 81 (0.4×90 + 0.3×100 + 0.3×50),
	// GMS 80, HI 50 → weighted average 78.5; blend (115 + 78.5) / 2 = 96.75.
	assert.InDelta(t, 94.0, r.Pillars.ClinicalMasteryIndex, 1e-9)
	assert.InDelta(t, 81.0, r.Pillars.IntellectualLegacy, 1e-9)
	assert.InDelta(t, 78.5, r.Breakdown.PillarAverage, 1e-9)
	assert.InDelta(t, 96.75, *r.Score, 1e-9)
}

func TestCalculateScore_UnclassifiedHonorsNoFloorProtection(t *testing.T) {
	e := newTestEngine(t)

	in := strongProfile()
	in.Honors = []honor.Award{{Name: "Some Local Club Award"}}

	r := e.CalculateScore(in)
	require.NotNil(t, r.Score)
	assert.False(t, r.FloorProtected)
	// Honor term present but worth zero: (95 + 78.5) / 2 = 86.75 → ELITE on
	// numeric thresholds alone.
	assert.InDelta(t, 86.75, *r.Score, 1e-9)
	assert.Equal(t, TierElite, r.Tier)
}

func TestCalculateScore_NoHonorsOmitsHonorTerm(t *testing.T) {
	e := newTestEngine(t)

	withUnclassified := strongProfile()
	withUnclassified.Honors = []honor.Award{{Name: "Some Local Club Award"}}

	withNone := strongProfile()
	withNone.Honors = nil

	// Both yield a zero honor contribution; the term being absent must not
	// change the arithmetic beyond that.
	a := e.CalculateScore(withUnclassified)
	b := e.CalculateScore(withNone)
	assert.Equal(t, a.Breakdown.HonorScore, b.Breakdown.HonorScore)
	assert.InDelta(t, *a.Score, *b.Score, 1e-9)
}

func TestCalculateScore_FloorProtectionLiftsToElite(t *testing.T) {
	e := newTestEngine(t)

	// Sparse profile far below MASTER, but holding a national honor.
	in := ScoreInput{
		Citations:           50,
		YearsActive:         10,
		HIndex:              5,
		BoardCertifications: 1,
		LicenseVerified:     true,
		Honors:              []honor.Award{{Name: "Padma Shri"}},
	}

	r := e.CalculateScore(in)
	require.NotNil(t, r.Score)
	assert.Less(t, *r.Score, 50.0)
	assert.Equal(t, TierElite, r.Tier)
	assert.True(t, r.FloorProtected)
}

func TestCalculateScore_FloorProtectionNeverGrantsTitan(t *testing.T) {
	e := newTestEngine(t)

	// Strong-but-not-TITAN profile with a landmark honor stays ELITE.
	in := strongProfile()
	in.IsPioneer = false
	in.IsLeader = false
	in.VerifiedSurgeries = 2000
	in.LivesSaved = 0
	in.BoardCertifications = 2

	r := e.CalculateScore(in)
	require.NotNil(t, r.Score)
	assert.Less(t, *r.Score, 90.0)
	assert.Equal(t, TierElite, r.Tier)
}

func TestCalculateScore_HonorPointsCappedBeforeWeighting(t *testing.T) {
	e := newTestEngine(t)

	in := strongProfile()
	// Three distinct landmark categories: 300 raw points, capped at 100.
	in.Honors = []honor.Award{
		{Name: "Nobel Prize"},
		{Name: "Lasker Award"},
		{Name: "Wolf Prize in Medicine"},
	}

	r := e.CalculateScore(in)
	assert.InDelta(t, 20.0, r.Breakdown.HonorScore, 1e-9)
}

func TestCalculateScore_IFWeightedCitationsFeedFactor(t *testing.T) {
	e := newTestEngine(t)

	base := ScoreInput{
		Citations:       200,
		LicenseVerified: true,
	}
	weighted := base
	weighted.JournalImpactFactors = []evidence.JournalCitations{
		{Journal: "New England Journal of Medicine", CitationCount: 200},
	}

	plain := e.CalculateScore(base)
	boosted := e.CalculateScore(weighted)
	assert.Greater(t, boosted.Breakdown.CitationScore, plain.Breakdown.CitationScore)
}

func TestCalculateScore_LegacyDecay(t *testing.T) {
	e := newTestEngine(t)

	base := ScoreInput{
		Citations:       400,
		YearsActive:     40,
		HIndex:          60,
		IsHistorical:    true,
		LicenseVerified: false, // exempt
	}

	tests := []struct {
		name        string
		yearOfDeath int
		goldStd     bool
		wantFactor  float64
	}{
		{"no year of death", 0, false, 1.0},
		{"within grace period", testYear - 5, false, 1.0},
		{"exactly at grace boundary", testYear - 10, false, 1.0},
		{"gold standard technique never decays", 1900, true, 1.0},
		{"one year past grace", testYear - 11, false, 0.995},
		{"forty years past grace", testYear - 50, false, 0.8},
		{"floored at half value", 1900, false, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.YearOfDeath = tt.yearOfDeath
			in.TechniqueStillGoldStandard = tt.goldStd
			r := e.CalculateScore(in)
			assert.InDelta(t, tt.wantFactor, r.Breakdown.DecayFactor, 1e-9)
		})
	}
}

func TestCalculateScore_DecayMonotonicNonIncreasing(t *testing.T) {
	e := newTestEngine(t)

	prev := 1.0
	for deathYear := testYear; deathYear >= testYear-200; deathYear-- {
		r := e.CalculateScore(ScoreInput{
			Citations:    300,
			IsHistorical: true,
			YearOfDeath:  deathYear,
		})
		factor := r.Breakdown.DecayFactor
		assert.LessOrEqual(t, factor, prev, "decay factor rose for death year %d", deathYear)
		assert.GreaterOrEqual(t, factor, 0.5)
		prev = factor
	}
}

func TestCalculateScore_DecayDoesNotApplyToLiving(t *testing.T) {
	e := newTestEngine(t)

	in := strongProfile()
	in.YearOfDeath = 1900 // stale field on a living profile is ignored
	r := e.CalculateScore(in)
	assert.InDelta(t, 1.0, r.Breakdown.DecayFactor, 1e-9)
}

func TestCalculateScore_BoundednessAcrossInputGrid(t *testing.T) {
	e := newTestEngine(t)

	for _, citations := range []float64{0, 250, 500, 5000} {
		for _, years := range []float64{0, 25, 50, 80} {
			for _, surgeries := range []int{0, 5000, 10000, 100000} {
				for _, hasInvention := range []bool{false, true} {
					r := e.CalculateScore(ScoreInput{
						Citations:         citations,
						YearsActive:       years,
						VerifiedSurgeries: surgeries,
						HasInvention:      hasInvention,
						IsPioneer:         true,
						IsLeader:          true,
						LicenseVerified:   true,
						Honors:            []honor.Award{{Name: "Nobel Prize"}},
					})
					require.NotNil(t, r.Score)
					assert.GreaterOrEqual(t, *r.Score, 0.0)
					assert.LessOrEqual(t, *r.Score, 100.0)
				}
			}
		}
	}
}

func TestCalculateScore_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	in := strongProfile()

	first := e.CalculateScore(in)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.CalculateScore(in))
	}
}

func TestCalculateScore_PillarSeedShortCircuit(t *testing.T) {
	e := newTestEngine(t)

	// All raw counters zero: the caller-supplied pillar seed is honored.
	seed := pillar.FourPillars{
		ClinicalMasteryIndex:  70,
		IntellectualLegacy:    60,
		GlobalMentorshipScore: 50,
		HumanitarianImpact:    40,
	}
	r := e.CalculateScore(ScoreInput{LicenseVerified: true, Pillars: seed})
	assert.Equal(t, seed, r.Pillars)
	assert.InDelta(t, 0.3*70+0.3*60+0.2*50+0.2*40, r.Breakdown.PillarAverage, 1e-9)
}

func TestCalculateScore_PillarSeedIgnoredWhenRawDataPresent(t *testing.T) {
	e := newTestEngine(t)

	in := strongProfile()
	in.Pillars = pillar.FourPillars{ClinicalMasteryIndex: 1, IntellectualLegacy: 1}

	r := e.CalculateScore(in)
	assert.NotEqual(t, in.Pillars, r.Pillars)
}

func TestCalculateScore_TierThresholds(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, TierTitan, e.tierForScore(90))
	assert.Equal(t, TierTitan, e.tierForScore(100))
	assert.Equal(t, TierElite, e.tierForScore(89.99))
	assert.Equal(t, TierElite, e.tierForScore(70))
	assert.Equal(t, TierMaster, e.tierForScore(69.99))
	assert.Equal(t, TierMaster, e.tierForScore(50))
	assert.Equal(t, TierUnranked, e.tierForScore(49.99))
	assert.Equal(t, TierUnranked, e.tierForScore(0))
}

func TestNewEngine_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.CitationWeight = 0.9
	e, err := NewEngine(cfg)
	assert.Error(t, err)
	assert.Nil(t, e)
}

func TestScoreResult_ScoreValue(t *testing.T) {
	v := 87.5
	assert.Equal(t, 87.5, ScoreResult{Score: &v}.ScoreValue())
	assert.Equal(t, 0.0, ScoreResult{}.ScoreValue())
}
