package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
)

func resultWithScore(score float64) scoring.ScoreResult {
	return scoring.ScoreResult{Score: &score, Tier: scoring.TierTitan}
}

// titanFacts satisfies every TITAN categorical requirement.
func titanFacts() Facts {
	return Facts{
		HasInvention:        true,
		ManualVerifications: 3,
		HIndex:              65,
		LivesSaved:          500,
		LicenseVerified:     true,
		Publications:        150,
		YearsActive:         25,
	}
}

func TestAssignTier_DisqualifiedShortCircuits(t *testing.T) {
	zero := 0.0
	a := AssignTier(scoring.ScoreResult{
		Score:        &zero,
		Disqualified: true,
		Reason:       scoring.ReasonRetracted,
	}, titanFacts())

	assert.Equal(t, scoring.TierUnranked, a.Tier)
	assert.False(t, a.MeetsAllRequirements)
	assert.Contains(t, a.Reason, scoring.ReasonRetracted)
	assert.Contains(t, a.UnmetRequirements, scoring.ReasonRetracted)
}

func TestAssignTier_DisqualifiedNilScore(t *testing.T) {
	a := AssignTier(scoring.ScoreResult{
		Disqualified: true,
		Reason:       scoring.ReasonUnverifiableLicense,
	}, Facts{})
	assert.Equal(t, scoring.TierUnranked, a.Tier)
}

func TestAssignTier_TitanAllRequirementsMet(t *testing.T) {
	a := AssignTier(resultWithScore(96), titanFacts())

	assert.Equal(t, scoring.TierTitan, a.Tier)
	assert.True(t, a.MeetsAllRequirements)
	assert.Empty(t, a.UnmetRequirements)
	assert.Contains(t, a.Reason, "96.00")
	assert.Contains(t, a.Reason, "95")
}

func TestAssignTier_TitanViaLivesSavedAlternative(t *testing.T) {
	facts := titanFacts()
	facts.HIndex = 10
	facts.LivesSaved = 25000 // the OR alternative

	a := AssignTier(resultWithScore(97), facts)
	assert.Equal(t, scoring.TierTitan, a.Tier)
	assert.True(t, a.MeetsAllRequirements)
}

func TestAssignTier_TitanDowngradesToElite(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Facts)
		want   string
	}{
		{"no invention", func(f *Facts) { f.HasInvention = false }, "invention"},
		{"too few verifications", func(f *Facts) { f.ManualVerifications = 2 }, "manual peer verifications"},
		{"neither h-index nor lives saved", func(f *Facts) { f.HIndex = 30; f.LivesSaved = 100 }, "h-index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := titanFacts()
			tt.mutate(&facts)

			a := AssignTier(resultWithScore(96), facts)
			assert.Equal(t, scoring.TierElite, a.Tier)
			assert.False(t, a.MeetsAllRequirements)
			require.NotEmpty(t, a.UnmetRequirements)
			assert.Contains(t, a.UnmetRequirements[0], tt.want)
			assert.Contains(t, a.Reason, "downgraded from TITAN")
		})
	}
}

func TestAssignTier_EliteDirect(t *testing.T) {
	a := AssignTier(resultWithScore(85), titanFacts())

	assert.Equal(t, scoring.TierElite, a.Tier)
	assert.True(t, a.MeetsAllRequirements)
	assert.Empty(t, a.UnmetRequirements)
	assert.Contains(t, a.Reason, "85.00")
	assert.Contains(t, a.Reason, "80")
}

func TestAssignTier_EliteDowngradesToMaster(t *testing.T) {
	facts := titanFacts()
	facts.Publications = 40

	a := AssignTier(resultWithScore(85), facts)
	assert.Equal(t, scoring.TierMaster, a.Tier)
	assert.False(t, a.MeetsAllRequirements)
	require.NotEmpty(t, a.UnmetRequirements)
	assert.Contains(t, a.UnmetRequirements[0], "publications")
}

func TestAssignTier_EliteUnverifiedLicenseDowngrades(t *testing.T) {
	facts := titanFacts()
	facts.LicenseVerified = false

	a := AssignTier(resultWithScore(88), facts)
	assert.Equal(t, scoring.TierMaster, a.Tier)
	assert.Contains(t, a.UnmetRequirements[0], "verified license")
}

func TestAssignTier_DoubleDowngradeTitanToMaster(t *testing.T) {
	// Fails TITAN (no invention) and ELITE (too few publications): the chain
	// steps down one tier at a time and records every gap.
	facts := titanFacts()
	facts.HasInvention = false
	facts.Publications = 10

	a := AssignTier(resultWithScore(97), facts)
	assert.Equal(t, scoring.TierMaster, a.Tier)
	assert.False(t, a.MeetsAllRequirements)
	assert.Len(t, a.UnmetRequirements, 2)
}

func TestAssignTier_MasterDirect(t *testing.T) {
	a := AssignTier(resultWithScore(65), titanFacts())

	assert.Equal(t, scoring.TierMaster, a.Tier)
	assert.True(t, a.MeetsAllRequirements)
	assert.Empty(t, a.UnmetRequirements)
	assert.Contains(t, a.Reason, "65.00")
	assert.Contains(t, a.Reason, "60")
}

func TestAssignTier_MasterShortCareerIsSoftFlag(t *testing.T) {
	facts := titanFacts()
	facts.YearsActive = 8

	a := AssignTier(resultWithScore(65), facts)
	// Still MASTER — the career-length requirement flags, never downgrades.
	assert.Equal(t, scoring.TierMaster, a.Tier)
	assert.False(t, a.MeetsAllRequirements)
	require.Len(t, a.UnmetRequirements, 1)
	assert.Contains(t, a.UnmetRequirements[0], "years active")
}

func TestAssignTier_BelowMasterIsUnranked(t *testing.T) {
	a := AssignTier(resultWithScore(42), titanFacts())

	assert.Equal(t, scoring.TierUnranked, a.Tier)
	assert.False(t, a.MeetsAllRequirements)
	assert.Contains(t, a.Reason, "42.00")
	assert.NotEmpty(t, a.UnmetRequirements)
}

func TestAssignTier_StricterThanEngine(t *testing.T) {
	// Engine TITAN (≥90) is not gatekeeper TITAN (≥95).
	a := AssignTier(resultWithScore(92), titanFacts())
	assert.Equal(t, scoring.TierElite, a.Tier)
}

func TestAssignTier_OutputClosure(t *testing.T) {
	valid := map[scoring.Tier]bool{
		scoring.TierTitan:    true,
		scoring.TierElite:    true,
		scoring.TierMaster:   true,
		scoring.TierUnranked: true,
	}
	factVariants := []Facts{
		{}, titanFacts(),
		{HasInvention: true, LicenseVerified: true},
		{ManualVerifications: 5, Publications: 500, YearsActive: 40},
	}
	for score := 0.0; score <= 100.0; score += 2.5 {
		for _, facts := range factVariants {
			a := AssignTier(resultWithScore(score), facts)
			assert.True(t, valid[a.Tier], "unexpected tier %q at score %.1f", a.Tier, score)
		}
	}
}

func TestAssignTier_ThresholdBoundaries(t *testing.T) {
	assert.Equal(t, scoring.TierTitan, AssignTier(resultWithScore(95), titanFacts()).Tier)
	assert.Equal(t, scoring.TierElite, AssignTier(resultWithScore(94.99), titanFacts()).Tier)
	assert.Equal(t, scoring.TierElite, AssignTier(resultWithScore(80), titanFacts()).Tier)
	assert.Equal(t, scoring.TierMaster, AssignTier(resultWithScore(79.99), titanFacts()).Tier)
	assert.Equal(t, scoring.TierMaster, AssignTier(resultWithScore(60), titanFacts()).Tier)
	assert.Equal(t, scoring.TierUnranked, AssignTier(resultWithScore(59.99), titanFacts()).Tier)
}
