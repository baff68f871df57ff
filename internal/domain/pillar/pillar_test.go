package pillar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate_ZeroInput(t *testing.T) {
	p := Calculate(Input{}, DefaultCeilings())
	assert.Zero(t, p.ClinicalMasteryIndex)
	assert.Zero(t, p.IntellectualLegacy)
	assert.Zero(t, p.GlobalMentorshipScore)
	assert.Zero(t, p.HumanitarianImpact)
}

func TestCalculate_ClinicalMastery(t *testing.T) {
	// 5000/10000 → 50 normalized surgeries; 25/50 → 50 normalized years.
	p := Calculate(Input{VerifiedSurgeries: 5000, YearsActive: 25}, DefaultCeilings())
	assert.InDelta(t, 0.6*50+0.4*50, p.ClinicalMasteryIndex, 1e-9)
}

func TestCalculate_IntellectualLegacy(t *testing.T) {
	// hIndex 80/100 → 80; citations 250/500 → 50; techniques 5/10 → 50.
	p := Calculate(Input{HIndex: 80, Citations: 250, TechniquesInvented: 5}, DefaultCeilings())
	assert.InDelta(t, 0.4*80+0.3*50+0.3*50, p.IntellectualLegacy, 1e-9)
}

func TestCalculate_SingleFactorPillars(t *testing.T) {
	p := Calculate(Input{BoardCertifications: 3, LivesSaved: 25000}, DefaultCeilings())
	assert.InDelta(t, 30.0, p.GlobalMentorshipScore, 1e-9)
	assert.InDelta(t, 50.0, p.HumanitarianImpact, 1e-9)
}

func TestCalculate_AllPillarsBounded(t *testing.T) {
	extreme := Input{
		VerifiedSurgeries:   1e9,
		YearsActive:         500,
		HIndex:              400,
		Citations:           1e6,
		TechniquesInvented:  100,
		BoardCertifications: 50,
		LivesSaved:          1e9,
	}
	p := Calculate(extreme, DefaultCeilings())
	for _, v := range []float64{
		p.ClinicalMasteryIndex, p.IntellectualLegacy,
		p.GlobalMentorshipScore, p.HumanitarianImpact,
	} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
	assert.Equal(t, 100.0, p.ClinicalMasteryIndex)
	assert.Equal(t, 100.0, p.IntellectualLegacy)
}

func TestCalculate_NegativeInputsClampToZero(t *testing.T) {
	p := Calculate(Input{VerifiedSurgeries: -100, HIndex: -5, LivesSaved: -1}, DefaultCeilings())
	assert.Zero(t, p.ClinicalMasteryIndex)
	assert.Zero(t, p.IntellectualLegacy)
	assert.Zero(t, p.HumanitarianImpact)
}

func TestCalculate_RoundsToTwoDecimals(t *testing.T) {
	// 1/3 of the citation ceiling produces a repeating decimal before rounding.
	p := Calculate(Input{Citations: 500.0 / 3}, DefaultCeilings())
	assert.InDelta(t, 10.0, p.IntellectualLegacy, 0.005)
	assert.Equal(t, p.IntellectualLegacy, float64(int(p.IntellectualLegacy*100))/100)
}

func TestWeightedAverage(t *testing.T) {
	p := FourPillars{
		ClinicalMasteryIndex:  80,
		IntellectualLegacy:    60,
		GlobalMentorshipScore: 40,
		HumanitarianImpact:    20,
	}
	w := Weights{ClinicalMastery: 0.3, IntellectualLeg: 0.3, GlobalMentorship: 0.2, Humanitarian: 0.2}
	assert.InDelta(t, 0.3*80+0.3*60+0.2*40+0.2*20, p.WeightedAverage(w), 1e-9)
}
