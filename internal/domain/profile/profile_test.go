package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

func validProfile() *Profile {
	return &Profile{
		ID:              "prof-1",
		FullName:        "Ada Example",
		Specialty:       "cardiothoracic surgery",
		Country:         "US",
		LicenseVerified: true,
		Citations:       350,
		HIndex:          42,
		YearsActive:     20,
		Publications:    120,
		Honors:          []honor.Award{{Name: "Lasker Award"}},
	}
}

func TestProfile_Validate(t *testing.T) {
	require.NoError(t, validProfile().Validate())

	p := validProfile()
	p.ID = ""
	err := p.Validate()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeProfileInvalid))

	p = validProfile()
	p.FullName = "   "
	assert.Error(t, p.Validate())

	p = validProfile()
	p.IsHistorical = true
	p.YearOfDeath = -1
	assert.Error(t, p.Validate())
}

func TestProfile_ScoreInput(t *testing.T) {
	p := validProfile()
	p.HasRetraction = true
	p.VerifiedSurgeries = 4000
	in := p.ScoreInput()

	assert.Equal(t, p.Citations, in.Citations)
	assert.Equal(t, p.VerifiedSurgeries, in.VerifiedSurgeries)
	assert.True(t, in.LicenseVerified)
	assert.True(t, in.HasRetraction)
	assert.Equal(t, p.Honors, in.Honors)
}

func TestProfile_GateFacts(t *testing.T) {
	p := validProfile()
	p.ManualVerifications = 3
	facts := p.GateFacts()

	assert.Equal(t, 3, facts.ManualVerifications)
	assert.Equal(t, p.Publications, facts.Publications)
	assert.Equal(t, p.HIndex, facts.HIndex)
	assert.True(t, facts.LicenseVerified)
}

func TestProfile_Touch(t *testing.T) {
	p := validProfile()
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	p.Touch(now)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, now, p.UpdatedAt)
	assert.Equal(t, 1, p.Version)

	later := now.Add(time.Hour)
	p.Touch(later)
	assert.Equal(t, now, p.CreatedAt)
	assert.Equal(t, later, p.UpdatedAt)
	assert.Equal(t, 2, p.Version)
}
