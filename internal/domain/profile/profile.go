// Package profile defines the practitioner profile aggregate: the resolved,
// already-verified facts about a practitioner that the score engine consumes.
// The platform is not a data-acquisition system — upstream sync jobs populate
// these fields; this package only models, validates, and converts them.
package profile

import (
	"strings"
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evidence"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/scoring"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/tier"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// Profile is the aggregate root for a practitioner in the directory.
type Profile struct {
	ID        common.ProfileID `json:"id"`
	FullName  string           `json:"full_name"`
	Specialty string           `json:"specialty"`
	Country   string           `json:"country"`

	// Registry facts.
	LicenseVerified bool `json:"license_verified"`
	HasRetraction   bool `json:"has_retraction"`

	// Historical subjects have no living registry entry; YearOfDeath zero
	// means unknown or still living.
	IsHistorical               bool `json:"is_historical"`
	YearOfDeath                int  `json:"year_of_death,omitempty"`
	TechniqueStillGoldStandard bool `json:"technique_still_gold_standard,omitempty"`

	// Scholarly metrics.
	Citations    float64 `json:"citations"`
	HIndex       float64 `json:"h_index"`
	YearsActive  float64 `json:"years_active"`
	Publications int     `json:"publications"`

	// Clinical counters.
	VerifiedSurgeries   int `json:"verified_surgeries"`
	LivesSaved          int `json:"lives_saved"`
	TechniquesInvented  int `json:"techniques_invented"`
	BoardCertifications int `json:"board_certifications"`
	ManualVerifications int `json:"manual_verifications"`

	// Distinguishing flags.
	HasInvention bool `json:"has_invention"`
	IsPioneer    bool `json:"is_pioneer"`
	IsLeader     bool `json:"is_leader"`

	Honors               []honor.Award               `json:"honors,omitempty"`
	JournalImpactFactors []evidence.JournalCitations `json:"journal_impact_factors,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// Validate checks structural integrity of the profile record.  Semantic
// plausibility (negative counters and the like) is handled defensively by the
// score engine itself; validation here guards only what persistence needs.
func (p *Profile) Validate() error {
	if p.ID == "" {
		return errors.New(errors.ErrCodeProfileInvalid, "profile id is required")
	}
	if strings.TrimSpace(p.FullName) == "" {
		return errors.New(errors.ErrCodeProfileInvalid, "profile full name is required")
	}
	if p.IsHistorical && p.YearOfDeath < 0 {
		return errors.New(errors.ErrCodeProfileInvalid, "year of death cannot be negative")
	}
	return nil
}

// ScoreInput converts the profile into the engine's input value object.
func (p *Profile) ScoreInput() scoring.ScoreInput {
	return scoring.ScoreInput{
		Citations:                  p.Citations,
		YearsActive:                p.YearsActive,
		HIndex:                     p.HIndex,
		VerifiedSurgeries:          p.VerifiedSurgeries,
		LivesSaved:                 p.LivesSaved,
		TechniquesInvented:         p.TechniquesInvented,
		BoardCertifications:        p.BoardCertifications,
		ManualVerifications:        p.ManualVerifications,
		HasInvention:               p.HasInvention,
		LicenseVerified:            p.LicenseVerified,
		IsHistorical:               p.IsHistorical,
		IsPioneer:                  p.IsPioneer,
		IsLeader:                   p.IsLeader,
		HasRetraction:              p.HasRetraction,
		Honors:                     p.Honors,
		JournalImpactFactors:       p.JournalImpactFactors,
		YearOfDeath:                p.YearOfDeath,
		TechniqueStillGoldStandard: p.TechniqueStillGoldStandard,
	}
}

// GateFacts converts the profile into the gatekeeper's categorical inputs.
func (p *Profile) GateFacts() tier.Facts {
	return tier.Facts{
		HasInvention:        p.HasInvention,
		ManualVerifications: p.ManualVerifications,
		HIndex:              p.HIndex,
		LivesSaved:          p.LivesSaved,
		LicenseVerified:     p.LicenseVerified,
		Publications:        p.Publications,
		YearsActive:         p.YearsActive,
	}
}

// Touch updates audit metadata ahead of a write.
func (p *Profile) Touch(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Version++
}

// ListFilter narrows directory listings.
type ListFilter struct {
	Specialty    string
	Country      string
	IsHistorical *bool
	Pagination   common.Pagination
}
