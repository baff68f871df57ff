// Package testutil provides shared profile fixtures for tests that need
// realistic practitioner data without repeating thirty-field literals.
package testutil

import (
	"time"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evidence"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// ProfileOption mutates a fixture before it is returned.
type ProfileOption func(*profile.Profile)

// WithID overrides the fixture's profile ID.
func WithID(id string) ProfileOption {
	return func(p *profile.Profile) { p.ID = common.ProfileID(id) }
}

// WithName overrides the fixture's full name.
func WithName(name string) ProfileOption {
	return func(p *profile.Profile) { p.FullName = name }
}

// WithRetraction marks the fixture as having a retraction on record.
func WithRetraction() ProfileOption {
	return func(p *profile.Profile) { p.HasRetraction = true }
}

// WithHonors replaces the fixture's award list.
func WithHonors(awards ...honor.Award) ProfileOption {
	return func(p *profile.Profile) { p.Honors = awards }
}

// StrongProfile returns a verified, decorated surgeon whose numbers clear
// every categorical requirement of the top tier.
func StrongProfile(opts ...ProfileOption) *profile.Profile {
	p := &profile.Profile{
		ID:                  "prof-strong",
		FullName:            "Harvey Cushing",
		Specialty:           "neurosurgery",
		Country:             "US",
		LicenseVerified:     true,
		Citations:           45000,
		HIndex:              85,
		YearsActive:         35,
		Publications:        320,
		VerifiedSurgeries:   2200,
		LivesSaved:          25000,
		TechniquesInvented:  4,
		BoardCertifications: 2,
		ManualVerifications: 3,
		HasInvention:        true,
		IsPioneer:           true,
		IsLeader:            true,
		Honors: []honor.Award{
			{Name: "Nobel Prize in Physiology or Medicine", Year: 1932},
			{Name: "Lasker Award", Year: 1930},
		},
		JournalImpactFactors: []evidence.JournalCitations{
			{Journal: "The Lancet", CitationCount: 12000},
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ModestProfile returns a licensed practitioner with an unremarkable record.
func ModestProfile(opts ...ProfileOption) *profile.Profile {
	p := &profile.Profile{
		ID:                  "prof-modest",
		FullName:            "Jordan Reyes",
		Specialty:           "cardiology",
		Country:             "BR",
		LicenseVerified:     true,
		Citations:           800,
		HIndex:              14,
		YearsActive:         9,
		Publications:        22,
		VerifiedSurgeries:   140,
		BoardCertifications: 1,
		CreatedAt:           time.Now().UTC(),
		UpdatedAt:           time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HistoricalProfile returns a deceased subject whose license can no longer
// be verified but whose technique remains the standard of care.
func HistoricalProfile(opts ...ProfileOption) *profile.Profile {
	p := &profile.Profile{
		ID:                         "prof-historical",
		FullName:                   "Joseph Lister",
		Specialty:                  "surgery",
		Country:                    "GB",
		IsHistorical:               true,
		YearOfDeath:                1912,
		TechniqueStillGoldStandard: true,
		Citations:                  30000,
		HIndex:                     70,
		YearsActive:                45,
		Publications:               180,
		TechniquesInvented:         1,
		IsPioneer:                  true,
		CreatedAt:                  time.Now().UTC(),
		UpdatedAt:                  time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
