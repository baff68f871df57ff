// Package repositories provides PostgreSQL-backed implementations of the
// profile and evaluation repository interfaces.  All queries are
// parameterised; JSON-typed columns (honors, journal citation counts, score
// breakdowns) are stored as JSONB.
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evidence"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// ProfileRepository is the PostgreSQL implementation of profile.Repository.
type ProfileRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewProfileRepository constructs a ready-to-use ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool, logger logging.Logger) *ProfileRepository {
	return &ProfileRepository{pool: pool, logger: logger.Named("profile_repo")}
}

const profileColumns = `
	id, full_name, specialty, country,
	license_verified, has_retraction,
	is_historical, year_of_death, technique_still_gold_standard,
	citations, h_index, years_active, publications,
	verified_surgeries, lives_saved, techniques_invented,
	board_certifications, manual_verifications,
	has_invention, is_pioneer, is_leader,
	honors, journal_impact_factors,
	created_at, updated_at, version`

// Upsert inserts the profile or replaces the existing row by id.
func (r *ProfileRepository) Upsert(ctx context.Context, p *profile.Profile) error {
	honorsJSON, err := json.Marshal(p.Honors)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal honors")
	}
	journalsJSON, err := json.Marshal(p.JournalImpactFactors)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal journal impact factors")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES (
			$1,$2,$3,$4,
			$5,$6,
			$7,$8,$9,
			$10,$11,$12,$13,
			$14,$15,$16,
			$17,$18,
			$19,$20,$21,
			$22,$23,
			$24,$25,$26
		)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			specialty = EXCLUDED.specialty,
			country = EXCLUDED.country,
			license_verified = EXCLUDED.license_verified,
			has_retraction = EXCLUDED.has_retraction,
			is_historical = EXCLUDED.is_historical,
			year_of_death = EXCLUDED.year_of_death,
			technique_still_gold_standard = EXCLUDED.technique_still_gold_standard,
			citations = EXCLUDED.citations,
			h_index = EXCLUDED.h_index,
			years_active = EXCLUDED.years_active,
			publications = EXCLUDED.publications,
			verified_surgeries = EXCLUDED.verified_surgeries,
			lives_saved = EXCLUDED.lives_saved,
			techniques_invented = EXCLUDED.techniques_invented,
			board_certifications = EXCLUDED.board_certifications,
			manual_verifications = EXCLUDED.manual_verifications,
			has_invention = EXCLUDED.has_invention,
			is_pioneer = EXCLUDED.is_pioneer,
			is_leader = EXCLUDED.is_leader,
			honors = EXCLUDED.honors,
			journal_impact_factors = EXCLUDED.journal_impact_factors,
			updated_at = EXCLUDED.updated_at,
			version = EXCLUDED.version`,
		p.ID, p.FullName, p.Specialty, p.Country,
		p.LicenseVerified, p.HasRetraction,
		p.IsHistorical, p.YearOfDeath, p.TechniqueStillGoldStandard,
		p.Citations, p.HIndex, p.YearsActive, p.Publications,
		p.VerifiedSurgeries, p.LivesSaved, p.TechniquesInvented,
		p.BoardCertifications, p.ManualVerifications,
		p.HasInvention, p.IsPioneer, p.IsLeader,
		honorsJSON, journalsJSON,
		p.CreatedAt, p.UpdatedAt, p.Version,
	)
	if err != nil {
		r.logger.Error("ProfileRepository.Upsert failed",
			logging.String("profile_id", string(p.ID)), logging.Err(err))
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "upsert profile")
	}
	return nil
}

// GetByID fetches one profile by identifier.
func (r *ProfileRepository) GetByID(ctx context.Context, id common.ProfileID) (*profile.Profile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)

	p, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, appErrors.New(appErrors.ErrCodeProfileNotFound,
				fmt.Sprintf("profile %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "fetch profile")
	}
	return p, nil
}

// List returns a filtered, paginated directory page.
func (r *ProfileRepository) List(ctx context.Context, filter profile.ListFilter) (*common.PaginatedResult[*profile.Profile], error) {
	where, args := buildProfileFilter(filter)

	var total int64
	countQuery := `SELECT COUNT(*) FROM profiles` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "count profiles")
	}

	query := `SELECT ` + profileColumns + ` FROM profiles` + where +
		fmt.Sprintf(` ORDER BY full_name ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Pagination.PageSize, filter.Pagination.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "list profiles")
	}
	defer rows.Close()

	items := make([]*profile.Profile, 0, filter.Pagination.PageSize)
	for rows.Next() {
		p, scanErr := scanProfile(rows)
		if scanErr != nil {
			return nil, appErrors.Wrap(scanErr, appErrors.ErrCodeDatabaseError, "scan profile row")
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate profile rows")
	}

	totalPages := 0
	if filter.Pagination.PageSize > 0 {
		totalPages = int((total + int64(filter.Pagination.PageSize) - 1) / int64(filter.Pagination.PageSize))
	}
	return &common.PaginatedResult[*profile.Profile]{
		Items:      items,
		Total:      total,
		Page:       filter.Pagination.Page,
		PageSize:   filter.Pagination.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Delete removes a profile row.  Evaluation history rows are kept: the
// history table is append-only and audit-bearing.
func (r *ProfileRepository) Delete(ctx context.Context, id common.ProfileID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "delete profile")
	}
	if tag.RowsAffected() == 0 {
		return appErrors.New(appErrors.ErrCodeProfileNotFound,
			fmt.Sprintf("profile %s not found", id))
	}
	return nil
}

// buildProfileFilter renders the WHERE clause for List with positional
// parameters.
func buildProfileFilter(filter profile.ListFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	if filter.Specialty != "" {
		args = append(args, filter.Specialty)
		clauses = append(clauses, fmt.Sprintf("specialty = $%d", len(args)))
	}
	if filter.Country != "" {
		args = append(args, filter.Country)
		clauses = append(clauses, fmt.Sprintf("country = $%d", len(args)))
	}
	if filter.IsHistorical != nil {
		args = append(args, *filter.IsHistorical)
		clauses = append(clauses, fmt.Sprintf("is_historical = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*profile.Profile, error) {
	var (
		p            profile.Profile
		honorsJSON   []byte
		journalsJSON []byte
	)
	err := row.Scan(
		&p.ID, &p.FullName, &p.Specialty, &p.Country,
		&p.LicenseVerified, &p.HasRetraction,
		&p.IsHistorical, &p.YearOfDeath, &p.TechniqueStillGoldStandard,
		&p.Citations, &p.HIndex, &p.YearsActive, &p.Publications,
		&p.VerifiedSurgeries, &p.LivesSaved, &p.TechniquesInvented,
		&p.BoardCertifications, &p.ManualVerifications,
		&p.HasInvention, &p.IsPioneer, &p.IsLeader,
		&honorsJSON, &journalsJSON,
		&p.CreatedAt, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		return nil, err
	}

	if len(honorsJSON) > 0 {
		var honors []honor.Award
		if err := json.Unmarshal(honorsJSON, &honors); err != nil {
			return nil, err
		}
		p.Honors = honors
	}
	if len(journalsJSON) > 0 {
		var journals []evidence.JournalCitations
		if err := json.Unmarshal(journalsJSON, &journals); err != nil {
			return nil, err
		}
		p.JournalImpactFactors = journals
	}
	return &p, nil
}
