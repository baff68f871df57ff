package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// EvaluationRepository is the PostgreSQL implementation of
// evaluation.Repository.  The evaluations table is append-only.
type EvaluationRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// NewEvaluationRepository constructs a ready-to-use EvaluationRepository.
func NewEvaluationRepository(pool *pgxpool.Pool, logger logging.Logger) *EvaluationRepository {
	return &EvaluationRepository{pool: pool, logger: logger.Named("evaluation_repo")}
}

const evaluationColumns = `
	id, profile_id, score, engine_tier,
	pillars, breakdown, disqualified, reason, floor_protected,
	gate_tier, gate_reason, meets_gate_criteria, unmet_requirements,
	engine_version, evaluated_at`

// Save appends one evaluation record.
func (r *EvaluationRepository) Save(ctx context.Context, e *evaluation.Evaluation) error {
	pillarsJSON, err := json.Marshal(e.Pillars)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal pillars")
	}
	breakdownJSON, err := json.Marshal(e.Breakdown)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal breakdown")
	}
	unmetJSON, err := json.Marshal(e.UnmetRequirements)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal unmet requirements")
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO evaluations (`+evaluationColumns+`)
		VALUES (
			$1,$2,$3,$4,
			$5,$6,$7,$8,$9,
			$10,$11,$12,$13,
			$14,$15
		)`,
		e.ID, e.ProfileID, e.Score, e.EngineTier,
		pillarsJSON, breakdownJSON, e.Disqualified, e.Reason, e.FloorProtected,
		e.GateTier, e.GateReason, e.MeetsGateCriteria, unmetJSON,
		e.EngineVersion, e.EvaluatedAt,
	)
	if err != nil {
		r.logger.Error("EvaluationRepository.Save failed",
			logging.String("evaluation_id", string(e.ID)), logging.Err(err))
		return appErrors.Wrap(err, appErrors.ErrCodeEvaluationPersistError, "insert evaluation")
	}
	return nil
}

// GetByID fetches one evaluation by identifier.
func (r *EvaluationRepository) GetByID(ctx context.Context, id common.EvaluationID) (*evaluation.Evaluation, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+evaluationColumns+` FROM evaluations WHERE id = $1`, id)

	e, err := scanEvaluation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, appErrors.New(appErrors.ErrCodeEvaluationNotFound,
				fmt.Sprintf("evaluation %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "fetch evaluation")
	}
	return e, nil
}

// ListByProfile returns a profile's history, newest first.
func (r *EvaluationRepository) ListByProfile(ctx context.Context, profileID common.ProfileID, q evaluation.HistoryQuery) ([]*evaluation.Evaluation, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+evaluationColumns+`
		 FROM evaluations
		 WHERE profile_id = $1
		 ORDER BY evaluated_at DESC
		 LIMIT $2 OFFSET $3`,
		profileID, limit, q.Offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "list evaluations")
	}
	defer rows.Close()

	return collectEvaluations(rows)
}

// LatestPerProfile returns each profile's most recent evaluation, for tier
// distribution statistics.
func (r *EvaluationRepository) LatestPerProfile(ctx context.Context) ([]*evaluation.Evaluation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (profile_id) `+evaluationColumns+`
		 FROM evaluations
		 ORDER BY profile_id, evaluated_at DESC`)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "fetch latest evaluations")
	}
	defer rows.Close()

	return collectEvaluations(rows)
}

func collectEvaluations(rows pgx.Rows) ([]*evaluation.Evaluation, error) {
	var out []*evaluation.Evaluation
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "scan evaluation row")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeDatabaseError, "iterate evaluation rows")
	}
	return out, nil
}

func scanEvaluation(row rowScanner) (*evaluation.Evaluation, error) {
	var (
		e             evaluation.Evaluation
		pillarsJSON   []byte
		breakdownJSON []byte
		unmetJSON     []byte
	)
	err := row.Scan(
		&e.ID, &e.ProfileID, &e.Score, &e.EngineTier,
		&pillarsJSON, &breakdownJSON, &e.Disqualified, &e.Reason, &e.FloorProtected,
		&e.GateTier, &e.GateReason, &e.MeetsGateCriteria, &unmetJSON,
		&e.EngineVersion, &e.EvaluatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(pillarsJSON) > 0 {
		if err := json.Unmarshal(pillarsJSON, &e.Pillars); err != nil {
			return nil, err
		}
	}
	if len(breakdownJSON) > 0 {
		if err := json.Unmarshal(breakdownJSON, &e.Breakdown); err != nil {
			return nil, err
		}
	}
	if len(unmetJSON) > 0 {
		if err := json.Unmarshal(unmetJSON, &e.UnmetRequirements); err != nil {
			return nil, err
		}
	}
	return &e, nil
}
