// Package repositories contains the graph-backed repositories. The mentorship
// lineage lives here as Practitioner nodes joined by MENTORED relationships.
package repositories

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	infraNeo4j "github.com/openmdr/MedRank-Intelligence/internal/infrastructure/database/neo4j"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

const (
	defaultLineageDepth = 3
	maxLineageDepth     = 5
)

// graphExecutor is the slice of the neo4j driver the repository needs.
type graphExecutor interface {
	ExecuteRead(ctx context.Context, work func(infraNeo4j.Transaction) (interface{}, error)) (interface{}, error)
	ExecuteWrite(ctx context.Context, work func(infraNeo4j.Transaction) (interface{}, error)) (interface{}, error)
}

// LineageRepository persists the mentorship graph. It implements
// profile.LineageRepository.
type LineageRepository struct {
	driver graphExecutor
	logger logging.Logger
}

// NewLineageRepository builds a repository over an established driver.
func NewLineageRepository(driver graphExecutor, log logging.Logger) *LineageRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &LineageRepository{driver: driver, logger: log.Named("lineage")}
}

// EnsureSchema creates the uniqueness constraint on Practitioner ids.
func (r *LineageRepository) EnsureSchema(ctx context.Context) error {
	cypher := `CREATE CONSTRAINT practitioner_id IF NOT EXISTS
		FOR (p:Practitioner) REQUIRE p.id IS UNIQUE`

	_, err := r.driver.ExecuteWrite(ctx, func(tx infraNeo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, nil)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	return err
}

// UpsertNode mirrors a profile into the graph, creating or refreshing its
// Practitioner node.
func (r *LineageRepository) UpsertNode(ctx context.Context, node profile.LineageNode) error {
	if node.ProfileID == "" {
		return appErrors.InvalidParam("lineage node requires a profile id")
	}

	cypher := `MERGE (p:Practitioner {id: $id})
		ON CREATE SET
			p.full_name = $full_name,
			p.specialty = $specialty,
			p.created_at = datetime()
		ON MATCH SET
			p.full_name = $full_name,
			p.specialty = $specialty,
			p.updated_at = datetime()`

	params := map[string]any{
		"id":        string(node.ProfileID),
		"full_name": node.FullName,
		"specialty": node.Specialty,
	}

	_, err := r.driver.ExecuteWrite(ctx, func(tx infraNeo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeGraphWriteError, "upsert practitioner node")
	}
	return nil
}

// AddEdge records a mentor → mentee relationship. Both endpoints must already
// exist in the graph; re-adding an edge refreshes its properties.
func (r *LineageRepository) AddEdge(ctx context.Context, edge profile.LineageEdge) error {
	if edge.MentorID == "" || edge.MenteeID == "" {
		return appErrors.InvalidParam("lineage edge requires mentor and mentee ids")
	}
	if edge.MentorID == edge.MenteeID {
		return appErrors.InvalidParam("a practitioner cannot mentor themselves")
	}

	cypher := `MATCH (mentor:Practitioner {id: $mentor_id})
		MATCH (mentee:Practitioner {id: $mentee_id})
		MERGE (mentor)-[r:MENTORED]->(mentee)
		SET r.field = $field, r.start_year = $start_year
		RETURN count(r) AS edges`

	params := map[string]any{
		"mentor_id":  string(edge.MentorID),
		"mentee_id":  string(edge.MenteeID),
		"field":      edge.Field,
		"start_year": edge.StartYear,
	}

	created, err := r.driver.ExecuteWrite(ctx, func(tx infraNeo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		if result.Next(ctx) {
			count, _ := result.Record().Get("edges")
			return count, nil
		}
		return int64(0), result.Err()
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeGraphWriteError, "add mentorship edge")
	}
	if n, ok := created.(int64); ok && n == 0 {
		return appErrors.NotFound("mentor or mentee is not in the lineage graph")
	}
	return nil
}

// GetLineage returns mentors and mentees of a profile up to depth hops. Depth
// is clamped to [1, 5] with a default of 3.
func (r *LineageRepository) GetLineage(ctx context.Context, id common.ProfileID, depth int) (*profile.Lineage, error) {
	if id == "" {
		return nil, appErrors.InvalidParam("profile id is required")
	}
	if depth <= 0 {
		depth = defaultLineageDepth
	}
	if depth > maxLineageDepth {
		depth = maxLineageDepth
	}

	// Variable-length bounds cannot be parameterized; depth is a clamped int.
	mentorsCypher := fmt.Sprintf(`MATCH path = (m:Practitioner)-[:MENTORED*1..%d]->(p:Practitioner {id: $id})
		RETURN m.id AS id, m.full_name AS full_name, m.specialty AS specialty,
			min(length(path)) AS depth
		ORDER BY depth, full_name`, depth)
	menteesCypher := fmt.Sprintf(`MATCH path = (p:Practitioner {id: $id})-[:MENTORED*1..%d]->(m:Practitioner)
		RETURN m.id AS id, m.full_name AS full_name, m.specialty AS specialty,
			min(length(path)) AS depth
		ORDER BY depth, full_name`, depth)

	params := map[string]any{"id": string(id)}

	out, err := r.driver.ExecuteRead(ctx, func(tx infraNeo4j.Transaction) (interface{}, error) {
		exists, err := tx.Run(ctx, `MATCH (p:Practitioner {id: $id}) RETURN p.id`, params)
		if err != nil {
			return nil, err
		}
		if !exists.Next(ctx) {
			if err := exists.Err(); err != nil {
				return nil, err
			}
			return nil, appErrors.NotFound("profile is not in the lineage graph: " + string(id))
		}

		lineage := &profile.Lineage{ProfileID: id, Depth: depth}

		mentorRes, err := tx.Run(ctx, mentorsCypher, params)
		if err != nil {
			return nil, err
		}
		lineage.Mentors, err = infraNeo4j.CollectRecords(ctx, mentorRes, mapLineageNode)
		if err != nil {
			return nil, err
		}

		menteeRes, err := tx.Run(ctx, menteesCypher, params)
		if err != nil {
			return nil, err
		}
		lineage.Mentees, err = infraNeo4j.CollectRecords(ctx, menteeRes, mapLineageNode)
		if err != nil {
			return nil, err
		}
		return lineage, nil
	})
	if err != nil {
		// The driver already tags read failures; NotFound survives the chain.
		return nil, err
	}
	return out.(*profile.Lineage), nil
}

// RemoveProfile detaches and deletes the node. Removing a profile that is not
// mirrored in the graph is a no-op.
func (r *LineageRepository) RemoveProfile(ctx context.Context, id common.ProfileID) error {
	if id == "" {
		return appErrors.InvalidParam("profile id is required")
	}

	cypher := `MATCH (p:Practitioner {id: $id}) DETACH DELETE p`

	_, err := r.driver.ExecuteWrite(ctx, func(tx infraNeo4j.Transaction) (interface{}, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{"id": string(id)})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeGraphWriteError, "remove practitioner node")
	}
	r.logger.Debug("practitioner removed from graph", logging.String("profile_id", string(id)))
	return nil
}

func mapLineageNode(rec *neo4j.Record) (profile.LineageNode, error) {
	node := profile.LineageNode{}
	if v, ok := rec.Get("id"); ok {
		if s, ok := v.(string); ok {
			node.ProfileID = common.ProfileID(s)
		}
	}
	if v, ok := rec.Get("full_name"); ok {
		if s, ok := v.(string); ok {
			node.FullName = s
		}
	}
	if v, ok := rec.Get("specialty"); ok {
		if s, ok := v.(string); ok {
			node.Specialty = s
		}
	}
	if v, ok := rec.Get("depth"); ok {
		if d, ok := v.(int64); ok {
			node.Depth = int(d)
		}
	}
	return node, nil
}
