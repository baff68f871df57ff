package profile

import (
	"context"

	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// Repository defines the persistence contract for the profile directory.
type Repository interface {
	Upsert(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id common.ProfileID) (*Profile, error)
	List(ctx context.Context, filter ListFilter) (*common.PaginatedResult[*Profile], error)
	Delete(ctx context.Context, id common.ProfileID) error
}

// LineageEdge is one mentor → mentee relationship in the lineage graph.
type LineageEdge struct {
	MentorID  common.ProfileID `json:"mentor_id"`
	MenteeID  common.ProfileID `json:"mentee_id"`
	Field     string           `json:"field,omitempty"`
	StartYear int              `json:"start_year,omitempty"`
}

// LineageNode is a lightweight projection of a profile inside the graph; the
// graph mirror stores only what lineage rendering needs.
type LineageNode struct {
	ProfileID common.ProfileID `json:"profile_id"`
	FullName  string           `json:"full_name"`
	Specialty string           `json:"specialty,omitempty"`
	Depth     int              `json:"depth"`
}

// Lineage is the neighborhood of one profile in the mentorship graph.
type Lineage struct {
	ProfileID common.ProfileID `json:"profile_id"`
	Mentors   []LineageNode    `json:"mentors"`
	Mentees   []LineageNode    `json:"mentees"`
	Depth     int              `json:"depth"`
}

// LineageRepository defines the mentorship graph contract.
type LineageRepository interface {
	UpsertNode(ctx context.Context, node LineageNode) error
	AddEdge(ctx context.Context, edge LineageEdge) error
	GetLineage(ctx context.Context, id common.ProfileID, depth int) (*Lineage, error)
	RemoveProfile(ctx context.Context, id common.ProfileID) error
}
