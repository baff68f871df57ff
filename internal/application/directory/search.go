package directory

import (
	"context"

	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// SearchQuery narrows a profile search. Query matches full names fuzzily;
// the remaining fields are exact filters over indexed keywords.
type SearchQuery struct {
	Query       string
	Specialty   string
	Country     string
	Tier        string
	MinScore    float64
	SortByScore bool
	Pagination  common.Pagination
}

// SearchHit is one matched profile projection.
type SearchHit struct {
	ProfileID    common.ProfileID `json:"profile_id"`
	FullName     string           `json:"full_name"`
	Specialty    string           `json:"specialty"`
	Country      string           `json:"country"`
	IsHistorical bool             `json:"is_historical"`
	Score        *float64         `json:"score,omitempty"`
	EngineTier   string           `json:"engine_tier,omitempty"`
	GateTier     string           `json:"gate_tier,omitempty"`
	Disqualified bool             `json:"disqualified"`
}

// SearchResult is a page of hits with the total match count.
type SearchResult struct {
	Total int         `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

// ProfileSearcher queries the search index.
type ProfileSearcher interface {
	SearchProfiles(ctx context.Context, q SearchQuery) (*SearchResult, error)
}

// SearchProfiles delegates to the configured searcher.
func (s *service) SearchProfiles(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if s.searcher == nil {
		return nil, errors.New(errors.ErrCodeNotImplemented, "profile search is not configured")
	}
	if q.Pagination.Page == 0 {
		q.Pagination.Page = 1
	}
	if q.Pagination.PageSize == 0 {
		q.Pagination.PageSize = 20
	}
	if err := q.Pagination.Validate(); err != nil {
		return nil, errors.InvalidParam(err.Error())
	}
	return s.searcher.SearchProfiles(ctx, q)
}
