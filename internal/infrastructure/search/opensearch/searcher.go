package opensearch

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/openmdr/MedRank-Intelligence/internal/application/directory"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// Searcher runs full-text and filtered queries over the profiles index.
type Searcher struct {
	client *Client
}

// NewSearcher builds a searcher over an established client.
func NewSearcher(client *Client) *Searcher {
	return &Searcher{client: client}
}

// SearchProfiles executes query and returns matching documents with the
// total hit count.
func (s *Searcher) SearchProfiles(ctx context.Context, q directory.SearchQuery) (*directory.SearchResult, error) {
	if err := q.Pagination.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildProfileQuery(q))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal search query")
	}

	resp, err := s.client.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{s.client.IndexName(profilesIndex)},
		Body:    bytes.NewReader(body),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCodeSearchQueryError, "search profiles")
	}

	result := &directory.SearchResult{
		Total: resp.Hits.Total.Value,
		Hits:  make([]directory.SearchHit, 0, len(resp.Hits.Hits)),
	}
	for _, hit := range resp.Hits.Hits {
		var doc ProfileDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCodeSerialization, "decode search hit")
		}
		result.Hits = append(result.Hits, directory.SearchHit{
			ProfileID:    common.ProfileID(doc.ProfileID),
			FullName:     doc.FullName,
			Specialty:    doc.Specialty,
			Country:      doc.Country,
			IsHistorical: doc.IsHistorical,
			Score:        doc.Score,
			EngineTier:   doc.EngineTier,
			GateTier:     doc.GateTier,
			Disqualified: doc.Disqualified,
		})
	}
	return result, nil
}

// buildProfileQuery renders the query DSL: a bool query with an optional
// fuzzy match on full_name plus keyword filters, sorted by score when asked.
func buildProfileQuery(q directory.SearchQuery) map[string]interface{} {
	must := make([]interface{}, 0, 1)
	if q.Query != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"full_name": map[string]interface{}{
					"query":     q.Query,
					"fuzziness": "AUTO",
				},
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	filter := make([]interface{}, 0, 4)
	if q.Specialty != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"specialty": q.Specialty}})
	}
	if q.Country != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"country": q.Country}})
	}
	if q.Tier != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"engine_tier": q.Tier}})
	}
	if q.MinScore > 0 {
		filter = append(filter, map[string]interface{}{
			"range": map[string]interface{}{"score": map[string]interface{}{"gte": q.MinScore}},
		})
	}

	query := map[string]interface{}{
		"from": q.Pagination.Offset(),
		"size": q.Pagination.PageSize,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
	if q.SortByScore {
		query["sort"] = []interface{}{
			map[string]interface{}{"score": map[string]interface{}{"order": "desc", "missing": "_last"}},
		}
	}
	return query
}
