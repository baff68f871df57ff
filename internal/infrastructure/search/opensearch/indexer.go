package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/internal/infrastructure/monitoring/logging"
	appErrors "github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// profilesIndex is the logical index name; the client adds the prefix.
const profilesIndex = "profiles"

// profileMapping keeps full_name searchable while everything else stays
// filterable or sortable.
const profileMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 1
  },
  "mappings": {
    "properties": {
      "profile_id":     {"type": "keyword"},
      "full_name":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "specialty":      {"type": "keyword"},
      "country":        {"type": "keyword"},
      "is_historical":  {"type": "boolean"},
      "score":          {"type": "double"},
      "engine_tier":    {"type": "keyword"},
      "gate_tier":      {"type": "keyword"},
      "disqualified":   {"type": "boolean"},
      "citations":      {"type": "double"},
      "h_index":        {"type": "double"},
      "years_active":   {"type": "double"},
      "evaluated_at":   {"type": "date"},
      "updated_at":     {"type": "date"}
    }
  }
}`

// ProfileDocument is the indexed projection of a profile and its latest
// evaluation. Score is nil for profiles never evaluated or disqualified
// without a concrete score.
type ProfileDocument struct {
	ProfileID    string     `json:"profile_id"`
	FullName     string     `json:"full_name"`
	Specialty    string     `json:"specialty"`
	Country      string     `json:"country"`
	IsHistorical bool       `json:"is_historical"`
	Score        *float64   `json:"score,omitempty"`
	EngineTier   string     `json:"engine_tier,omitempty"`
	GateTier     string     `json:"gate_tier,omitempty"`
	Disqualified bool       `json:"disqualified"`
	Citations    float64    `json:"citations"`
	HIndex       float64    `json:"h_index"`
	YearsActive  float64    `json:"years_active"`
	EvaluatedAt  *time.Time `json:"evaluated_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Indexer writes profile documents. It satisfies both the directory indexer
// port (profile lifecycle) and the reputation indexer port (score sync).
type Indexer struct {
	client *Client
	logger logging.Logger
}

// NewIndexer builds an indexer over an established client.
func NewIndexer(client *Client) *Indexer {
	return &Indexer{client: client, logger: client.logger.Named("indexer")}
}

// EnsureProfileIndex creates the profiles index if missing.
func (i *Indexer) EnsureProfileIndex(ctx context.Context) error {
	name := i.client.IndexName(profilesIndex)

	resp, err := i.client.api.Indices.Exists(ctx, opensearchapi.IndicesExistsReq{Indices: []string{name}})
	if resp != nil && resp.StatusCode == 200 {
		return nil
	}
	if resp != nil && resp.StatusCode != 404 && err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSearchIndexError, "check index")
	}

	_, err = i.client.api.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: name,
		Body:  strings.NewReader(profileMapping),
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSearchIndexError, "create index "+name)
	}
	i.logger.Info("index created", logging.String("index", name))
	return nil
}

// IndexProfile upserts the directory projection of p, preserving no score
// fields. Score sync happens separately on evaluation.
func (i *Indexer) IndexProfile(ctx context.Context, p *profile.Profile) error {
	doc := ProfileDocument{
		ProfileID:    string(p.ID),
		FullName:     p.FullName,
		Specialty:    p.Specialty,
		Country:      p.Country,
		IsHistorical: p.IsHistorical,
		Citations:    p.Citations,
		HIndex:       p.HIndex,
		YearsActive:  p.YearsActive,
		UpdatedAt:    p.UpdatedAt,
	}
	return i.indexDocument(ctx, string(p.ID), doc)
}

// IndexProfileScore upserts the projection of p enriched with evaluation e.
func (i *Indexer) IndexProfileScore(ctx context.Context, p *profile.Profile, e *evaluation.Evaluation) error {
	evaluatedAt := e.EvaluatedAt
	doc := ProfileDocument{
		ProfileID:    string(p.ID),
		FullName:     p.FullName,
		Specialty:    p.Specialty,
		Country:      p.Country,
		IsHistorical: p.IsHistorical,
		Score:        e.Score,
		EngineTier:   string(e.EngineTier),
		GateTier:     string(e.GateTier),
		Disqualified: e.Disqualified,
		Citations:    p.Citations,
		HIndex:       p.HIndex,
		YearsActive:  p.YearsActive,
		EvaluatedAt:  &evaluatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	return i.indexDocument(ctx, string(p.ID), doc)
}

// DeleteProfile removes the document. Absent documents are not an error.
func (i *Indexer) DeleteProfile(ctx context.Context, id common.ProfileID) error {
	resp, err := i.client.api.Document.Delete(ctx, opensearchapi.DocumentDeleteReq{
		Index:      i.client.IndexName(profilesIndex),
		DocumentID: string(id),
	})
	if resp != nil && resp.Inspect().Response != nil && resp.Inspect().Response.StatusCode == 404 {
		return nil
	}
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSearchIndexError, "delete document")
	}
	return nil
}

// BulkIndexProfiles writes docs in one bulk request. Used by reindex jobs.
func (i *Indexer) BulkIndexProfiles(ctx context.Context, docs []ProfileDocument) error {
	if len(docs) == 0 {
		return nil
	}

	index := i.client.IndexName(profilesIndex)
	var buf bytes.Buffer
	for _, doc := range docs {
		action, err := json.Marshal(map[string]map[string]string{
			"index": {"_index": index, "_id": doc.ProfileID},
		})
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal bulk action")
		}
		source, err := json.Marshal(doc)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal bulk document")
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(source)
		buf.WriteByte('\n')
	}

	resp, err := i.client.api.Bulk(ctx, opensearchapi.BulkReq{Body: &buf})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSearchIndexError, "bulk index")
	}
	if resp.Errors {
		i.logger.Warn("bulk index completed with item errors", logging.Int("items", len(resp.Items)))
		return appErrors.New(appErrors.ErrCodeSearchIndexError, "bulk index had item failures")
	}
	i.logger.Debug("bulk indexed", logging.Int("docs", len(docs)))
	return nil
}

func (i *Indexer) indexDocument(ctx context.Context, id string, doc ProfileDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSerialization, "marshal profile document")
	}
	_, err = i.client.api.Index(ctx, opensearchapi.IndexReq{
		Index:      i.client.IndexName(profilesIndex),
		DocumentID: id,
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrCodeSearchIndexError, "index profile document")
	}
	return nil
}
