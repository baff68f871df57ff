package opensearch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/application/directory"
	"github.com/openmdr/MedRank-Intelligence/internal/config"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

func TestBuildProfileQuery_FuzzyMatchAndFilters(t *testing.T) {
	q := buildProfileQuery(directory.SearchQuery{
		Query:       "harvey cushing",
		Specialty:   "neurosurgery",
		Tier:        "TITAN",
		MinScore:    90,
		SortByScore: true,
		Pagination:  common.Pagination{Page: 2, PageSize: 10},
	})

	assert.Equal(t, 10, q["from"])
	assert.Equal(t, 10, q["size"])

	data, err := json.Marshal(q)
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, `"fuzziness":"AUTO"`)
	assert.Contains(t, body, `"specialty":"neurosurgery"`)
	assert.Contains(t, body, `"engine_tier":"TITAN"`)
	assert.Contains(t, body, `"gte":90`)
	assert.Contains(t, body, `"sort"`)
}

func TestBuildProfileQuery_EmptyQueryMatchesAll(t *testing.T) {
	q := buildProfileQuery(directory.SearchQuery{
		Pagination: common.Pagination{Page: 1, PageSize: 20},
	})

	data, err := json.Marshal(q)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"match_all"`)
	assert.NotContains(t, string(data), `"sort"`)
}

func TestIndexName_Prefix(t *testing.T) {
	c := &Client{cfg: config.OpenSearchConfig{IndexPrefix: "mdr"}}
	assert.Equal(t, "mdr-profiles", c.IndexName(profilesIndex))

	c = &Client{}
	assert.Equal(t, "medrank-profiles", c.IndexName(profilesIndex))
}

func TestProfileMapping_IsValidJSON(t *testing.T) {
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(profileMapping), &m))
	assert.Contains(t, m, "mappings")
}
