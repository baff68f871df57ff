package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

func TestBuildProfileFilter_Empty(t *testing.T) {
	where, args := buildProfileFilter(profile.ListFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBuildProfileFilter_AllPredicates(t *testing.T) {
	historical := true
	where, args := buildProfileFilter(profile.ListFilter{
		Specialty:    "cardiology",
		Country:      "IN",
		IsHistorical: &historical,
		Pagination:   common.Pagination{Page: 1, PageSize: 20},
	})

	assert.Equal(t, " WHERE specialty = $1 AND country = $2 AND is_historical = $3", where)
	assert.Equal(t, []interface{}{"cardiology", "IN", true}, args)
}

func TestBuildProfileFilter_SinglePredicatePositions(t *testing.T) {
	where, args := buildProfileFilter(profile.ListFilter{Country: "US"})
	assert.Equal(t, " WHERE country = $1", where)
	assert.Equal(t, []interface{}{"US"}, args)
}
