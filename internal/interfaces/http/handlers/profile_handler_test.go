package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmdr/MedRank-Intelligence/internal/application/directory"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

type stubDirectoryService struct {
	upserted    *profile.Profile
	getResult   *profile.Profile
	getErr      error
	listResult  *common.PaginatedResult[*profile.Profile]
	deleted     common.ProfileID
	search      *directory.SearchResult
	searchQuery directory.SearchQuery
	lineage     *profile.Lineage
	edge        profile.LineageEdge
}

func (s *stubDirectoryService) UpsertProfile(_ context.Context, p *profile.Profile) error {
	s.upserted = p
	return nil
}

func (s *stubDirectoryService) GetProfile(context.Context, common.ProfileID) (*profile.Profile, error) {
	return s.getResult, s.getErr
}

func (s *stubDirectoryService) ListProfiles(context.Context, profile.ListFilter) (*common.PaginatedResult[*profile.Profile], error) {
	return s.listResult, nil
}

func (s *stubDirectoryService) DeleteProfile(_ context.Context, id common.ProfileID) error {
	s.deleted = id
	return nil
}

func (s *stubDirectoryService) SearchProfiles(_ context.Context, q directory.SearchQuery) (*directory.SearchResult, error) {
	s.searchQuery = q
	return s.search, nil
}

func (s *stubDirectoryService) AddLineageEdge(_ context.Context, edge profile.LineageEdge) error {
	s.edge = edge
	return nil
}

func (s *stubDirectoryService) GetLineage(context.Context, common.ProfileID, int) (*profile.Lineage, error) {
	return s.lineage, nil
}

func newProfileRouter(svc directory.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProfileHandler(svc)
	r := gin.New()
	r.POST("/profiles", h.Create)
	r.GET("/profiles", h.List)
	r.GET("/profiles/search", h.Search)
	r.GET("/profiles/:id", h.Get)
	r.PUT("/profiles/:id", h.Upsert)
	r.DELETE("/profiles/:id", h.Delete)
	r.GET("/profiles/:id/lineage", h.GetLineage)
	r.POST("/lineage/edges", h.AddLineageEdge)
	return r
}

func TestUpsert_PathIDWins(t *testing.T) {
	svc := &stubDirectoryService{}
	r := newProfileRouter(svc)

	body := bytes.NewBufferString(`{"id":"other","full_name":"Harvey Cushing"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/profiles/prof-1", body))

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.upserted)
	assert.Equal(t, common.ProfileID("prof-1"), svc.upserted.ID)
}

func TestCreate_Returns201(t *testing.T) {
	svc := &stubDirectoryService{}
	r := newProfileRouter(svc)

	body := bytes.NewBufferString(`{"id":"prof-1","full_name":"Harvey Cushing"}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/profiles", body))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestGet_NotFound(t *testing.T) {
	svc := &stubDirectoryService{getErr: errors.NotFound("profile ghost not found")}
	r := newProfileRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profiles/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDelete_Returns204(t *testing.T) {
	svc := &stubDirectoryService{}
	r := newProfileRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/profiles/prof-1", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, common.ProfileID("prof-1"), svc.deleted)
}

func TestSearch_MapsQueryParameters(t *testing.T) {
	svc := &stubDirectoryService{search: &directory.SearchResult{Total: 1}}
	r := newProfileRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/profiles/search?q=cushing&specialty=neurosurgery&tier=TITAN&min_score=90&sort_by_score=true&page=2&page_size=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cushing", svc.searchQuery.Query)
	assert.Equal(t, "neurosurgery", svc.searchQuery.Specialty)
	assert.Equal(t, "TITAN", svc.searchQuery.Tier)
	assert.Equal(t, 90.0, svc.searchQuery.MinScore)
	assert.True(t, svc.searchQuery.SortByScore)
	assert.Equal(t, 2, svc.searchQuery.Pagination.Page)
	assert.Equal(t, 10, svc.searchQuery.Pagination.PageSize)
}

func TestAddLineageEdge_OK(t *testing.T) {
	svc := &stubDirectoryService{}
	r := newProfileRouter(svc)

	body := bytes.NewBufferString(`{"mentor_id":"prof-a","mentee_id":"prof-b","field":"cardiology","start_year":1998}`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/lineage/edges", body))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, common.ProfileID("prof-a"), svc.edge.MentorID)
	assert.Equal(t, 1998, svc.edge.StartYear)
}

func TestGetLineage_OK(t *testing.T) {
	svc := &stubDirectoryService{lineage: &profile.Lineage{ProfileID: "prof-1", Depth: 2}}
	r := newProfileRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/profiles/prof-1/lineage?depth=2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"prof-1"`)
}
