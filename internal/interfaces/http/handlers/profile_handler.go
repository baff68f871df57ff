package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openmdr/MedRank-Intelligence/internal/application/directory"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/profile"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// ProfileHandler serves the practitioner directory: profile CRUD, search,
// and mentorship lineage.
type ProfileHandler struct {
	service directory.Service
}

// NewProfileHandler builds the handler.
func NewProfileHandler(service directory.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Upsert handles PUT /profiles/:id. The path ID wins over any body ID.
func (h *ProfileHandler) Upsert(c *gin.Context) {
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, errors.InvalidParam("invalid request body: "+err.Error()))
		return
	}
	p.ID = common.ProfileID(c.Param("id"))

	if err := h.service.UpsertProfile(c.Request.Context(), &p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Create handles POST /profiles with the ID in the body.
func (h *ProfileHandler) Create(c *gin.Context) {
	var p profile.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, errors.InvalidParam("invalid request body: "+err.Error()))
		return
	}

	if err := h.service.UpsertProfile(c.Request.Context(), &p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Get handles GET /profiles/:id.
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.service.GetProfile(c.Request.Context(), common.ProfileID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// List handles GET /profiles.
func (h *ProfileHandler) List(c *gin.Context) {
	filter := profile.ListFilter{
		Specialty:  c.Query("specialty"),
		Country:    c.Query("country"),
		Pagination: parsePagination(c),
	}
	if v := c.Query("historical"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.IsHistorical = &b
		}
	}

	result, err := h.service.ListProfiles(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Delete handles DELETE /profiles/:id.
func (h *ProfileHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteProfile(c.Request.Context(), common.ProfileID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search handles GET /profiles/search.
func (h *ProfileHandler) Search(c *gin.Context) {
	q := directory.SearchQuery{
		Query:      c.Query("q"),
		Specialty:  c.Query("specialty"),
		Country:    c.Query("country"),
		Tier:       c.Query("tier"),
		Pagination: parsePagination(c),
	}
	if v := c.Query("min_score"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			q.MinScore = f
		}
	}
	if v := c.Query("sort_by_score"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			q.SortByScore = b
		}
	}

	result, err := h.service.SearchProfiles(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddLineageEdge handles POST /lineage/edges.
func (h *ProfileHandler) AddLineageEdge(c *gin.Context) {
	var edge profile.LineageEdge
	if err := c.ShouldBindJSON(&edge); err != nil {
		respondError(c, errors.InvalidParam("invalid request body: "+err.Error()))
		return
	}

	if err := h.service.AddLineageEdge(c.Request.Context(), edge); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, edge)
}

// GetLineage handles GET /profiles/:id/lineage.
func (h *ProfileHandler) GetLineage(c *gin.Context) {
	id := common.ProfileID(c.Param("id"))
	depth := queryInt(c, "depth", 0)

	lineage, err := h.service.GetLineage(c.Request.Context(), id, depth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lineage)
}
