package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmdr/MedRank-Intelligence/internal/application/reputation"
	"github.com/openmdr/MedRank-Intelligence/internal/domain/evaluation"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// EvaluationHandler serves the scoring surface: evaluations, history,
// comparisons, tier distribution, exports, and the leaderboard.
type EvaluationHandler struct {
	service reputation.Service
}

// NewEvaluationHandler builds the handler.
func NewEvaluationHandler(service reputation.Service) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// Evaluate handles POST /evaluations.
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	var req reputation.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("invalid request body: "+err.Error()))
		return
	}

	result, err := h.service.Evaluate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// BatchEvaluateRequest is the body for POST /evaluations/batch.
type BatchEvaluateRequest struct {
	ProfileIDs []common.ProfileID `json:"profile_ids"`
}

// EvaluateBatch handles POST /evaluations/batch.
func (h *EvaluationHandler) EvaluateBatch(c *gin.Context) {
	var req BatchEvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("invalid request body: "+err.Error()))
		return
	}

	result, err := h.service.EvaluateBatch(c.Request.Context(), req.ProfileIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHistory handles GET /profiles/:id/evaluations.
func (h *EvaluationHandler) GetHistory(c *gin.Context) {
	profileID := common.ProfileID(c.Param("id"))
	q := evaluation.HistoryQuery{Limit: queryInt(c, "limit", 0)}

	records, err := h.service.GetHistory(c.Request.Context(), profileID, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile_id": profileID, "evaluations": records})
}

// Compare handles GET /profiles/:id/evaluations/compare.
func (h *EvaluationHandler) Compare(c *gin.Context) {
	profileID := common.ProfileID(c.Param("id"))

	cmp, err := h.service.CompareEvaluations(c.Request.Context(), profileID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

// TierDistribution handles GET /tiers/distribution.
func (h *EvaluationHandler) TierDistribution(c *gin.Context) {
	td, err := h.service.GetTierDistribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, td)
}

// Export handles GET /evaluations/:id/export. The artifact body is streamed
// back; its object-storage location, when available, rides a header.
func (h *EvaluationHandler) Export(c *gin.Context) {
	id := common.EvaluationID(c.Param("id"))
	format := reputation.ExportFormat(c.DefaultQuery("format", "json"))

	result, err := h.service.ExportEvaluation(c.Request.Context(), id, format)
	if err != nil {
		respondError(c, err)
		return
	}
	if result.Location != "" {
		c.Header("X-Export-Location", result.Location)
	}
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Leaderboard handles GET /leaderboard.
func (h *EvaluationHandler) Leaderboard(c *gin.Context) {
	n := queryInt(c, "n", 0)

	entries, err := h.service.GetLeaderboard(c.Request.Context(), n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
