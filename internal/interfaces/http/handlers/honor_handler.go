package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openmdr/MedRank-Intelligence/internal/domain/honor"
	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
)

// HonorHandler exposes the award classifier directly, so upstream curation
// tools can preview how an award list will score.
type HonorHandler struct{}

// NewHonorHandler builds the handler.
func NewHonorHandler() *HonorHandler {
	return &HonorHandler{}
}

// ClassifyRequest is the body for POST /honors/classify.
type ClassifyRequest struct {
	Awards []honor.Award `json:"awards"`
}

// Classify handles POST /honors/classify. Classification is pure and
// deterministic; unknown awards degrade to the unclassified tier.
func (h *HonorHandler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errors.InvalidParam("invalid request body: "+err.Error()))
		return
	}
	if len(req.Awards) == 0 {
		respondError(c, errors.InvalidParam("at least one award is required"))
		return
	}

	c.JSON(http.StatusOK, honor.CalculateBonus(req.Awards))
}
