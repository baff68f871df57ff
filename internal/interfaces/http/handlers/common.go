// Package handlers contains the gin HTTP handlers for the public API.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openmdr/MedRank-Intelligence/pkg/errors"
	"github.com/openmdr/MedRank-Intelligence/pkg/types/common"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps application errors onto HTTP status codes. Internal
// errors are masked; the cause stays in the logs only.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status := http.StatusInternalServerError
	message := "internal server error"
	switch {
	case errors.IsNotFound(err):
		status, message = http.StatusNotFound, err.Error()
	case errors.IsValidation(err):
		status, message = http.StatusBadRequest, err.Error()
	case errors.IsConflict(err):
		status, message = http.StatusConflict, err.Error()
	case errors.IsCode(err, errors.ErrCodeNotImplemented):
		status, message = http.StatusNotImplemented, err.Error()
	case errors.IsCode(err, errors.ErrCodeServiceUnavailable):
		status, message = http.StatusServiceUnavailable, err.Error()
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    string(errors.GetCode(err)),
		Message: message,
	})
}

// parsePagination reads page / page_size query parameters with defaults.
func parsePagination(c *gin.Context) common.Pagination {
	p := common.Pagination{Page: 1, PageSize: 20}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := c.Query("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			p.PageSize = n
		}
	}
	return p
}

// queryInt reads an integer query parameter, falling back on absence or junk.
func queryInt(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
