package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-scout/internal/apperrors"
	"github.com/Shimizu-Technology/pdf-scout/internal/middleware"
	"github.com/Shimizu-Technology/pdf-scout/internal/models"
)

const searchFailed = "Failed to fetch PDF links"

// SearchPDFs looks up downloadable PDFs for the query in the body.
// POST /api
func (h *Handler) SearchPDFs(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Search query is required"})
		return
	}

	results, err := h.Search.SearchPDFs(c.Request.Context(), req.Val)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Type == apperrors.TypeValidation {
			c.JSON(apperrors.StatusCode(err), models.ErrorResponse{Error: appErr.Message})
			return
		}
		h.log.Error("pdf search failed", "request_id", middleware.GetRequestID(c), "query", req.Val, "err", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: searchFailed})
		return
	}

	c.JSON(http.StatusOK, results)
}
