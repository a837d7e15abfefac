// summary.go handles summary generation.
//
// GET /summary?id=         complete summary as JSON
// GET /summary/stream?id=  summary deltas as server-sent events
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-scout/internal/apperrors"
	"github.com/Shimizu-Technology/pdf-scout/internal/models"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/upload"
)

const (
	summaryFailed        = "Failed to generate summary"
	summaryNotConfigured = "Summarization is not configured"
)

// Summary returns a generated summary of the text cached for ?id=.
// An identifier with nothing cached still answers 200.
// GET /summary
func (h *Handler) Summary(c *gin.Context) {
	if h.Summaries == nil {
		c.JSON(http.StatusServiceUnavailable, models.SummaryResponse{Error: summaryNotConfigured})
		return
	}

	id := upload.NormalizeIdentifier(c.Query("id"))
	text, err := h.Summaries.Summarize(c.Request.Context(), id)
	if err != nil {
		status, resp := summaryFailure(err)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, models.SummaryResponse{Success: true, AI: text})
}

// SummaryStream streams the summary for ?id= as server-sent events:
// "delta" events carry text chunks, then a final "done" or "error".
// GET /summary/stream
func (h *Handler) SummaryStream(c *gin.Context) {
	if h.Summaries == nil {
		c.JSON(http.StatusServiceUnavailable, models.SummaryResponse{Error: summaryNotConfigured})
		return
	}

	id := upload.NormalizeIdentifier(c.Query("id"))
	ctx := c.Request.Context()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	err := h.Summaries.StreamSummary(ctx, id, func(delta string) error {
		c.SSEvent("delta", delta)
		c.Writer.Flush()
		return ctx.Err()
	})
	if err != nil {
		if ctx.Err() != nil {
			return // client went away
		}
		_, resp := summaryFailure(err)
		c.SSEvent("error", models.StreamError{Message: resp.Message, Error: resp.Error})
		c.Writer.Flush()
		return
	}

	c.SSEvent("done", models.SummaryResponse{Success: true})
	c.Writer.Flush()
}

// summaryFailure maps a summary error onto its status code and envelope.
// Provider details never reach the client.
func summaryFailure(err error) (int, models.SummaryResponse) {
	status := apperrors.StatusCode(err)

	appErr, ok := apperrors.As(err)
	if !ok {
		return status, models.SummaryResponse{Error: summaryFailed}
	}

	switch appErr.Type {
	case apperrors.TypeEmptyResult:
		return status, models.SummaryResponse{Message: appErr.Message}
	case apperrors.TypeUnavailable:
		return status, models.SummaryResponse{Error: appErr.Message}
	default:
		return status, models.SummaryResponse{Error: summaryFailed}
	}
}
