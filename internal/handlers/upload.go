// upload.go handles document uploads.
//
// POST /upload: multipart form with a "file" part and an optional "id"
// naming the cache slot the extracted text is stored under.
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-scout/internal/apperrors"
	"github.com/Shimizu-Technology/pdf-scout/internal/middleware"
	"github.com/Shimizu-Technology/pdf-scout/internal/models"
	"github.com/Shimizu-Technology/pdf-scout/internal/services/upload"
)

const (
	pdfProcessedMessage = "PDF processed successfully"
	nonPDFMessage       = "File uploaded, but not a PDF. No extraction done."
	processingFailed    = "File processing failed"
)

// Upload stores a file, extracts its text if it is a PDF, and caches the
// text under the request's identifier.
// POST /upload
func (h *Handler) Upload(c *gin.Context) {
	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error: fmt.Sprintf("File too large. Max size: %d bytes", tooLarge.Limit),
			})
			return
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	result, err := h.Uploads.Process(c.Request.Context(), upload.Document{
		Content:    file,
		MediaType:  header.Header.Get("Content-Type"),
		Filename:   header.Filename,
		Identifier: c.PostForm("id"),
	})
	if err != nil {
		resp := models.UploadErrorResponse{Error: processingFailed}
		if appErr, ok := apperrors.As(err); ok {
			resp.Details = appErr.Details
		} else {
			h.log.Error("upload failed", "request_id", middleware.GetRequestID(c), "filename", header.Filename, "err", err)
		}
		c.JSON(apperrors.StatusCode(err), resp)
		return
	}

	if result.IsPDF {
		c.JSON(http.StatusOK, models.PDFUploadResponse{
			Message: pdfProcessedMessage,
			Text:    result.Text,
		})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		Message:  nonPDFMessage,
		Filename: result.Filename,
	})
}
