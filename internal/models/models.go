// Package models defines the request and response bodies of the HTTP API.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// JSON tags (e.g., `json:"text"`) control how struct fields are serialized
// to/from JSON. `omitempty` drops a field from the output when it holds its
// zero value, which is how one struct covers several response shapes.
package models

// --- Upload ---

// UploadResponse acknowledges a non-PDF upload by name.
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// PDFUploadResponse carries the text extracted from an uploaded PDF. It
// always includes "text", even when the PDF held no text at all.
type PDFUploadResponse struct {
	Message string `json:"message"`
	Text    string `json:"text"`
}

// UploadErrorResponse reports a failed upload. Details carries the
// extraction failure reason.
type UploadErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// --- Search ---

// SearchRequest is the body of POST /api.
// Go Pattern: `binding:"required"` is validated by Gin's ShouldBindJSON.
type SearchRequest struct {
	Val string `json:"val" binding:"required"`
}

// --- Summary ---

// SummaryResponse is returned by GET /summary. Exactly one of AI, Message
// or Error is set.
type SummaryResponse struct {
	Success bool   `json:"success"`
	AI      string `json:"ai,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StreamError is the payload of the "error" event on GET /summary/stream.
type StreamError struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// --- Common ---

// ErrorResponse is the standard error format.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	CachedEntries int    `json:"cachedEntries"`
	Provider      string `json:"provider"`
}
