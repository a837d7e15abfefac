package summary

import (
	"context"
	"errors"
)

var (
	// ErrNoCandidates means the provider answered without any usable
	// candidate content.
	ErrNoCandidates = errors.New("provider returned no candidates")

	// ErrNotConfigured means the provider is missing its credentials.
	ErrNotConfigured = errors.New("summary provider not configured")
)

// Provider generates text from a single user prompt.
type Provider interface {
	// Name identifies the provider in logs and health output.
	Name() string

	// Generate returns the first candidate's complete text.
	Generate(ctx context.Context, prompt string) (string, error)

	// Stream starts a streamed generation. The stream is bound to ctx;
	// cancelling ctx aborts it.
	Stream(ctx context.Context, prompt string) (Stream, error)
}

// Stream yields incremental text deltas of a streamed generation. Deltas
// are pulled one at a time, so a slow consumer slows the upstream read.
type Stream interface {
	// Next returns the next delta, io.EOF once the stream is exhausted, or
	// ErrNoCandidates if the stream ended without any candidate.
	Next() (string, error)

	Close() error
}
