// Package summary sends extracted document text to a generative-text
// provider and returns the generated summary.
//
// Two providers are available: the Gemini REST API (API key) and Gemini on
// Vertex AI (Application Default Credentials). Both can answer in one piece
// or as a stream of text deltas, which the service concatenates.
package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Shimizu-Technology/pdf-scout/internal/apperrors"
)

// promptPrefix introduces the document text in the single user message.
const promptPrefix = "Summarize this content clearly:\n\n"

// NoContentMessage is reported when the provider produced nothing usable.
const NoContentMessage = "No available tokens"

// TextSource looks up cached text by identifier. Missing entries read as "".
type TextSource interface {
	Text(id string) string
}

// Options configures how the service calls its provider.
type Options struct {
	Stream  bool          // Consume the provider's streamed response
	Timeout time.Duration // Bound on each provider call; 0 means none
}

// Service handles summary generation.
type Service struct {
	provider Provider
	texts    TextSource
	opts     Options
	log      *slog.Logger
}

// New creates a summary service.
func New(provider Provider, texts TextSource, opts Options, log *slog.Logger) *Service {
	return &Service{
		provider: provider,
		texts:    texts,
		opts:     opts,
		log:      log,
	}
}

// ProviderName reports which provider backs the service.
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// BuildPrompt embeds the document text in the summary instruction.
func BuildPrompt(text string) string {
	return promptPrefix + text
}

// Summarize generates a summary of the text cached for id.
//
// An identifier with nothing cached is summarized as empty text; that is not
// an error. A provider that returns no usable content yields an
// empty-result error, distinct from a provider failure.
func (s *Service) Summarize(ctx context.Context, id string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	prompt := BuildPrompt(s.texts.Text(id))
	start := time.Now()

	var (
		text string
		err  error
	)
	if s.opts.Stream {
		text, err = s.collect(ctx, prompt, nil)
	} else {
		text, err = s.provider.Generate(ctx, prompt)
	}
	if err != nil {
		return "", s.classify(id, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewEmptyResultError(NoContentMessage)
	}

	s.log.Info("summary generated", "id", id, "provider", s.provider.Name(), "stream", s.opts.Stream,
		"prompt_chars", len(prompt), "summary_chars", len(text), "elapsed", time.Since(start))
	return text, nil
}

// StreamSummary streams the summary of the text cached for id, handing each
// delta to onDelta as it arrives. If onDelta fails, typically because the
// client went away, the upstream stream is abandoned and that error is
// returned.
func (s *Service) StreamSummary(ctx context.Context, id string, onDelta func(string) error) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	text, err := s.collect(ctx, BuildPrompt(s.texts.Text(id)), onDelta)
	if err != nil {
		return s.classify(id, err)
	}
	if strings.TrimSpace(text) == "" {
		return apperrors.NewEmptyResultError(NoContentMessage)
	}
	return nil
}

// collect drains a provider stream, concatenating deltas. When onDelta is
// set each non-empty delta is also forwarded.
func (s *Service) collect(ctx context.Context, prompt string, onDelta func(string) error) (string, error) {
	stream, err := s.provider.Stream(ctx, prompt)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		delta, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if onDelta != nil {
			if err := onDelta(delta); err != nil {
				return "", &deliveryError{err: err}
			}
		}
	}
}

// deliveryError marks a failure writing to our own client rather than the
// provider.
type deliveryError struct {
	err error
}

func (e *deliveryError) Error() string { return "deliver summary delta: " + e.err.Error() }
func (e *deliveryError) Unwrap() error { return e.err }

// classify maps provider errors onto the API's error categories. Details
// are logged here and never sent to the caller.
func (s *Service) classify(id string, err error) error {
	var delivery *deliveryError
	switch {
	case errors.Is(err, ErrNoCandidates):
		s.log.Warn("provider returned no content", "id", id, "provider", s.provider.Name())
		return apperrors.NewEmptyResultError(NoContentMessage)
	case errors.Is(err, ErrNotConfigured):
		s.log.Error("summary provider not configured", "provider", s.provider.Name(), "err", err)
		return apperrors.NewUnavailableError("Summarization is not configured")
	case errors.As(err, &delivery):
		s.log.Info("summary stream abandoned by client", "id", id, "err", delivery.err)
		return err
	default:
		s.log.Error("summary generation failed", "id", id, "provider", s.provider.Name(), "err", err)
		return apperrors.NewUpstreamError("Failed to generate summary", fmt.Errorf("%s: %w", s.provider.Name(), err))
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}
