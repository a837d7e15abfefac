package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
)

// VertexProvider generates text with Gemini on Vertex AI, authenticating
// through Application Default Credentials.
type VertexProvider struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewVertexProvider creates a Vertex AI provider for the given model.
func NewVertexProvider(ctx context.Context, projectID, region, modelName string) (*VertexProvider, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexProvider: projectID and region cannot be empty")
	}

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	return &VertexProvider{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
	}, nil
}

// Name implements Provider.
func (p *VertexProvider) Name() string {
	return "vertex/" + p.modelName
}

// Generate implements Provider.
func (p *VertexProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}

	text, ok := vertexCandidateText(resp)
	if !ok {
		return "", ErrNoCandidates
	}
	return text, nil
}

// Stream implements Provider.
func (p *VertexProvider) Stream(ctx context.Context, prompt string) (Stream, error) {
	return &vertexStream{it: p.model.GenerateContentStream(ctx, genai.Text(prompt))}, nil
}

// Close releases the underlying client.
func (p *VertexProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

type vertexStream struct {
	it           *genai.GenerateContentResponseIterator
	sawCandidate bool
}

func (s *vertexStream) Next() (string, error) {
	for {
		resp, err := s.it.Next()
		if errors.Is(err, iterator.Done) {
			if !s.sawCandidate {
				return "", ErrNoCandidates
			}
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}

		text, ok := vertexCandidateText(resp)
		if !ok {
			continue
		}
		s.sawCandidate = true
		return text, nil
	}
}

// Close is a no-op; the iterator is released when its context ends.
func (s *vertexStream) Close() error {
	return nil
}

// vertexCandidateText concatenates the text parts of the first candidate.
func vertexCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", true
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), true
}
