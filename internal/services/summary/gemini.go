package summary

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// maxStreamLine bounds a single SSE line from the streaming endpoint.
	maxStreamLine = 4 << 20

	// maxResponseBytes bounds a non-streamed response body.
	maxResponseBytes = 16 << 20
)

// GeminiClient calls the Gemini generateContent REST API with an API key.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini client. baseURL is the versioned API root,
// e.g. https://generativelanguage.googleapis.com/v1beta.
func NewGeminiClient(apiKey, model, baseURL string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		// Go Pattern: Always configure timeouts on HTTP clients.
		// Streams can legitimately run for a while, so this is generous;
		// callers bound each request with their own context deadline.
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}
}

// --- Gemini API types ---

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      *geminiContent `json:"content"`
		FinishReason string         `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// firstCandidateText concatenates the text parts of the first candidate.
func (r *geminiResponse) firstCandidateText() (string, bool) {
	if len(r.Candidates) == 0 {
		return "", false
	}
	content := r.Candidates[0].Content
	if content == nil {
		return "", true
	}
	var sb strings.Builder
	for _, p := range content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), true
}

// Name implements Provider.
func (g *GeminiClient) Name() string {
	return "gemini/" + g.model
}

// Generate implements Provider.
func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.post(ctx, "generateContent", nil, prompt)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() // Go Pattern: ALWAYS close response bodies!

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var out geminiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("gemini error %d: %s", out.Error.Code, out.Error.Message)
	}

	text, ok := out.firstCandidateText()
	if !ok {
		return "", ErrNoCandidates
	}
	return text, nil
}

// Stream implements Provider using the server-sent events variant of the
// endpoint.
func (g *GeminiClient) Stream(ctx context.Context, prompt string) (Stream, error) {
	resp, err := g.post(ctx, "streamGenerateContent", url.Values{"alt": {"sse"}}, prompt)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
	return &geminiStream{body: resp.Body, scanner: scanner}, nil
}

// post sends the prompt to a model method and returns the response if it is
// a 200. Other statuses are turned into errors here.
func (g *GeminiClient) post(ctx context.Context, method string, query url.Values, prompt string) (*http.Response, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: set GEMINI_API_KEY", ErrNotConfigured)
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:%s", g.baseURL, url.PathEscape(g.model), method)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	// The key travels in a header so it never shows up in logged URLs.
	req.Header.Set("x-goog-api-key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// geminiStream reads "data: {...}" lines, each a partial generateContent
// response.
type geminiStream struct {
	body         io.ReadCloser
	scanner      *bufio.Scanner
	sawCandidate bool
}

func (s *geminiStream) Next() (string, error) {
	for s.scanner.Scan() {
		data, ok := strings.CutPrefix(s.scanner.Text(), "data:")
		if !ok {
			continue // blank separators, comments, other SSE fields
		}
		data = strings.TrimSpace(data)
		if data == "" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", fmt.Errorf("failed to parse stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return "", fmt.Errorf("gemini error %d: %s", chunk.Error.Code, chunk.Error.Message)
		}

		text, ok := chunk.firstCandidateText()
		if !ok {
			continue
		}
		s.sawCandidate = true
		return text, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stream: %w", err)
	}
	if !s.sawCandidate {
		return "", ErrNoCandidates
	}
	return "", io.EOF
}

func (s *geminiStream) Close() error {
	return s.body.Close()
}
