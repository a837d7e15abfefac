// Package archive finds downloadable PDFs through the Internet Archive's
// public search and metadata APIs.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Shimizu-Technology/pdf-scout/internal/apperrors"
)

// MaxItems is the number of search hits considered per query.
const MaxItems = 10

// maxBodyBytes bounds how much of an upstream response we read.
const maxBodyBytes = 16 << 20

var searchFields = []string{"identifier", "title", "creator", "year", "format"}

// Client talks to the archive's search and metadata endpoints.
type Client struct {
	baseURL     string
	timeout     time.Duration
	concurrency int
	httpClient  *http.Client
	log         *slog.Logger
}

// NewClient creates an archive client. timeout bounds each search call as a
// whole; concurrency caps parallel metadata lookups.
func NewClient(baseURL string, timeout time.Duration, concurrency int, log *slog.Logger) *Client {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		timeout:     timeout,
		concurrency: concurrency,
		// Go Pattern: Always configure timeouts on HTTP clients.
		// The request context carries the per-search deadline; this is a backstop.
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		log:        log,
	}
}

// SearchPDFs returns one Result per PDF file among the first MaxItems hits
// for query, in search order and then file-listing order.
//
// Any upstream failure aborts the whole search; partial results are never
// returned.
func (c *Client) SearchPDFs(ctx context.Context, query string) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("Search query is required")
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	docs, err := c.search(ctx, query)
	if err != nil {
		return nil, apperrors.NewUpstreamError("Failed to fetch PDF links", err)
	}

	candidates := make([]searchDoc, 0, len(docs))
	for _, d := range docs {
		if d.hasPDF() && d.Identifier != "" {
			candidates = append(candidates, d)
		}
	}

	// Metadata lookups run in parallel; each goroutine owns one index of
	// perItem, so the original order survives.
	perItem := make([][]Result, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, doc := range candidates {
		g.Go(func() error {
			files, err := c.pdfFiles(gctx, doc.Identifier)
			if err != nil {
				return fmt.Errorf("metadata for %s: %w", doc.Identifier, err)
			}
			for _, name := range files {
				perItem[i] = append(perItem[i], Result{
					Title:   string(doc.Title),
					Creator: string(doc.Creator),
					Year:    string(doc.Year),
					PDFLink: c.downloadURL(doc.Identifier, name),
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewUpstreamError("Failed to fetch PDF links", err)
	}

	results := []Result{}
	for _, item := range perItem {
		results = append(results, item...)
	}

	c.log.Info("archive search complete", "query", query, "hits", len(docs), "pdf_items", len(candidates), "results", len(results))
	return results, nil
}

// search runs the advanced search and returns at most MaxItems docs.
func (c *Client) search(ctx context.Context, query string) ([]searchDoc, error) {
	params := url.Values{}
	params.Set("q", query)
	for _, f := range searchFields {
		params.Add("fl[]", f)
	}
	params.Set("rows", fmt.Sprint(MaxItems))
	params.Set("page", "1")
	params.Set("output", "json")

	var resp searchResponse
	if err := c.getJSON(ctx, c.baseURL+"/advancedsearch.php?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	docs := resp.Response.Docs
	if len(docs) > MaxItems {
		docs = docs[:MaxItems]
	}
	return docs, nil
}

// pdfFiles lists the names of an item's files that end in ".pdf".
func (c *Client) pdfFiles(ctx context.Context, identifier string) ([]string, error) {
	var meta metadataResponse
	if err := c.getJSON(ctx, c.baseURL+"/metadata/"+url.PathEscape(identifier), &meta); err != nil {
		return nil, err
	}

	var names []string
	for _, f := range meta.Files {
		if strings.HasSuffix(strings.ToLower(f.Name), ".pdf") {
			names = append(names, f.Name)
		}
	}
	return names, nil
}

// downloadURL builds the direct link for a file. File names may contain
// sub-directories, so each path segment is escaped on its own.
func (c *Client) downloadURL(identifier, name string) string {
	segments := strings.Split(name, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.baseURL + "/download/" + url.PathEscape(identifier) + "/" + strings.Join(segments, "/")
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // Go Pattern: ALWAYS close response bodies!

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("archive returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
