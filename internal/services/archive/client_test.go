package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shimizu-Technology/pdf-scout/internal/apperrors"
	"github.com/Shimizu-Technology/pdf-scout/internal/logger"
)

// fakeArchive serves canned search and metadata responses and records which
// metadata identifiers were requested.
type fakeArchive struct {
	t        *testing.T
	search   string            // raw advancedsearch body
	metadata map[string]string // identifier -> raw metadata body
	delays   map[string]time.Duration
	failMeta map[string]int // identifier -> status code

	mu        sync.Mutex
	requested []string
	lastQuery string
	lastRows  string
}

func (f *fakeArchive) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/advancedsearch.php":
		f.mu.Lock()
		f.lastQuery = r.URL.Query().Get("q")
		f.lastRows = r.URL.Query().Get("rows")
		f.mu.Unlock()
		fmt.Fprint(w, f.search)
	case strings.HasPrefix(r.URL.Path, "/metadata/"):
		id := strings.TrimPrefix(r.URL.Path, "/metadata/")
		f.mu.Lock()
		f.requested = append(f.requested, id)
		f.mu.Unlock()
		if d := f.delays[id]; d > 0 {
			time.Sleep(d)
		}
		if code := f.failMeta[id]; code != 0 {
			w.WriteHeader(code)
			return
		}
		body, ok := f.metadata[id]
		if !ok {
			body = `{}`
		}
		fmt.Fprint(w, body)
	default:
		f.t.Errorf("unexpected request %s", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeArchive) snapshot() (requested []string, query, rows string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requested...), f.lastQuery, f.lastRows
}

func newTestClient(t *testing.T, fake *fakeArchive) (*Client, string) {
	t.Helper()
	fake.t = t
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, 4, logger.Discard()), srv.URL
}

func searchBody(t *testing.T, docs ...map[string]any) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"response": map[string]any{"docs": docs}})
	require.NoError(t, err)
	return string(b)
}

func TestSearchPDFsQuantumComputingExample(t *testing.T) {
	fake := &fakeArchive{
		metadata: map[string]string{
			"qc-book": `{"files":[{"name":"book.pdf"},{"name":"cover.jpg"}]}`,
		},
	}
	fake.search = searchBody(t, map[string]any{
		"identifier": "qc-book",
		"title":      "Quantum Computing",
		"creator":    "A. Author",
		"year":       "1999",
		"format":     []string{"PDF", "Text"},
	})
	client, base := newTestClient(t, fake)

	results, err := client.SearchPDFs(context.Background(), "quantum computing")
	require.NoError(t, err)

	require.Equal(t, []Result{{
		Title:   "Quantum Computing",
		Creator: "A. Author",
		Year:    "1999",
		PDFLink: base + "/download/qc-book/book.pdf",
	}}, results)
	_, query, rows := fake.snapshot()
	assert.Equal(t, "quantum computing", query)
	assert.Equal(t, "10", rows)
}

func TestSearchPDFsSkipsItemsWithoutPDFFormat(t *testing.T) {
	fake := &fakeArchive{
		metadata: map[string]string{
			"with-pdf": `{"files":[{"name":"a.pdf"}]}`,
			"no-pdf":   `{"files":[{"name":"b.pdf"}]}`,
		},
	}
	fake.search = searchBody(t,
		map[string]any{"identifier": "no-pdf", "title": "Audio", "format": []string{"VBR MP3"}},
		map[string]any{"identifier": "with-pdf", "title": "Text", "format": []string{"Text PDF"}},
	)
	client, _ := newTestClient(t, fake)

	results, err := client.SearchPDFs(context.Background(), "anything")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "Text", results[0].Title)
	requested, _, _ := fake.snapshot()
	assert.Equal(t, []string{"with-pdf"}, requested)
}

func TestSearchPDFsConsidersAtMostTenItems(t *testing.T) {
	fake := &fakeArchive{metadata: map[string]string{}}
	var docs []map[string]any
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("item-%02d", i)
		docs = append(docs, map[string]any{"identifier": id, "title": id, "format": []string{"pdf"}})
		fake.metadata[id] = fmt.Sprintf(`{"files":[{"name":"%s.pdf"}]}`, id)
	}
	fake.search = searchBody(t, docs...)
	client, _ := newTestClient(t, fake)

	results, err := client.SearchPDFs(context.Background(), "many")
	require.NoError(t, err)

	assert.Len(t, results, MaxItems)
	requested, _, _ := fake.snapshot()
	assert.Len(t, requested, MaxItems)
	for _, r := range results {
		assert.True(t, strings.HasSuffix(strings.ToLower(r.PDFLink), ".pdf"), r.PDFLink)
	}
}

func TestSearchPDFsPreservesOrderAndDuplicatesItemFields(t *testing.T) {
	fake := &fakeArchive{
		metadata: map[string]string{
			"slow": `{"files":[{"name":"vol1.pdf"},{"name":"scan.djvu"},{"name":"VOL2.PDF"}]}`,
			"fast": `{"files":[{"name":"only.pdf"}]}`,
		},
		delays: map[string]time.Duration{"slow": 50 * time.Millisecond},
	}
	fake.search = searchBody(t,
		map[string]any{"identifier": "slow", "title": "Slow Item", "creator": []string{"X", "Y"}, "year": 1901, "format": "Text PDF"},
		map[string]any{"identifier": "fast", "title": "Fast Item", "format": []string{"PDF"}},
	)
	client, base := newTestClient(t, fake)

	results, err := client.SearchPDFs(context.Background(), "order")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.Equal(t, base+"/download/slow/vol1.pdf", results[0].PDFLink)
	assert.Equal(t, base+"/download/slow/VOL2.PDF", results[1].PDFLink)
	assert.Equal(t, base+"/download/fast/only.pdf", results[2].PDFLink)
	for _, r := range results[:2] {
		assert.Equal(t, "Slow Item", r.Title)
		assert.Equal(t, "X, Y", r.Creator)
		assert.Equal(t, "1901", r.Year)
	}
}

func TestSearchPDFsEscapesFileNames(t *testing.T) {
	fake := &fakeArchive{
		metadata: map[string]string{
			"item": `{"files":[{"name":"sub dir/My Book #1.pdf"}]}`,
		},
	}
	fake.search = searchBody(t, map[string]any{"identifier": "item", "format": []string{"PDF"}})
	client, base := newTestClient(t, fake)

	results, err := client.SearchPDFs(context.Background(), "escape")
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, base+"/download/item/sub%20dir/My%20Book%20%231.pdf", results[0].PDFLink)
}

func TestSearchPDFsNoMatches(t *testing.T) {
	fake := &fakeArchive{}
	fake.search = searchBody(t)
	client, _ := newTestClient(t, fake)

	results, err := client.SearchPDFs(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestSearchPDFsEmptyQuery(t *testing.T) {
	client, _ := newTestClient(t, &fakeArchive{})

	_, err := client.SearchPDFs(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeValidation))
}

func TestSearchPDFsMetadataFailureDiscardsEverything(t *testing.T) {
	fake := &fakeArchive{
		metadata: map[string]string{"ok": `{"files":[{"name":"ok.pdf"}]}`},
		failMeta: map[string]int{"broken": http.StatusBadGateway},
	}
	fake.search = searchBody(t,
		map[string]any{"identifier": "ok", "format": []string{"PDF"}},
		map[string]any{"identifier": "broken", "format": []string{"PDF"}},
	)
	client, _ := newTestClient(t, fake)

	results, err := client.SearchPDFs(context.Background(), "partial")
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, apperrors.IsType(err, apperrors.TypeUpstream))
}

func TestSearchPDFsMalformedSearchResponse(t *testing.T) {
	fake := &fakeArchive{search: `<html>rate limited</html>`}
	client, _ := newTestClient(t, fake)

	_, err := client.SearchPDFs(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TypeUpstream))
}

func TestSearchPDFsTimeout(t *testing.T) {
	fake := &fakeArchive{
		metadata: map[string]string{"slow": `{"files":[{"name":"a.pdf"}]}`},
		delays:   map[string]time.Duration{"slow": 500 * time.Millisecond},
	}
	fake.search = searchBody(t, map[string]any{"identifier": "slow", "format": []string{"PDF"}})
	fake.t = t
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, 50*time.Millisecond, 1, logger.Discard())

	_, err := client.SearchPDFs(context.Background(), "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
