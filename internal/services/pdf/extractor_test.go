package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles an uncompressed PDF with one page per content stream.
// Object layout: 1 catalog, 2 page tree, 3 font, then a page and its
// content stream for every entry in contents.
func buildPDF(contents ...string) []byte {
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	buf.WriteString("%PDF-1.4\n")
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(contents)))
	object("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	for i, content := range contents {
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	data := buildPDF(
		"BT /F1 12 Tf 72 700 Td (Hello) Tj 100 0 Td (World) Tj 0 -50 Td (Again) Tj ET",
		"",
	)

	result, err := NewExtractor().Extract(data)
	require.NoError(t, err)

	assert.Equal(t, "Hello World\nAgain", result.Text)
	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, 3, result.WordCount)
}

func TestExtractRejectsNonPDF(t *testing.T) {
	_, err := NewExtractor().Extract([]byte("just some text"))
	require.Error(t, err)
}

func TestExtractRejectsTruncatedPDF(t *testing.T) {
	data := buildPDF("BT /F1 12 Tf 72 700 Td (Hello) Tj ET")

	_, err := NewExtractor().Extract(data[:len(data)/2])
	require.Error(t, err)
}

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"pdf header", []byte("%PDF-1.7\n..."), true},
		{"too short", []byte("%PDF"), false},
		{"empty", nil, false},
		{"png", []byte("\x89PNG\r\n\x1a\n"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePDF(tt.data))
		})
	}
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"application/pdf", true},
		{"application/pdf; charset=binary", true},
		{"Application/PDF", true},
		{"text/plain", false},
		{"", false},
		{"application/pdfx", false},
	}

	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPDF(tt.mediaType))
		})
	}
}
