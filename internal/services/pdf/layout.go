package pdf

import (
	"math"
	"strings"
)

// LineThreshold is the baseline distance, in PDF coordinate units, above which
// two consecutive fragments are placed on different lines.
const LineThreshold = 5.0

// Fragment is one positioned run of text on a page.
type Fragment struct {
	Text     string
	Baseline float64
}

// Reconstruct turns positioned fragments into readable text.
//
// Fragments on the same line are joined with a single space. A line break is
// inserted whenever a fragment's baseline moves more than LineThreshold away
// from the previous fragment's baseline. Every page is followed by a blank
// line, and the final result is trimmed.
func Reconstruct(pages [][]Fragment) string {
	var out strings.Builder
	for _, page := range pages {
		writePage(&out, page)
		out.WriteString("\n\n")
	}
	return normalize(out.String())
}

func writePage(out *strings.Builder, page []Fragment) {
	for i, f := range page {
		if i > 0 {
			if math.Abs(page[i-1].Baseline-f.Baseline) > LineThreshold {
				out.WriteByte('\n')
			} else {
				out.WriteByte(' ')
			}
		}
		out.WriteString(f.Text)
	}
}

// normalize folds CRLF and lone CR into LF and trims surrounding whitespace.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
