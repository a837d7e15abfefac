package archive

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Result is one downloadable PDF file from a matching item.
type Result struct {
	Title   string `json:"title"`
	Creator string `json:"creator"`
	Year    string `json:"year"`
	PDFLink string `json:"pdfLink"`
}

// searchResponse is the subset of advancedsearch.php output we read.
type searchResponse struct {
	Response struct {
		Docs []searchDoc `json:"docs"`
	} `json:"response"`
}

type searchDoc struct {
	Identifier string    `json:"identifier"`
	Title      flexText  `json:"title"`
	Creator    flexText  `json:"creator"`
	Year       flexText  `json:"year"`
	Format     flexTexts `json:"format"`
}

// hasPDF reports whether any declared format mentions PDF.
func (d searchDoc) hasPDF() bool {
	for _, f := range d.Format {
		if strings.Contains(strings.ToLower(f), "pdf") {
			return true
		}
	}
	return false
}

// metadataResponse is the subset of /metadata/<identifier> output we read.
type metadataResponse struct {
	Files []struct {
		Name string `json:"name"`
	} `json:"files"`
}

// flexTexts accepts a string, a number, or an array of either. The archive
// returns single-valued fields as scalars and multi-valued ones as arrays.
type flexTexts []string

func (f *flexTexts) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}

	if data[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			s, err := scalarText(item)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*f = out
		return nil
	}

	s, err := scalarText(data)
	if err != nil {
		return err
	}
	*f = flexTexts{s}
	return nil
}

// flexText is flexTexts flattened into one comma-separated string.
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	var many flexTexts
	if err := many.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexText(strings.Join(many, ", "))
	return nil
}

func scalarText(data []byte) (string, error) {
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}
