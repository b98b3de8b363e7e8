package outline

import (
	"bytes"
	"encoding/json"
	"io"
)

// Result is the per-document output.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// Empty is the result for documents with no content or that failed.
func Empty() Result {
	return Result{Outline: []Entry{}}
}

// Encode writes r as indented UTF-8 JSON with non-ASCII and HTML characters
// left as they are.
func (r Result) Encode(w io.Writer) error {
	if r.Outline == nil {
		r.Outline = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Marshal returns the encoded form of r.
func (r Result) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
